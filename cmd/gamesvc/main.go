package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/memory-services/configs"
	"github.com/avvvet/memory-services/internal/comm"
	mongodb "github.com/avvvet/memory-services/internal/db"
	"github.com/avvvet/memory-services/internal/gamesvc/broker"
	gamecfg "github.com/avvvet/memory-services/internal/gamesvc/config"
	"github.com/avvvet/memory-services/internal/gamesvc/db"
	handlers "github.com/avvvet/memory-services/internal/gamesvc/handlers"
	"github.com/avvvet/memory-services/internal/gamesvc/service"
	"github.com/avvvet/memory-services/internal/gamesvc/store"
	nats "github.com/avvvet/memory-services/internal/nats"
	"github.com/avvvet/memory-services/internal/theme"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

func main() {
	cfg := gamecfg.Load()

	var (
		recorder service.ResultRecorder
		lister   handlers.ResultLister
		moves    service.MoveLogger
	)

	// pg connection, results are kept only when a database is configured
	if cfg.DBUrl != "" {
		dbpool, err := db.Connect(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer db.ClosePool()
		log.Printf("pg connection established successfully")

		resultStore := store.NewResultStore(dbpool)
		if err := resultStore.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate game_results: %v", err)
		}
		recorder, lister = resultStore, resultStore
	} else {
		log.Warn("DATABASE_URL not set, game results will not be stored")
	}

	// mongo connection for the move log
	if cfg.MongoURI != "" {
		mdb, err := mongodb.ConnectToDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to mongo: %v", err)
		}
		defer mongodb.Disconnect(mdb)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = mongodb.CreateTTLIndexForCollection(ctx, mdb, store.MovesCollection)
		cancel()
		if err != nil {
			log.Errorf("unable to create TTL index on %s: %v", store.MovesCollection, err)
		}
		moves = store.NewMoveStore(mdb)
		log.Printf("mongo connection established successfully")
	} else {
		log.Warn("MONGODB_URI not set, moves will not be logged")
	}

	gameService := service.NewGameService(theme.Default(), recorder, moves, cfg.MoveTTL)

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + " " + instanceId)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(1)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init peer message broker
	b := broker.NewBroker(n.Conn, gameService)

	// subscribe to socket service. Sessions live in this process, so the game
	// service runs as a single replica: every subscriber would handle new-game.
	sub, err := b.SubscribSocketService(comm.TopicSocketService)
	if err != nil {
		log.Errorf("Error: unable to subscribe to %s %v", comm.TopicSocketService, err)
		os.Exit(1)
	}

	// drop abandoned sessions
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep(sweepCtx, gameService, cfg.SessionIdleTimeout)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS(cfg.CORSOrigins)

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(gameService, lister, cfg.Port)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}

func sweep(ctx context.Context, games *service.GameService, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			games.ExpireIdle(maxIdle)
		}
	}
}
