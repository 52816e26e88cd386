// cmd/robosvc/main.go
package main

import (
	"context"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	config "github.com/avvvet/memory-services/configs"
	"github.com/avvvet/memory-services/internal/gamesvc/db"
	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"github.com/avvvet/memory-services/internal/gamesvc/store"
	"github.com/avvvet/memory-services/internal/memory"
	"github.com/avvvet/memory-services/internal/robot"
	"github.com/avvvet/memory-services/internal/theme"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "robot"

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId := config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

// Robot plays ROBOT_GAMES games per theme and stores each result, seeding
// the leaderboard with perfect-memory baselines.
func main() {
	log.Printf("Starting Robot Service...")

	games := 10
	if v := os.Getenv("ROBOT_GAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Invalid ROBOT_GAMES value: %q", v)
		}
		games = n
	}

	dbUrl := os.Getenv("DATABASE_URL")
	if dbUrl == "" {
		dbUrl = os.Getenv("POSTGRES_URL")
	}
	dbpool, err := db.Connect(dbUrl)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	ctx := context.Background()
	results := store.NewResultStore(dbpool)
	if err := results.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate game_results: %v", err)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	themes := theme.Default()

	for _, name := range themes.Names() {
		for i := 0; i < games; i++ {
			r, err := play(themes[name], rng)
			if err != nil {
				log.Errorf("robot game on %s failed: %v", name, err)
				continue
			}
			if err := results.Save(ctx, r); err != nil {
				log.Errorf("unable to save robot result: %v", err)
				continue
			}
			log.Debugf("robot %s game %d: score %d in %d attempts", name, i+1, r.Score, r.Attempts)
		}
		log.Infof("robot finished %d games on theme %s", games, name)
	}

	log.Printf("Robot Service done")
}

func play(t theme.Theme, rng *rand.Rand) (*models.GameResult, error) {
	g, err := theme.NewGame(t, rng, memory.WithShuffler(rng.Shuffle))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	robot.New[string]().Play(g, 10*len(g.Cards()))

	stats := g.Stats()
	return &models.GameResult{
		SessionID:  "robot-" + uuid.NewString(),
		Theme:      t.Name,
		Pairs:      stats.Pairs,
		Attempts:   stats.Attempts,
		Score:      g.Score(),
		Accuracy:   models.Accuracy(stats.Matched, stats.Attempts),
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
