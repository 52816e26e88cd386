package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"github.com/avvvet/memory-services/internal/memory"
	"github.com/avvvet/memory-services/internal/theme"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// moveLogTimeout bounds each move log write.
const moveLogTimeout = 2 * time.Second

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrNoThemes        = errors.New("no themes configured")
)

// ResultRecorder stores finished games.
type ResultRecorder interface {
	Save(ctx context.Context, r *models.GameResult) error
}

// MoveLogger receives every card selection.
type MoveLogger interface {
	LogMove(ctx context.Context, m models.Move) error
}

type GameService struct {
	themes  theme.Registry
	results ResultRecorder
	moves   MoveLogger
	moveTTL time.Duration
	// per-write deadline for the move logger
	moveLogTimeout time.Duration

	now      func() time.Time
	gameOpts []memory.Option

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[string]*Session
}

// NewGameService creates the session registry. results and moves may be nil.
func NewGameService(themes theme.Registry, results ResultRecorder, moves MoveLogger, moveTTL time.Duration) *GameService {
	return &GameService{
		themes:   themes,
		results:  results,
		moves:    moves,
		moveTTL:  moveTTL,
		now:      time.Now,

		moveLogTimeout: moveLogTimeout,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sessions: make(map[string]*Session),
	}
}

func (s *GameService) Themes() []string {
	return s.themes.Names()
}

// Create opens a session with a game from the named theme, or from a random
// theme when name is empty.
func (s *GameService) Create(ctx context.Context, themeName string) (comm.GameView, error) {
	t, err := s.pickTheme(themeName)
	if err != nil {
		return comm.GameView{}, err
	}

	g, err := s.deal(t)
	if err != nil {
		return comm.GameView{}, err
	}

	sess := &Session{ID: uuid.New().String()}
	sess.reset(t, g, s.now())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	log.Infof("game session %s started with theme %s (%d cards)", sess.ID, t.Name, len(g.Cards()))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *GameService) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *GameService) View(id string) (comm.GameView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return comm.GameView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

// Select forwards a card selection to the session's game. Stale or unknown
// card ids are no-ops; only an unknown session is an error.
func (s *GameService) Select(ctx context.Context, id, cardID string) (comm.GameView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return comm.GameView{}, err
	}

	now := s.now()

	sess.mu.Lock()
	sess.game.Select(cardID)
	sess.lastActive = now
	view := sess.view()

	var finished *models.GameResult
	if view.Done && !sess.recorded {
		sess.recorded = true
		finished = sess.result(now)
	}
	move := models.Move{
		SessionID: sess.ID,
		Theme:     sess.theme.Name,
		CardID:    cardID,
		Score:     sess.game.Score(),
		Done:      view.Done,
		CreatedAt: now,
		ExpiresAt: now.Add(s.moveTTL),
	}
	sess.mu.Unlock()

	if s.moves != nil {
		logCtx, cancel := context.WithTimeout(ctx, s.moveLogTimeout)
		err := s.moves.LogMove(logCtx, move)
		cancel()
		if err != nil {
			log.Warnf("game session %s: %v", sess.ID, err)
		}
	}

	if finished != nil {
		log.Infof("game session %s finished: score %d in %d attempts", sess.ID, finished.Score, finished.Attempts)
		if s.results != nil {
			if err := s.results.Save(ctx, finished); err != nil {
				log.Errorf("game session %s: %v", sess.ID, err)
			}
		}
	}

	return view, nil
}

func (s *GameService) Shuffle(id string) (comm.GameView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return comm.GameView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.game.Shuffle()
	sess.lastActive = s.now()
	return sess.view(), nil
}

// StartNewGame replaces the session's game with a fresh one from a random theme.
func (s *GameService) StartNewGame(ctx context.Context, id string) (comm.GameView, error) {
	sess, err := s.Get(id)
	if err != nil {
		return comm.GameView{}, err
	}

	t, err := s.pickTheme("")
	if err != nil {
		return comm.GameView{}, err
	}
	g, err := s.deal(t)
	if err != nil {
		return comm.GameView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.reset(t, g, s.now())
	log.Infof("game session %s restarted with theme %s", sess.ID, t.Name)
	return sess.view(), nil
}

// ExpireIdle drops sessions without activity for longer than maxIdle and
// returns how many were removed.
func (s *GameService) ExpireIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Infof("expired %d idle game sessions", removed)
	}
	return removed
}

func (s *GameService) pickTheme(name string) (theme.Theme, error) {
	if name != "" {
		return s.themes.Lookup(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.themes.Random(s.rng)
	if !ok {
		return theme.Theme{}, ErrNoThemes
	}
	return t, nil
}

func (s *GameService) deal(t theme.Theme) (*memory.Game[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := theme.NewGame(t, s.rng, s.gameOpts...)
	if err != nil {
		return nil, fmt.Errorf("deal %s: %w", t.Name, err)
	}
	return g, nil
}
