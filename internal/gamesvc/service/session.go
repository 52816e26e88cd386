package service

import (
	"strconv"
	"sync"
	"time"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/gamesvc/models"
	"github.com/avvvet/memory-services/internal/memory"
	"github.com/avvvet/memory-services/internal/theme"
)

// Session is one player's seat: a theme and the game currently dealt from it.
type Session struct {
	ID string

	mu         sync.Mutex
	theme      theme.Theme
	game       *memory.Game[string]
	startedAt  time.Time
	lastActive time.Time
	recorded   bool
}

func (s *Session) reset(t theme.Theme, g *memory.Game[string], now time.Time) {
	s.theme = t
	s.game = g
	s.startedAt = now
	s.lastActive = now
	s.recorded = false
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// result builds the record for a finished game. Callers hold s.mu.
func (s *Session) result(now time.Time) *models.GameResult {
	stats := s.game.Stats()
	return &models.GameResult{
		SessionID:  s.ID,
		Theme:      s.theme.Name,
		Pairs:      stats.Pairs,
		Attempts:   stats.Attempts,
		Score:      s.game.Score(),
		Accuracy:   models.Accuracy(stats.Matched, stats.Attempts),
		DurationMs: now.Sub(s.startedAt).Milliseconds(),
	}
}

// view renders the session for clients. Callers hold s.mu.
func (s *Session) view() comm.GameView {
	cards := s.game.Cards()
	v := comm.GameView{
		GameId: s.ID,
		Theme:  comm.ThemeView{Name: s.theme.Name, Color: s.theme.Color},
		Score:  strconv.Itoa(s.game.Score()),
		Done:   s.game.Done(),
		Cards:  make([]comm.CardView, len(cards)),
	}
	for i, c := range cards {
		cv := comm.CardView{ID: c.ID, IsFaceUp: c.IsFaceUp, IsMatched: c.IsMatched}
		if c.IsFaceUp || c.IsMatched {
			cv.Content = c.Content
		}
		v.Cards[i] = cv
	}
	return v
}
