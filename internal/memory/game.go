// Package memory implements the pair-matching card game engine.
package memory

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	matchReward   = 200
	seenPenalty   = 100
	minMatchDelay = 1 // seconds
	maxMatchDelay = 5 // seconds
)

var ErrInvalidPairCount = errors.New("pair count must be at least 1")

// Option configures a Game at construction.
type Option func(*options)

type options struct {
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// WithClock replaces time.Now as the source of match timing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithShuffler replaces rand.Shuffle for both the initial deal and Shuffle.
func WithShuffler(shuffle func(n int, swap func(i, j int))) Option {
	return func(o *options) { o.shuffle = shuffle }
}

// Stats summarizes the progress of a game.
type Stats struct {
	Pairs    int `json:"pairs"`
	Matched  int `json:"matched"`
	Attempts int `json:"attempts"`
}

// Game holds the cards, score and timing of one round. It is safe for
// concurrent use; every method runs under the game's lock.
type Game[C comparable] struct {
	mu       sync.Mutex
	cards    []Card[C]
	score    int
	timer    time.Time
	seen     map[string]cardState[C]
	attempts int

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// New deals pairCount pairs. contentFor reports false when it has no value
// for an index, in which case placeholder is used for that pair.
func New[C comparable](pairCount int, placeholder C, contentFor func(index int) (C, bool), opts ...Option) (*Game[C], error) {
	if pairCount < 1 {
		return nil, ErrInvalidPairCount
	}

	o := options{now: time.Now, shuffle: rand.Shuffle}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Game[C]{
		cards:   make([]Card[C], 0, 2*pairCount),
		seen:    make(map[string]cardState[C]),
		now:     o.now,
		shuffle: o.shuffle,
	}

	for i := 0; i < pairCount; i++ {
		content, ok := contentFor(i)
		if !ok {
			content = placeholder
		}
		id := strconv.Itoa(i)
		g.cards = append(g.cards,
			Card[C]{ID: id + "a", Content: content},
			Card[C]{ID: id + "b", Content: content},
		)
	}

	g.permute()
	g.timer = g.now()
	return g, nil
}

// Select reveals the card with the given id. Unknown ids and cards that are
// already face-up or matched are ignored.
func (g *Game[C]) Select(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	chosen := g.indexOf(id)
	if chosen < 0 {
		return
	}
	if g.cards[chosen].IsFaceUp || g.cards[chosen].IsMatched {
		return
	}

	open, ok := g.openCard()
	if !ok {
		g.setOpenCard(chosen)
		g.timer = g.now()
		return
	}

	g.attempts++
	openBefore := g.cards[open].state()
	chosenBefore := g.cards[chosen].state()

	if g.cards[open].Content == g.cards[chosen].Content {
		g.cards[open].IsMatched = true
		g.cards[chosen].IsMatched = true
		g.score += matchReward / g.elapsedSeconds()
	}

	if g.wasSeen(g.cards[open].ID, openBefore) || g.wasSeen(g.cards[chosen].ID, chosenBefore) {
		g.score -= seenPenalty
	}

	g.cards[chosen].IsFaceUp = true
	g.timer = g.now()
	g.seen[g.cards[chosen].ID] = chosenBefore
}

// Shuffle reorders the cards without touching any card flags or the score.
func (g *Game[C]) Shuffle() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.permute()
	log.Debugf("memory: shuffled cards %v", g.cards)
}

// Cards returns a copy of the cards in table order.
func (g *Game[C]) Cards() []Card[C] {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Card[C], len(g.cards))
	copy(out, g.cards)
	return out
}

func (g *Game[C]) Score() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score
}

// Done reports whether every card has been matched.
func (g *Game[C]) Done() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range g.cards {
		if !c.IsMatched {
			return false
		}
	}
	return true
}

func (g *Game[C]) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	matched := 0
	for _, c := range g.cards {
		if c.IsMatched {
			matched++
		}
	}
	return Stats{Pairs: len(g.cards) / 2, Matched: matched / 2, Attempts: g.attempts}
}

func (g *Game[C]) permute() {
	g.shuffle(len(g.cards), func(i, j int) {
		g.cards[i], g.cards[j] = g.cards[j], g.cards[i]
	})
}

func (g *Game[C]) indexOf(id string) int {
	for i := range g.cards {
		if g.cards[i].ID == id {
			return i
		}
	}
	return -1
}

// openCard finds the single face-up unmatched card. More than one such card
// is reported as none.
func (g *Game[C]) openCard() (int, bool) {
	found := -1
	for i, c := range g.cards {
		if c.IsFaceUp && !c.IsMatched {
			if found >= 0 {
				return -1, false
			}
			found = i
		}
	}
	return found, found >= 0
}

// setOpenCard turns index face-up and every other unmatched card face-down.
func (g *Game[C]) setOpenCard(index int) {
	for i := range g.cards {
		if i == index {
			g.cards[i].IsFaceUp = true
		} else if !g.cards[i].IsMatched {
			g.cards[i].IsFaceUp = false
		}
	}
}

func (g *Game[C]) wasSeen(id string, s cardState[C]) bool {
	prev, ok := g.seen[id]
	return ok && prev == s
}

// elapsedSeconds returns whole seconds since the timer started, clamped to
// [minMatchDelay, maxMatchDelay].
func (g *Game[C]) elapsedSeconds() int {
	secs := int(g.now().Sub(g.timer) / time.Second)
	return max(minMatchDelay, min(secs, maxMatchDelay))
}
