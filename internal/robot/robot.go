// Package robot plays memory games with perfect recall.
package robot

import (
	"github.com/avvvet/memory-services/internal/memory"
)

// Table is the game surface a robot plays on.
type Table[C comparable] interface {
	Cards() []memory.Card[C]
	Select(id string)
	Done() bool
}

// Robot remembers the content of every card it has seen face-up.
type Robot[C comparable] struct {
	known map[string]C
}

func New[C comparable]() *Robot[C] {
	return &Robot[C]{known: make(map[string]C)}
}

// Play selects cards until the game is done or maxMoves selections were
// made, and returns the number of selections.
func (r *Robot[C]) Play(t Table[C], maxMoves int) int {
	moves := 0
	for moves < maxMoves && !t.Done() {
		first, second := r.next(t.Cards())
		if first == "" {
			break
		}
		moves += r.pick(t, first)
		if second == "" {
			// the partner of first may have been unknown until it was revealed
			second = r.partner(t.Cards(), first)
		}
		if second == "" {
			second = r.unknown(t.Cards(), first)
		}
		if second != "" && moves < maxMoves {
			moves += r.pick(t, second)
		}
	}
	return moves
}

func (r *Robot[C]) pick(t Table[C], id string) int {
	t.Select(id)
	r.observe(t.Cards())
	return 1
}

func (r *Robot[C]) observe(cards []memory.Card[C]) {
	for _, c := range cards {
		if c.IsFaceUp || c.IsMatched {
			r.known[c.ID] = c.Content
		}
	}
}

// next chooses the card to open: one of a known pair if there is one,
// otherwise the first card never seen.
func (r *Robot[C]) next(cards []memory.Card[C]) (string, string) {
	r.observe(cards)

	byContent := make(map[C]string)
	for _, c := range cards {
		if c.IsMatched {
			continue
		}
		content, ok := r.known[c.ID]
		if !ok {
			continue
		}
		if other, ok := byContent[content]; ok {
			return other, c.ID
		}
		byContent[content] = c.ID
	}

	id := r.unknown(cards, "")
	return id, ""
}

func (r *Robot[C]) partner(cards []memory.Card[C], id string) string {
	content, ok := r.known[id]
	if !ok {
		return ""
	}
	for _, c := range cards {
		if c.ID == id || c.IsMatched {
			continue
		}
		if known, ok := r.known[c.ID]; ok && known == content {
			return c.ID
		}
	}
	return ""
}

func (r *Robot[C]) unknown(cards []memory.Card[C], except string) string {
	for _, c := range cards {
		if c.IsMatched || c.ID == except {
			continue
		}
		if _, ok := r.known[c.ID]; !ok {
			return c.ID
		}
	}
	return ""
}
