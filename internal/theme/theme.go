// Package theme maps theme names to the symbols a game is dealt from.
package theme

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/avvvet/memory-services/internal/memory"
)

// Placeholder is dealt for pairs the theme has no symbol for.
const Placeholder = "N/A"

var ErrUnknownTheme = errors.New("unknown theme")

type Theme struct {
	Name   string   `json:"name"`
	Color  string   `json:"color"` // style token, passed through to clients
	Emojis []string `json:"emojis"`
	// NumberOfPairs is nil when the pair count should be picked at random.
	NumberOfPairs *int `json:"number_of_pairs,omitempty"`
}

// Registry is a lookup table of themes by name.
type Registry map[string]Theme

func pairs(n int) *int { return &n }

// Default returns the built-in themes.
func Default() Registry {
	return Registry{
		"spooky": {
			Name:          "spooky",
			Color:         "black",
			Emojis:        []string{"👻", "🎃", "🕸️", "🧛", "🕷️", "🧟", "🪦"},
			NumberOfPairs: pairs(4),
		},
		"nature": {
			Name:          "nature",
			Color:         "green",
			Emojis:        []string{"🌲", "🌻", "🌈", "🌼", "🍄", "🐦", "📷"},
			NumberOfPairs: pairs(2),
		},
		"space": {
			Name:          "space",
			Color:         "orange",
			Emojis:        []string{"🚀", "🛸", "🪐", "🌕", "🌠", "☄️", "👾"},
			NumberOfPairs: pairs(7),
		},
		"hearts": {
			Name:   "hearts",
			Color:  "linear-gradient(red,blue)",
			Emojis: []string{"💘", "💝", "💖", "💗", "💓", "💞", "💕", "💟", "❣️", "💔", "❤️", "🍋"},
		},
	}
}

func (r Registry) Lookup(name string) (Theme, error) {
	t, ok := r[name]
	if !ok {
		return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return t, nil
}

// Names returns the theme names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Random picks a theme uniformly. It returns false for an empty registry.
func (r Registry) Random(rng *rand.Rand) (Theme, bool) {
	names := r.Names()
	if len(names) == 0 {
		return Theme{}, false
	}
	return r[names[rng.IntN(len(names))]], true
}

// PairCount returns the configured pair count, or a random count in
// [2, len(Emojis)) when none is set.
func (t Theme) PairCount(rng *rand.Rand) int {
	if t.NumberOfPairs != nil {
		return *t.NumberOfPairs
	}
	if len(t.Emojis) <= 2 {
		return max(len(t.Emojis), 1)
	}
	return 2 + rng.IntN(len(t.Emojis)-2)
}

// Content returns the symbol for a pair index.
func (t Theme) Content(index int) (string, bool) {
	if index < 0 || index >= len(t.Emojis) {
		return "", false
	}
	return t.Emojis[index], true
}

// NewGame deals a game from the theme.
func NewGame(t Theme, rng *rand.Rand, opts ...memory.Option) (*memory.Game[string], error) {
	return memory.New(t.PairCount(rng), Placeholder, t.Content, opts...)
}
