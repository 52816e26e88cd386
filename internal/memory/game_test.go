package memory

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func keepOrder(int, func(i, j int)) {}

func letters(i int) (string, bool) {
	return string(rune('A' + i)), true
}

// newOrdered deals pairs in id order: 0a 0b 1a 1b ...
func newOrdered(t *testing.T, pairs int) (*Game[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 4, 25, 12, 0, 0, 0, time.UTC)}
	g, err := New(pairs, "N/A", letters, WithClock(clock.Now), WithShuffler(keepOrder))
	require.NoError(t, err)
	return g, clock
}

func faceUpUnmatched(g *Game[string]) int {
	n := 0
	for _, c := range g.Cards() {
		if c.IsFaceUp && !c.IsMatched {
			n++
		}
	}
	return n
}

func cardByID(t *testing.T, g *Game[string], id string) Card[string] {
	t.Helper()
	for _, c := range g.Cards() {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("card %s not found", id)
	return Card[string]{}
}

func TestNewDealsPairs(t *testing.T) {
	for _, n := range []int{1, 2, 4, 7, 12} {
		t.Run(fmt.Sprintf("pairs=%d", n), func(t *testing.T) {
			g, err := New(n, "N/A", letters)
			require.NoError(t, err)

			cards := g.Cards()
			require.Len(t, cards, 2*n)

			counts := make(map[string]int)
			ids := make(map[string]bool)
			for _, c := range cards {
				counts[c.Content]++
				assert.False(t, c.IsFaceUp, "card %s starts face-up", c.ID)
				assert.False(t, c.IsMatched, "card %s starts matched", c.ID)
				assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
				ids[c.ID] = true
			}
			assert.Len(t, counts, n)
			for content, count := range counts {
				assert.Equal(t, 2, count, "content %s", content)
			}
			assert.Zero(t, g.Score())
			assert.False(t, g.Done())
		})
	}
}

func TestNewRejectsEmptyDeck(t *testing.T) {
	for _, n := range []int{0, -3} {
		g, err := New(n, "N/A", letters)
		assert.ErrorIs(t, err, ErrInvalidPairCount)
		assert.Nil(t, g)
	}
}

func TestNewUsesPlaceholderForMissingContent(t *testing.T) {
	pool := []string{"ghost", "pumpkin"}
	g, err := New(3, "N/A", func(i int) (string, bool) {
		if i < len(pool) {
			return pool[i], true
		}
		return "", false
	}, WithShuffler(keepOrder))
	require.NoError(t, err)

	cards := g.Cards()
	require.Len(t, cards, 6)
	assert.Equal(t, "N/A", cards[4].Content)
	assert.Equal(t, "N/A", cards[5].Content)
	assert.Equal(t, "2a", cards[4].ID)
	assert.Equal(t, "2b", cards[5].ID)
}

func TestSelectFirstCardOpensIt(t *testing.T) {
	g, _ := newOrdered(t, 2)

	g.Select("1b")

	assert.True(t, cardByID(t, g, "1b").IsFaceUp)
	assert.Equal(t, 1, faceUpUnmatched(g))
	assert.Zero(t, g.Score())
}

func TestSelectMatchScoresByElapsedTime(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 200},
		{300 * time.Millisecond, 200},
		{1500 * time.Millisecond, 200},
		{2 * time.Second, 100},
		{3 * time.Second, 66},
		{5 * time.Second, 40},
		{10 * time.Second, 40},
	}

	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			g, clock := newOrdered(t, 2)

			g.Select("0a")
			clock.Advance(tt.elapsed)
			g.Select("0b")

			assert.Equal(t, tt.want, g.Score())
			assert.True(t, cardByID(t, g, "0a").IsMatched)
			assert.True(t, cardByID(t, g, "0b").IsMatched)
			assert.Zero(t, faceUpUnmatched(g))
		})
	}
}

func TestSelectTimerStartsAtOpenNotConstruction(t *testing.T) {
	g, clock := newOrdered(t, 2)

	clock.Advance(time.Minute)
	g.Select("1a")
	clock.Advance(2 * time.Second)
	g.Select("1b")

	assert.Equal(t, 100, g.Score())
}

func TestSelectMismatchLeavesBothFaceUp(t *testing.T) {
	g, _ := newOrdered(t, 2)

	g.Select("0a")
	g.Select("1a")

	assert.Zero(t, g.Score())
	assert.True(t, cardByID(t, g, "0a").IsFaceUp)
	assert.True(t, cardByID(t, g, "1a").IsFaceUp)
	assert.False(t, cardByID(t, g, "0a").IsMatched)

	// two face-up cards means no open card, so the next pick starts over
	g.Select("1b")
	assert.True(t, cardByID(t, g, "1b").IsFaceUp)
	assert.False(t, cardByID(t, g, "0a").IsFaceUp)
	assert.False(t, cardByID(t, g, "1a").IsFaceUp)
	assert.Equal(t, 1, faceUpUnmatched(g))
}

func TestSelectIgnoresResolvedAndUnknownCards(t *testing.T) {
	g, _ := newOrdered(t, 3)

	g.Select("0a")
	g.Select("0b")
	before := g.Cards()
	score := g.Score()

	for i := 0; i < 3; i++ {
		g.Select("0a")
		g.Select("0b")
		g.Select("nope")
		g.Select("")
	}
	assert.Equal(t, score, g.Score())
	assert.Equal(t, before, g.Cards())

	g.Select("2a")
	opened := g.Cards()
	for i := 0; i < 3; i++ {
		g.Select("2a")
	}
	assert.Equal(t, opened, g.Cards())
	assert.Equal(t, score, g.Score())
}

func TestSelectPenalizesRepeatedPick(t *testing.T) {
	g, _ := newOrdered(t, 3)

	g.Select("0a")
	g.Select("1a") // mismatch, 1a recorded as seen
	assert.Zero(t, g.Score())

	// re-selecting a face-up card is ignored
	g.Select("0a")
	assert.Zero(t, g.Score())

	g.Select("2a") // two face-up cards, so this opens 2a and hides the rest
	assert.Zero(t, g.Score())

	g.Select("1a") // same face-down, unmatched B as before
	assert.Equal(t, -100, g.Score())
}

func TestSelectPenaltyStacksWithMatch(t *testing.T) {
	g, _ := newOrdered(t, 3)

	g.Select("0a")
	g.Select("1a")
	g.Select("1b") // opens 1b
	g.Select("1a") // match within a second, but 1a was seen before

	assert.Equal(t, 200-100, g.Score())
	assert.True(t, cardByID(t, g, "1a").IsMatched)
	assert.True(t, cardByID(t, g, "1b").IsMatched)
}

func TestSelectFirstSightingsMatchWithoutPenalty(t *testing.T) {
	g, clock := newOrdered(t, 2)

	g.Select("0a")
	clock.Advance(4 * time.Second)
	g.Select("0b")

	assert.Equal(t, 50, g.Score())
}

func TestScoreCanGoNegative(t *testing.T) {
	g, _ := newOrdered(t, 3)

	g.Select("0a")
	g.Select("1a")
	for i := 0; i < 3; i++ {
		g.Select("2a")
		g.Select("1a")
		g.Select("0a")
	}
	assert.Less(t, g.Score(), 0)
}

func TestDoneAndStats(t *testing.T) {
	g, _ := newOrdered(t, 2)

	g.Select("0a")
	g.Select("1a")
	g.Select("0b")
	g.Select("0a")
	assert.Equal(t, Stats{Pairs: 2, Matched: 1, Attempts: 2}, g.Stats())
	assert.False(t, g.Done())

	g.Select("1a")
	g.Select("1b")
	assert.True(t, g.Done())
	assert.Equal(t, Stats{Pairs: 2, Matched: 2, Attempts: 3}, g.Stats())
}

func TestShufflePreservesState(t *testing.T) {
	g, err := New(6, "N/A", letters)
	require.NoError(t, err)

	cards := g.Cards()
	g.Select(cards[0].ID)
	g.Select(cards[1].ID)
	g.Select(cards[2].ID)

	byID := func(cs []Card[string]) map[string]Card[string] {
		m := make(map[string]Card[string], len(cs))
		for _, c := range cs {
			m[c.ID] = c
		}
		return m
	}
	before := byID(g.Cards())
	score := g.Score()

	for i := 0; i < 5; i++ {
		g.Shuffle()
	}

	assert.Equal(t, score, g.Score())
	assert.Equal(t, before, byID(g.Cards()))
}

func TestShuffleUsesInjectedShuffler(t *testing.T) {
	reverse := func(n int, swap func(i, j int)) {
		for i := 0; i < n/2; i++ {
			swap(i, n-1-i)
		}
	}
	g, err := New(2, "N/A", letters, WithShuffler(reverse))
	require.NoError(t, err)

	ids := func() []string {
		var out []string
		for _, c := range g.Cards() {
			out = append(out, c.ID)
		}
		return out
	}
	assert.Equal(t, []string{"1b", "1a", "0b", "0a"}, ids())

	g.Shuffle()
	assert.Equal(t, []string{"0a", "0b", "1a", "1b"}, ids())
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := New(8, "N/A", letters, WithShuffler(r.Shuffle))
	require.NoError(t, err)

	for step := 0; step < 2000 && !g.Done(); step++ {
		cards := g.Cards()
		wasMatched := make(map[string]bool)
		for _, c := range cards {
			wasMatched[c.ID] = c.IsMatched
		}

		g.Select(cards[r.IntN(len(cards))].ID)

		after := g.Cards()
		assert.LessOrEqual(t, faceUpUnmatched(g), 2)
		for _, c := range after {
			if wasMatched[c.ID] {
				assert.True(t, c.IsMatched, "matched card %s was unmatched", c.ID)
			}
			if c.IsMatched {
				assert.True(t, c.IsFaceUp, "matched card %s is face-down", c.ID)
			}
		}
	}
}

func TestConcurrentSelect(t *testing.T) {
	g, err := New(10, "N/A", letters)
	require.NoError(t, err)
	cards := g.Cards()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(seed, seed))
			for i := 0; i < 500; i++ {
				switch r.IntN(10) {
				case 0:
					g.Shuffle()
				default:
					g.Select(cards[r.IntN(len(cards))].ID)
				}
			}
		}(uint64(w))
	}
	wg.Wait()

	assert.LessOrEqual(t, faceUpUnmatched(g), 2)
	assert.Len(t, g.Cards(), 20)
}

func TestCardString(t *testing.T) {
	c := Card[string]{ID: "3a", Content: "X", IsFaceUp: true}
	assert.Equal(t, "[X, up, false, 3a]", c.String())
	c.IsFaceUp = false
	c.IsMatched = true
	assert.Equal(t, "[X, down, true, 3a]", c.String())
}
