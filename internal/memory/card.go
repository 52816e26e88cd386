package memory

import "fmt"

// Card is a single card instance on the table. Two cards share each Content value.
type Card[C comparable] struct {
	ID        string `json:"id"`
	Content   C      `json:"content"`
	IsFaceUp  bool   `json:"is_face_up"`
	IsMatched bool   `json:"is_matched"`
}

func (c Card[C]) String() string {
	side := "down"
	if c.IsFaceUp {
		side = "up"
	}
	return fmt.Sprintf("[%v, %s, %t, %s]", c.Content, side, c.IsMatched, c.ID)
}

// cardState is the value part of a card, without its id.
type cardState[C comparable] struct {
	content C
	faceUp  bool
	matched bool
}

func (c Card[C]) state() cardState[C] {
	return cardState[C]{content: c.Content, faceUp: c.IsFaceUp, matched: c.IsMatched}
}
