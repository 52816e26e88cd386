package comm

import (
	"encoding/json"
)

// Topics shared by the socket and game services.
const (
	TopicSocketService = "socket.service"
	TopicGameService   = "game.service"
)

// Message types sent by web clients.
const (
	TypeNewGame      = "new-game"
	TypeGetGame      = "get-game"
	TypeSelectCard   = "select-card"
	TypeShuffle      = "shuffle"
	TypeStartNewGame = "start-new-game"
	TypeError        = "error-response"
)

// ResponseType is the type a reply to msgType is published under.
func ResponseType(msgType string) string {
	return msgType + "-response"
}

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "new-game", "select-card"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

type NewGameRequest struct {
	Theme string `json:"theme"`
}

type GameRequest struct {
	GameId string `json:"game_id"`
}

type SelectCardRequest struct {
	GameId string `json:"game_id"`
	CardId string `json:"card_id"`
}

type ErrorData struct {
	Request string `json:"request"`
	Error   string `json:"error"`
}

type ThemeView struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CardView is a card as shown to a player. Content is empty while the card
// is face-down.
type CardView struct {
	ID        string `json:"id"`
	Content   string `json:"content,omitempty"`
	IsFaceUp  bool   `json:"is_face_up"`
	IsMatched bool   `json:"is_matched"`
}

type GameView struct {
	GameId string     `json:"game_id"`
	Theme  ThemeView  `json:"theme"`
	Score  string     `json:"score"`
	Done   bool       `json:"done"`
	Cards  []CardView `json:"cards"`
}
