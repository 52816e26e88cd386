package broker

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/gamesvc/service"
	"github.com/avvvet/memory-services/internal/theme"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic string
	msg   comm.WSMessage
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	var m comm.WSMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	f.sent = append(f.sent, published{topic: subj, msg: m})
	return nil
}

func (f *fakePublisher) last(t *testing.T) published {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTestBroker() (*Broker, *fakePublisher) {
	pub := &fakePublisher{}
	b := &Broker{
		GameService: service.NewGameService(theme.Default(), nil, nil, time.Hour),
		publisher:   pub,
	}
	return b, pub
}

func send(t *testing.T, b *Broker, msgType, socketId string, data interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(comm.WSMessage{Type: msgType, Data: raw, SocketId: socketId})
	require.NoError(t, err)
	b.handleMessage(&nats.Msg{Subject: comm.TopicSocketService, Data: payload})
}

func view(t *testing.T, p published) comm.GameView {
	t.Helper()
	var v comm.GameView
	require.NoError(t, json.Unmarshal(p.msg.Data, &v))
	return v
}

func TestNewGameAndSelect(t *testing.T) {
	b, pub := newTestBroker()

	send(t, b, comm.TypeNewGame, "sock-1", comm.NewGameRequest{Theme: "spooky"})
	p := pub.last(t)
	assert.Equal(t, comm.TopicGameService, p.topic)
	assert.Equal(t, "new-game-response", p.msg.Type)
	assert.Equal(t, "sock-1", p.msg.SocketId)
	game := view(t, p)
	require.Len(t, game.Cards, 8)

	send(t, b, comm.TypeSelectCard, "sock-1", comm.SelectCardRequest{GameId: game.GameId, CardId: game.Cards[2].ID})
	p = pub.last(t)
	assert.Equal(t, "select-card-response", p.msg.Type)
	assert.True(t, view(t, p).Cards[2].IsFaceUp)

	send(t, b, comm.TypeGetGame, "sock-1", comm.GameRequest{GameId: game.GameId})
	assert.True(t, view(t, pub.last(t)).Cards[2].IsFaceUp)

	send(t, b, comm.TypeShuffle, "sock-1", comm.GameRequest{GameId: game.GameId})
	assert.Equal(t, "shuffle-response", pub.last(t).msg.Type)

	send(t, b, comm.TypeStartNewGame, "sock-1", comm.GameRequest{GameId: game.GameId})
	p = pub.last(t)
	assert.Equal(t, "start-new-game-response", p.msg.Type)
	assert.Equal(t, game.GameId, view(t, p).GameId)
}

func TestUnknownSessionPublishesError(t *testing.T) {
	b, pub := newTestBroker()

	send(t, b, comm.TypeSelectCard, "sock-2", comm.SelectCardRequest{GameId: "nope", CardId: "0a"})
	p := pub.last(t)
	assert.Equal(t, comm.TypeError, p.msg.Type)
	assert.Equal(t, "sock-2", p.msg.SocketId)

	var e comm.ErrorData
	require.NoError(t, json.Unmarshal(p.msg.Data, &e))
	assert.Equal(t, comm.TypeSelectCard, e.Request)
	assert.Contains(t, e.Error, "not found")
}

func TestMalformedPayloadPublishesError(t *testing.T) {
	b, pub := newTestBroker()

	payload := []byte(`{"type":"select-card","data":{"game_id":1},"socketid":"sock-3"}`)
	b.handleMessage(&nats.Msg{Data: payload})
	assert.Equal(t, comm.TypeError, pub.last(t).msg.Type)
}

func TestIgnoredMessages(t *testing.T) {
	b, pub := newTestBroker()

	b.handleMessage(&nats.Msg{Data: []byte("not json")})
	send(t, b, "init", "sock-4", nil)
	assert.Empty(t, pub.sent)
}

func TestPublishReturnsError(t *testing.T) {
	b, pub := newTestBroker()
	pub.err = errors.New("connection closed")

	assert.Error(t, b.Publish(comm.TopicGameService, []byte("{}")))
}
