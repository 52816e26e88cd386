package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/gamesvc/service"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

// Publisher is the part of *nats.Conn the broker publishes through.
type Publisher interface {
	Publish(subj string, data []byte) error
}

type Broker struct {
	Conn        *nats.Conn
	GameService *service.GameService
	publisher   Publisher
}

func NewBroker(nc *nats.Conn, gameService *service.GameService) *Broker {
	return &Broker{
		Conn:        nc,
		GameService: gameService,
		publisher:   nc,
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	if err := json.Unmarshal(msgNat.Data, msg); err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var (
		view comm.GameView
		err  error
	)

	switch msg.Type {
	case comm.TypeNewGame:
		var request comm.NewGameRequest
		if err = decode(msg.Data, &request); err != nil {
			break
		}
		view, err = b.GameService.Create(ctx, request.Theme)
	case comm.TypeGetGame:
		var request comm.GameRequest
		if err = decode(msg.Data, &request); err != nil {
			break
		}
		view, err = b.GameService.View(request.GameId)
	case comm.TypeSelectCard:
		var request comm.SelectCardRequest
		if err = decode(msg.Data, &request); err != nil {
			break
		}
		view, err = b.GameService.Select(ctx, request.GameId, request.CardId)
	case comm.TypeShuffle:
		var request comm.GameRequest
		if err = decode(msg.Data, &request); err != nil {
			break
		}
		view, err = b.GameService.Shuffle(request.GameId)
	case comm.TypeStartNewGame:
		var request comm.GameRequest
		if err = decode(msg.Data, &request); err != nil {
			break
		}
		view, err = b.GameService.StartNewGame(ctx, request.GameId)
	default:
		log.Errorf("Unknown message type %q", msg.Type)
		return
	}

	if err != nil {
		log.Warnf("[%s] socket %s: %s", msg.Type, msg.SocketId, err)
		b.PublishError(msg.Type, err, msg.SocketId)
		return
	}

	b.PublishResponse(comm.ResponseType(msg.Type), view, msg.SocketId)
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (b *Broker) PublishResponse(msgType string, data interface{}, socketId string) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Errorf("[%s] unable to marshal data for socket %s: %s", msgType, socketId, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     raw,
		SocketId: socketId,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.Publish(comm.TopicGameService, payload)
}

func (b *Broker) PublishError(request string, cause error, socketId string) {
	b.PublishResponse(comm.TypeError, comm.ErrorData{Request: request, Error: cause.Error()}, socketId)
}

// consume message from socket service
func (b *Broker) SubscribSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// game service publish message for socket service to consume
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.publisher.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
