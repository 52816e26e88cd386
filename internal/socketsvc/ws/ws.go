package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var errMissingField = errors.New("missing required field")

// Publisher forwards client messages to the game service.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Client is a websocket connection with serialized writes.
type Client struct {
	Conn *websocket.Conn
	mu   sync.Mutex
}

func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

type Ws struct {
	connMap sync.Map // to keep track of socket connection with socketId
	Broker  Publisher
}

func NewWs() *Ws {
	return &Ws{}
}

// SocketMessage validates a message from a web client and forwards it to
// the game service. It returns an error the client should be told about.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) error {
	var err error
	switch message.Type {
	case comm.TypeNewGame:
		err = check(message.Data, &comm.NewGameRequest{}, nil)
	case comm.TypeGetGame, comm.TypeShuffle, comm.TypeStartNewGame:
		var req comm.GameRequest
		err = check(message.Data, &req, func() bool { return req.GameId != "" })
	case comm.TypeSelectCard:
		var req comm.SelectCardRequest
		err = check(message.Data, &req, func() bool { return req.GameId != "" && req.CardId != "" })
	default:
		log.Warnf("unknown event received: %s", message.Type)
		return nil
	}
	if err != nil {
		log.Errorf("Error: invalid %s payload from socket %s: %s", message.Type, socketId, err)
		return err
	}

	return s.forward(socketId, message)
}

func check(data json.RawMessage, v interface{}, valid func() bool) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, v); err != nil {
			return err
		}
	}
	if valid != nil && !valid() {
		return errMissingField
	}
	return nil
}

func (s *Ws) forward(socketId string, msg *comm.WSMessage) error {
	// never trust the socket id sent by the client
	msg.SocketId = socketId
	if len(msg.Data) == 0 {
		msg.Data = nil // sent as null
	}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return err
	}

	if err := s.Broker.Publish(comm.TopicSocketService, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.TopicSocketService, err)
		return err
	}

	log.Debugf("Published %s message from socket %s", msg.Type, socketId)
	return nil
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) *Client {
	c := &Client{Conn: conn}
	s.connMap.Store(socketId, c)
	return c
}

func (s *Ws) GetConnection(socketId string) (*Client, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*Client), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
