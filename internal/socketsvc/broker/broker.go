package broker

import (
	"encoding/json"
	"strings"

	"github.com/avvvet/memory-services/internal/comm"
	"github.com/avvvet/memory-services/internal/socketsvc/ws"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

type Broker struct {
	Conn          *nats.Conn
	GetConnection func(string) (*ws.Client, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*ws.Client, bool)) *Broker {
	return &Broker{
		Conn:          conn,
		GetConnection: fncGetConnection,
	}
}

// consume message from game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receive message from game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	if err := json.Unmarshal(msgNats.Data, message); err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if message.Type != comm.TypeError && !strings.HasSuffix(message.Type, "-response") {
		log.Errorf("Unknown message %q", message.Type)
		return
	}
	b.sendMessage(message)
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	client, ok := b.GetConnection(m.SocketId)
	if !ok {
		log.Debugf("socket %s is gone, dropping %s", m.SocketId, m.Type)
		return
	}
	if err := client.WriteJSON(m); err != nil {
		log.Errorf("Failed to write %s to socket %s: %v", m.Type, m.SocketId, err)
	}
}
