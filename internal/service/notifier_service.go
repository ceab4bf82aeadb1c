package service

import (
	"context"
	"encoding/json"
	"strings"

	"agent-sim-be/internal/model"
	"agent-sim-be/internal/pkg/logger"
	"agent-sim-be/internal/websocket"
	"agent-sim-be/pkg/events"
	pktNats "agent-sim-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type INotifierService interface {
	Consume(ctx context.Context) error
}

// notifierService drains the in-process session-event topic and delivers:
// every event to the websocket hub, and lifecycle events additionally to
// NATS for external consumers. The NATS publisher may be nil.
type notifierService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       *websocket.Hub
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewNotifierService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (n *notifierService) Consume(ctx context.Context) error {
	messages, err := n.pubSub.Subscribe(ctx, n.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			n.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (n *notifierService) processMessage(ctx context.Context, msg *message.Message) {
	var event model.SessionEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		n.logger.Error("Notifier", "Failed to unmarshal session event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads must not be retried
		return
	}

	n.hub.Send(event.SessionID, event)

	if event.Kind == "lifecycle" && event.Lifecycle != nil && n.natsPub != nil {
		code := "SIMULATION_" + strings.ToUpper(event.Lifecycle.Type)
		evt := events.NewSimulationEvent(code, event.SessionID, event.Lifecycle.SimulationID)
		if err := n.natsPub.Publish(ctx, evt); err != nil {
			n.logger.Warn("Notifier", "Failed to publish lifecycle event to NATS", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}
