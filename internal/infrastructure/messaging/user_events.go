// Package messaging carries user lifecycle events over RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-service/internal/domain/entity"
)

const publishTimeout = 5 * time.Second

// JSONPublisher is satisfied by helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// EventPublisher sends user lifecycle events to a durable queue.
type EventPublisher struct {
	pub JSONPublisher
}

func NewEventPublisher(pub JSONPublisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

func (p *EventPublisher) Publish(ctx context.Context, ev entity.UserEvent) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.pub.PublishJSON(ctx, ev.Type, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// UserIndex is the write side of the search projection.
type UserIndex interface {
	Index(ctx context.Context, u entity.UserSummary) error
	Delete(ctx context.Context, id string) error
}

// Projector applies user events to a UserIndex.
type Projector struct {
	Index   UserIndex
	Logger  *logrus.Logger
	Timeout time.Duration
}

// ErrMalformedEvent marks a delivery that can never be applied.
type ErrMalformedEvent struct{ Err error }

func (e *ErrMalformedEvent) Error() string { return "malformed user event: " + e.Err.Error() }
func (e *ErrMalformedEvent) Unwrap() error { return e.Err }

// Handle decodes one event and applies it. Unknown event types are ignored.
func (p *Projector) Handle(ctx context.Context, body []byte) error {
	var ev entity.UserEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return &ErrMalformedEvent{Err: err}
	}
	if ev.UserID == "" {
		return &ErrMalformedEvent{Err: errors.New("missing user id")}
	}

	switch ev.Type {
	case entity.EventUserCreated, entity.EventUserUpdated:
		return p.Index.Index(ctx, entity.UserSummary{
			ID:       ev.UserID,
			Username: ev.Username,
			Name:     ev.Name,
			Email:    ev.Email,
			Active:   ev.Active,
			Roles:    ev.Roles,
		})
	case entity.EventUserDeleted:
		return p.Index.Delete(ctx, ev.UserID)
	default:
		p.Logger.WithField("event", ev.Type).Debug("ignoring unknown user event")
		return nil
	}
}

// Run consumes deliveries until msgs is closed or ctx ends. Malformed
// messages are dropped; index failures are requeued.
func (p *Projector) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c, cancel := context.WithTimeout(ctx, timeout)
			err := p.Handle(c, msg.Body)
			cancel()
			p.settle(msg, err)
		}
	}
}

func (p *Projector) settle(msg amqp.Delivery, err error) {
	var malformed *ErrMalformedEvent
	switch {
	case err == nil:
		_ = msg.Ack(false)
	case errors.As(err, &malformed):
		p.Logger.WithError(err).Warn("dropping user event")
		_ = msg.Nack(false, false)
	default:
		p.Logger.WithError(err).WithField("event", msg.Type).Error("apply user event failed")
		_ = msg.Nack(false, true)
	}
}
