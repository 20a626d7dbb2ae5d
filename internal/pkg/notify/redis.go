package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stockroom/internal/domain"
)

// Publisher é satisfeito por *cache.RedisClient.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Event é o envelope JSON publicado no canal Redis.
type Event struct {
	Type       string            `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Request    *domain.Request   `json:"request,omitempty"`
	Component  *domain.Component `json:"component,omitempty"`
}

// RedisNotifier publica os eventos num canal pub/sub do Redis.
type RedisNotifier struct {
	pub     Publisher
	channel string
}

// NewRedisNotifier cria um RedisNotifier para o canal informado.
func NewRedisNotifier(pub Publisher, channel string) *RedisNotifier {
	return &RedisNotifier{pub: pub, channel: channel}
}

func (n *RedisNotifier) RequestApproved(ctx context.Context, req domain.Request) error {
	return n.publish(ctx, Event{Type: EventRequestApproved, Request: &req})
}

func (n *RedisNotifier) RequestReturned(ctx context.Context, req domain.Request) error {
	return n.publish(ctx, Event{Type: EventRequestReturned, Request: &req})
}

func (n *RedisNotifier) LowStock(ctx context.Context, c domain.Component) error {
	return n.publish(ctx, Event{Type: EventLowStock, Component: &c})
}

func (n *RedisNotifier) publish(ctx context.Context, ev Event) error {
	ev.OccurredAt = time.Now().UTC()
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("falha ao serializar evento %s: %w", ev.Type, err)
	}
	if err := n.pub.Publish(ctx, n.channel, payload); err != nil {
		return fmt.Errorf("falha ao publicar evento %s no Redis: %w", ev.Type, err)
	}
	return nil
}
