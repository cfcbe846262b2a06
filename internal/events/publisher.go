package events

import (
	"context"
	"log/slog"
	"time"
)

// Publisher sends a JSON-serialisable value to a topic. *kafka.Client
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }

const publishTimeout = 5 * time.Second

// Emitter publishes in the background so callers never wait on the broker.
// Failures are logged and otherwise ignored.
type Emitter struct {
	pub Publisher
	log *slog.Logger
}

func NewEmitter(pub Publisher, log *slog.Logger) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{pub: pub, log: log.With("component", "events")}
}

// Emit publishes ev to topic asynchronously.
func (e *Emitter) Emit(topic, key string, ev any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := e.pub.Publish(ctx, topic, key, ev); err != nil {
			e.log.Warn("publish failed", "topic", topic, "key", key, "err", err)
			return
		}
		e.log.Debug("published", "topic", topic, "key", key)
	}()
}
