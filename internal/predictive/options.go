package predictive

import (
	"context"
	"time"

	"github.com/chrisdamba/foodpredict/internal/logger"
	"github.com/chrisdamba/foodpredict/internal/models"
)

// Publisher receives domain events. Services log publish failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, topic, name string, payload interface{}) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }

// Options carries what every predictive service shares.
type Options struct {
	Config   models.PredictiveConfig
	Logger   *logger.Logger
	Now      func() time.Time
	Location *time.Location
	Events   Publisher
}

func (o Options) withDefaults() Options {
	o.Config = o.Config.WithDefaults()
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Events == nil {
		o.Events = nopPublisher{}
	}
	return o
}

func (o Options) now() time.Time {
	return o.Now().In(o.Location)
}

func (o Options) today() time.Time {
	return models.DateOf(o.now())
}

func (o Options) publish(ctx context.Context, topic, name string, payload interface{}) {
	if err := o.Events.Publish(ctx, topic, name, payload); err != nil {
		o.Logger.Warn("failed to publish event", "topic", topic, "event", name, "error", err)
	}
}
