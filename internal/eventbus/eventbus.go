// Package eventbus builds the watermill publisher/subscriber pair used by
// the router, either in-process or over NATS.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"

	"github.com/Black-And-White-Club/quote-bot/internal/handlerwrapper"
	natsutil "github.com/Black-And-White-Club/quote-bot/internal/nats"
)

// Supported drivers.
const (
	DriverGoChannel = "gochannel"
	DriverNATS      = "nats"
)

// EventBus publishes and subscribes watermill messages.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects and configures the transport.
type Config struct {
	Driver string
	URL    string
	// JetStream switches the NATS driver from core subjects to durable
	// JetStream consumers.
	JetStream bool
	// NKeySeed authenticates the NATS driver with an NKey user seed.
	NKeySeed string
}

// New creates the event bus for cfg. An empty driver selects gochannel.
func New(cfg Config, logger *slog.Logger) (EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Driver {
	case "", DriverGoChannel:
		logger.Info("Using in-process event bus")
		// Publishing waits for the ack so a subscriber sees one topic in order.
		return gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            256,
			BlockPublishUntilSubscriberAck: true,
		}, wmLogger), nil
	case DriverNATS:
		return newNATSBus(cfg, logger, wmLogger)
	default:
		return nil, fmt.Errorf("unsupported event bus driver %q", cfg.Driver)
	}
}

type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

func newNATSBus(cfg Config, logger *slog.Logger, wmLogger watermill.LoggerAdapter) (*natsBus, error) {
	marshaler := &nats.NATSMarshaler{}
	options, err := natsutil.Options(natsutil.Config{
		URL:      cfg.URL,
		Name:     "quote-bot",
		NKeySeed: cfg.NKeySeed,
	}, logger)
	if err != nil {
		return nil, err
	}
	jsConfig := nats.JetStreamConfig{Disabled: true}
	if cfg.JetStream {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := provisionStream(ctx, cfg.URL, options, logger)
		cancel()
		if err != nil {
			return nil, err
		}
		jsConfig = nats.JetStreamConfig{
			DurablePrefix: "quotebot",
			SubscribeOptions: []nc.SubOpt{
				nc.DeliverAll(),
				nc.AckExplicit(),
			},
		}
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.URL,
			Marshaler:   marshaler,
			NatsOptions: options,
			JetStream:   jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		logger.Error("Failed to create NATS publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.URL,
			Unmarshaler:      marshaler,
			NatsOptions:      options,
			SubscribersCount: 1,
			JetStream:        jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		logger.Error("Failed to create NATS subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Using NATS event bus",
		slog.String("url", cfg.URL),
		slog.Bool("jetstream", cfg.JetStream),
	)
	return &natsBus{publisher: publisher, subscriber: subscriber}, nil
}

func (b *natsBus) Publish(topic string, messages ...*message.Message) error {
	return b.publisher.Publish(topic, messages...)
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, topic)
}

func (b *natsBus) Close() error {
	return errors.Join(b.subscriber.Close(), b.publisher.Close())
}

// PublishPayload encodes payload as JSON and publishes it on topic.
func PublishPayload(ctx context.Context, publisher message.Publisher, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(handlerwrapper.Result{Topic: topic, Payload: payload}, "")
	if err != nil {
		return err
	}
	msg.SetContext(ctx)
	if err := publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// PublishTagged publishes each message on the topic named by its
// handlerwrapper.TopicMetadataKey metadata.
func PublishTagged(publisher message.Publisher, messages ...*message.Message) error {
	for _, m := range messages {
		topic := m.Metadata.Get(handlerwrapper.TopicMetadataKey)
		if topic == "" {
			return fmt.Errorf("message %s has no topic metadata", m.UUID)
		}
		if err := publisher.Publish(topic, m); err != nil {
			return fmt.Errorf("failed to publish to %s: %w", topic, err)
		}
	}
	return nil
}
