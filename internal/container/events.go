package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/analytics"
	analyticsstore "github.com/serroba/url-shortener/internal/analytics/store"
	"github.com/serroba/url-shortener/internal/messaging"
	"go.uber.org/zap"
)

// AnalyticsConsumerGroup is the redis stream consumer group shared by
// analytics consumer replicas.
const AnalyticsConsumerGroup = "analytics"

const memoryBufferSize = 256

// PublisherGroupPackage provides the *messaging.PublisherGroup for the
// transport selected by Options.Events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Events == EventsMemory {
			return messaging.NewPublisherGroup(do.MustInvoke[*gochannel.GoChannel](i)), nil
		}

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client:     do.MustInvoke[*redis.Client](i),
				Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
			},
			watermillLogger(i),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis stream publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides the *messaging.ConsumerGroup that feeds
// url.created and url.accessed events into the analytics store.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		return analyticsstore.NewLog(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[analytics.Store](i)

		var subscriber message.Subscriber

		if opts.Events == EventsMemory {
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		} else {
			sub, err := redisstream.NewSubscriber(
				redisstream.SubscriberConfig{
					Client:        do.MustInvoke[*redis.Client](i),
					Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
					ConsumerGroup: AnalyticsConsumerGroup,
				},
				watermillLogger(i),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to create redis stream subscriber: %w", err)
			}

			subscriber = sub
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[analytics.URLCreatedEvent](
			subscriber, analytics.TopicURLCreated, sink.SaveURLCreated, logger,
		))
		group.Add(messaging.NewConsumer[analytics.URLAccessedEvent](
			subscriber, analytics.TopicURLAccessed, sink.SaveURLAccessed, logger,
		))

		return group, nil
	})
}

// StartConsumers starts the consumer group provided by ConsumerGroupPackage.
func StartConsumers(ctx context.Context, injector *do.Injector) error {
	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		return err
	}

	return group.Start(ctx)
}

// MemoryPubSubPackage provides the in-process *gochannel.GoChannel used
// when Options.Events is "memory".
func MemoryPubSubPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: memoryBufferSize},
			watermillLogger(i),
		), nil
	})
}

func watermillLogger(i *do.Injector) watermill.LoggerAdapter {
	return messaging.NewZapLoggerAdapter(do.MustInvoke[*zap.Logger](i))
}
