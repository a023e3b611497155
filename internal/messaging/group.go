package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Worker is a topic consumer with a start/stop lifecycle. Consumer implements it.
type Worker interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs workers over one shared subscriber. Only workers that
// started are stopped, newest first, and the subscriber is closed last.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger

	mu      sync.Mutex
	workers []Worker
	started []Worker
}

// NewConsumerGroup creates a new consumer group.
func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a worker to the group.
func (g *ConsumerGroup) Add(worker Worker) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.workers = append(g.workers, worker)
}

// Topics lists the topics of the registered workers in registration order.
func (g *ConsumerGroup) Topics() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.topicsOf(g.workers)
}

// Start starts workers in order. If one fails, the ones already running
// are stopped before the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, worker := range g.workers {
		if err := worker.Start(ctx); err != nil {
			_ = g.stopStarted()

			return fmt.Errorf("failed to start consumer for %s: %w", worker.Topic(), err)
		}

		g.started = append(g.started, worker)
	}

	g.logger.Info("consumer group started", zap.Strings("topics", g.topicsOf(g.started)))

	return nil
}

// Shutdown stops the running workers, then closes the subscriber, and joins
// their errors.
func (g *ConsumerGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.logger.Info("shutting down consumer group", zap.Int("running", len(g.started)))

	return errors.Join(g.stopStarted(), g.subscriber.Close())
}

func (g *ConsumerGroup) stopStarted() error {
	errs := make([]error, 0, len(g.started))

	for i := len(g.started) - 1; i >= 0; i-- {
		errs = append(errs, g.started[i].Shutdown())
	}

	g.started = nil

	return errors.Join(errs...)
}

func (g *ConsumerGroup) topicsOf(workers []Worker) []string {
	topics := make([]string, len(workers))
	for i, w := range workers {
		topics[i] = w.Topic()
	}

	return topics
}
