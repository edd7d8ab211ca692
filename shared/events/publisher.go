package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Erixon159/autemix-app/shared/utils"
)

// Tenant lifecycle event types
const (
	EventTenantCreated     = "tenant.created"
	EventTenantActivated   = "tenant.activated"
	EventTenantDeactivated = "tenant.deactivated"
)

const tenantLifecycleTopic = "tenant-lifecycle"

// TenantEvent is published to Kafka on tenant lifecycle transitions
type TenantEvent struct {
	Type       string    `json:"type"`
	TenantID   string    `json:"tenant_id"`
	Subdomain  string    `json:"subdomain"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends tenant lifecycle events to Kafka through a bounded queue
// and a small worker pool, so lifecycle requests never block on the broker.
type Publisher struct {
	writer       *kafka.Writer
	eventChan    chan TenantEvent
	breaker      *utils.Breaker
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewPublisher creates a Kafka-backed event publisher. Returns nil when no
// broker is configured; a nil publisher drops events.
func NewPublisher(broker string) *Publisher {
	if broker == "" {
		return nil
	}

	p := &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		eventChan:    make(chan TenantEvent, 256),
		breaker:      utils.NewBreaker(5, 30*time.Second),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < 2; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

// PublishTenantEvent queues an event without blocking. Events are dropped
// with a warning when the queue is full or the publisher is nil.
func (p *Publisher) PublishTenantEvent(event TenantEvent) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	select {
	case p.eventChan <- event:
	default:
		logrus.Warnf("Tenant event queue full, dropped %s for %s", event.Type, event.Subdomain)
	}
}

func (p *Publisher) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.eventChan:
			if err := p.send(event); err != nil {
				logrus.Warnf("[events worker %d] Failed to publish %s for %s: %v",
					id, event.Type, event.Subdomain, err)
			}
		case <-p.shutdownChan:
			return
		}
	}
}

func (p *Publisher) send(event TenantEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal tenant event: %w", err)
	}

	msg := kafka.Message{
		Topic: tenantLifecycleTopic,
		Key:   []byte(event.TenantID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
		},
	}

	return p.breaker.Call(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return p.writer.WriteMessages(ctx, msg)
	})
}

// Close stops the workers and flushes the Kafka writer
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	close(p.shutdownChan)
	p.wg.Wait()
	return p.writer.Close()
}
