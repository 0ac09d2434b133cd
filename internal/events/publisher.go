package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-cart-service/internal/models"
)

// EventType represents the type of cart event.
type EventType string

const (
	EventTypeItemAdded       EventType = "cart.item_added"
	EventTypeQuantityUpdated EventType = "cart.quantity_updated"
	EventTypeItemRemoved     EventType = "cart.item_removed"
	EventTypeCartCleared     EventType = "cart.cleared"
)

// CartEvent is the envelope published for every cart mutation.
type CartEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	CartID    string          `json:"cart_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	ItemCount int             `json:"item_count"`
	Timestamp time.Time       `json:"timestamp"`
}

// CartEventPublisher publishes cart mutation events.
type CartEventPublisher interface {
	PublishItemAdded(ctx context.Context, cartID string, item models.LineItem, itemCount int) error
	PublishQuantityUpdated(ctx context.Context, cartID, productID, variantID string, quantity, itemCount int) error
	PublishItemRemoved(ctx context.Context, cartID, productID, variantID string, itemCount int) error
	PublishCartCleared(ctx context.Context, cartID string) error
	Close() error
}

// KafkaPublisher publishes cart events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher creates a new Kafka-based cart event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.CartTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.CartTopic,
		logger: logger,
	}
}

// PublishItemAdded publishes a cart.item_added event.
func (p *KafkaPublisher) PublishItemAdded(ctx context.Context, cartID string, item models.LineItem, itemCount int) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeItemAdded, cartID, data, itemCount))
}

// PublishQuantityUpdated publishes a cart.quantity_updated event.
func (p *KafkaPublisher) PublishQuantityUpdated(ctx context.Context, cartID, productID, variantID string, quantity, itemCount int) error {
	payload := struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id,omitempty"`
		Quantity  int    `json:"quantity"`
	}{productID, variantID, quantity}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeQuantityUpdated, cartID, data, itemCount))
}

// PublishItemRemoved publishes a cart.item_removed event.
func (p *KafkaPublisher) PublishItemRemoved(ctx context.Context, cartID, productID, variantID string, itemCount int) error {
	payload := struct {
		ProductID string `json:"product_id"`
		VariantID string `json:"variant_id,omitempty"`
	}{productID, variantID}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeItemRemoved, cartID, data, itemCount))
}

// PublishCartCleared publishes a cart.cleared event.
func (p *KafkaPublisher) PublishCartCleared(ctx context.Context, cartID string) error {
	return p.publish(ctx, newEvent(EventTypeCartCleared, cartID, nil, 0))
}

func newEvent(eventType EventType, cartID string, data []byte, itemCount int) *CartEvent {
	return &CartEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		CartID:    cartID,
		Data:      data,
		ItemCount: itemCount,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *CartEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.CartID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish cart event",
			"event_id", event.ID,
			"event_type", event.Type,
			"cart_id", event.CartID,
			"error", err,
		)
		return err
	}

	p.logger.Debug("cart event published",
		"event_id", event.ID,
		"event_type", event.Type,
		"cart_id", event.CartID,
	)
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// MockEventPublisher records events in memory for testing.
type MockEventPublisher struct {
	Events []*CartEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]*CartEvent, 0)}
}

func (m *MockEventPublisher) PublishItemAdded(ctx context.Context, cartID string, item models.LineItem, itemCount int) error {
	m.Events = append(m.Events, newEvent(EventTypeItemAdded, cartID, nil, itemCount))
	return nil
}

func (m *MockEventPublisher) PublishQuantityUpdated(ctx context.Context, cartID, productID, variantID string, quantity, itemCount int) error {
	m.Events = append(m.Events, newEvent(EventTypeQuantityUpdated, cartID, nil, itemCount))
	return nil
}

func (m *MockEventPublisher) PublishItemRemoved(ctx context.Context, cartID, productID, variantID string, itemCount int) error {
	m.Events = append(m.Events, newEvent(EventTypeItemRemoved, cartID, nil, itemCount))
	return nil
}

func (m *MockEventPublisher) PublishCartCleared(ctx context.Context, cartID string) error {
	m.Events = append(m.Events, newEvent(EventTypeCartCleared, cartID, nil, 0))
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }
