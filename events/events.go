package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"xportconnect/models"
)

// Lifecycle event types.
const (
	OrderCreated         = "order.created"
	OrderShipperAssigned = "order.shipper_assigned"
	OrderStatusChanged   = "order.status_changed"
)

// OrderEvent is the payload published for every lifecycle change.
type OrderEvent struct {
	Type           string                `json:"type"`
	OrderID        string                `json:"orderId"`
	Buyer          string                `json:"buyer"`
	Exporter       string                `json:"exporter"`
	Shipper        string                `json:"shipper,omitempty"`
	Status         models.TrackingStatus `json:"status"`
	PreviousStatus models.TrackingStatus `json:"previousStatus,omitempty"`
	TrackingNumber string                `json:"trackingNumber,omitempty"`
	TotalAmount    float64               `json:"totalAmount"`
	Version        int64                 `json:"version"`
	OccurredAt     time.Time             `json:"occurredAt"`
}

// NewOrderEvent builds an event of typ from the order's current state.
func NewOrderEvent(typ string, o *models.Order) OrderEvent {
	ev := OrderEvent{
		Type:           typ,
		OrderID:        o.ID.Hex(),
		Buyer:          o.Buyer.Hex(),
		Exporter:       o.Exporter.Hex(),
		Status:         o.TrackingInfo.Status,
		TrackingNumber: o.TrackingInfo.TrackingNumber,
		TotalAmount:    o.TotalAmount,
		Version:        o.Version,
		OccurredAt:     time.Now().UTC(),
	}
	if o.Shipper != nil {
		ev.Shipper = o.Shipper.Hex()
	}
	return ev
}

// Publisher is used by services to publish lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// Writer is the subset of kafka.Writer the producer needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order id, so one order's events stay on one partition.
type KafkaPublisher struct {
	writer Writer
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(ev.OrderID),
		Value:   b,
		Headers: []kafka.Header{{Key: "type", Value: []byte(ev.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev OrderEvent) error {
	slog.DebugContext(ctx, "event dropped, no broker configured",
		slog.String("type", ev.Type), slog.String("order_id", ev.OrderID))
	return nil
}

func (NopPublisher) Close() error { return nil }
