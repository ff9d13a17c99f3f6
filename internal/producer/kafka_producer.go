package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"chatorder-service/internal/service"
)

const (
	EventTypeOrderPlaced   = "order_placed"
	EventTypeStockDepleted = "stock_depleted"
)

// Envelope wraps every order event on the wire so one topic can carry
// both kinds.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	return &OrderEventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *OrderEventProducer) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	return p.send(ctx, e.Item+"|"+e.Unit, EventTypeOrderPlaced, e)
}

func (p *OrderEventProducer) PublishStockDepleted(ctx context.Context, e service.StockDepletedEvent) error {
	return p.send(ctx, e.Item+"|"+e.Unit, EventTypeStockDepleted, e)
}

func (p *OrderEventProducer) send(ctx context.Context, key, typ string, data any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	value, err := json.Marshal(Envelope{Type: typ, Data: raw})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}
