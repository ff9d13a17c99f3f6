package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"chatorder-service/internal/producer"
	"chatorder-service/internal/sender"
	"chatorder-service/internal/service"
)

// KafkaOrderConsumer turns order events into operator emails.
type KafkaOrderConsumer struct {
	reader *kafka.Reader
	emails *sender.EmailSender
	log    *zap.Logger
}

func NewKafkaOrderConsumer(brokers []string, groupID, topic string, emails *sender.EmailSender, log *zap.Logger) *KafkaOrderConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaOrderConsumer{reader: r, emails: emails, log: log}
}

func (c *KafkaOrderConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		if err := c.handle(m.Value); err != nil {
			c.log.Error("handle order event", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}
	}
}

func (c *KafkaOrderConsumer) handle(value []byte) error {
	var env producer.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case producer.EventTypeOrderPlaced:
		var e service.OrderPlacedEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("unmarshal order placed: %w", err)
		}
		err := c.emails.Send(
			fmt.Sprintf("New order #%d: %s x%d", e.OrderNo, e.Item, e.Quantity),
			"order_placed",
			map[string]any{
				"OrderNo":  e.OrderNo,
				"Customer": e.Customer,
				"Item":     e.Item,
				"Quantity": e.Quantity,
				"Unit":     e.Unit,
				"Total":    e.Total,
				"Delivery": e.DeliveryMethod,
				"PlacedAt": e.PlacedAt,
			})
		if err != nil {
			return err
		}
		c.log.Info("order email sent", zap.Int("orderNo", e.OrderNo))
		return nil

	case producer.EventTypeStockDepleted:
		var e service.StockDepletedEvent
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("unmarshal stock depleted: %w", err)
		}
		err := c.emails.Send(
			fmt.Sprintf("Out of stock: %s (%s)", e.Item, e.Unit),
			"stock_depleted",
			map[string]any{
				"Item":       e.Item,
				"Unit":       e.Unit,
				"DepletedAt": e.DepletedAt,
			})
		if err != nil {
			return err
		}
		c.log.Info("stock alert sent", zap.String("item", e.Item), zap.String("unit", e.Unit))
		return nil

	default:
		c.log.Warn("unknown event type, skipping", zap.String("type", env.Type))
		return nil
	}
}

func (c *KafkaOrderConsumer) Close() error { return c.reader.Close() }
