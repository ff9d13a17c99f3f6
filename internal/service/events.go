package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderPlacedEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	OrderNo        int       `json:"order_no"`
	Customer       string    `json:"customer"`
	Item           string    `json:"item"`
	Quantity       int       `json:"quantity"`
	Unit           string    `json:"unit"`
	Total          int       `json:"total"`
	DeliveryMethod string    `json:"delivery_method"`
	PlacedAt       time.Time `json:"placed_at"`
}

type StockDepletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Item       string    `json:"item"`
	Unit       string    `json:"unit"`
	DepletedAt time.Time `json:"depleted_at"`
}

type EventBus interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlacedEvent) error
	PublishStockDepleted(ctx context.Context, e StockDepletedEvent) error
}
