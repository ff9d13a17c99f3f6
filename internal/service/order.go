package service

import (
	"context"

	"chatorder-service/internal/models"
)

// StockLedger reads and mutates stock rows of the external ledger.
type StockLedger interface {
	ReadStock(ctx context.Context, item, unit string) (models.StockQuote, error)
	WriteStock(ctx context.Context, item, unit string, newStock int) error
}

// OrderRecorder appends order rows and hands back the assigned number.
type OrderRecorder interface {
	AppendOrder(ctx context.Context, rec models.OrderRecord) (int, error)
}

type OrderService interface {
	// HandleUtterance runs one utterance through the full order flow and
	// returns the reply for the chat. Business rejections (not
	// understood, insufficient stock) are replies, not errors; an error
	// means the ledger could not be worked with.
	HandleUtterance(ctx context.Context, text string) (string, error)
}
