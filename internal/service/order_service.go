package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chatorder-service/internal/models"
	"chatorder-service/internal/parser"
)

type orderService struct {
	ledger   StockLedger
	recorder OrderRecorder
	events   EventBus
	log      *zap.Logger
	locks    *keyedMutex
	now      func() time.Time
}

func NewOrderService(ledger StockLedger, recorder OrderRecorder, events EventBus, log *zap.Logger) OrderService {
	return &orderService{
		ledger:   ledger,
		recorder: recorder,
		events:   events,
		log:      log,
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

func (s *orderService) HandleUtterance(ctx context.Context, text string) (string, error) {
	intent, ok := parser.Parse(text)
	if !ok {
		return models.ReplyNotUnderstood, nil
	}

	unlock := s.locks.Lock(intent.Item + "|" + intent.Unit)
	defer unlock()

	quote, err := s.ledger.ReadStock(ctx, intent.Item, intent.Unit)
	if err != nil {
		return "", fmt.Errorf("read stock: %w", err)
	}

	if quote.Stock < intent.Quantity {
		return fmt.Sprintf("ขออภัยค่ะ %s มีไม่เพียงพอ (คงเหลือ %d %s)",
			intent.Item, quote.Stock, intent.Unit), nil
	}

	total := quote.Price * intent.Quantity
	rec := models.OrderRecord{
		Timestamp:      s.now(),
		Customer:       intent.Customer,
		Item:           intent.Item,
		Quantity:       intent.Quantity,
		Unit:           intent.Unit,
		DeliveryMethod: intent.DeliveryMethod,
		Status:         models.OrderStatusPending,
		Total:          total,
	}

	orderNo, err := s.recorder.AppendOrder(ctx, rec)
	if err != nil {
		// Stock stays untouched when the order row never made it in.
		return "", fmt.Errorf("append order: %w", err)
	}

	newStock := quote.Stock - intent.Quantity
	if err := s.ledger.WriteStock(ctx, intent.Item, intent.Unit, newStock); err != nil {
		s.log.Error("stock write failed after order append, ledger is inconsistent",
			zap.Int("orderNo", orderNo),
			zap.String("item", intent.Item),
			zap.String("unit", intent.Unit),
			zap.Error(err))
		return "", fmt.Errorf("write stock: %w", err)
	}

	s.publish(ctx, intent, orderNo, total, newStock)

	return fmt.Sprintf("รับออเดอร์ #%d แล้วค่ะ\nลูกค้า: %s\nรายการ: %s %d %s\nยอดรวม: %d บาท\nจัดส่ง: %s",
		orderNo, intent.Customer, intent.Item, intent.Quantity, intent.Unit, total, intent.DeliveryMethod), nil
}

// Event delivery is best-effort and never touches the reply.
func (s *orderService) publish(ctx context.Context, intent models.OrderIntent, orderNo, total, newStock int) {
	if s.events == nil {
		return
	}
	now := s.now()
	if err := s.events.PublishOrderPlaced(ctx, OrderPlacedEvent{
		EventID:        uuid.New(),
		OrderNo:        orderNo,
		Customer:       intent.Customer,
		Item:           intent.Item,
		Quantity:       intent.Quantity,
		Unit:           intent.Unit,
		Total:          total,
		DeliveryMethod: intent.DeliveryMethod,
		PlacedAt:       now,
	}); err != nil {
		s.log.Warn("publish order placed", zap.Int("orderNo", orderNo), zap.Error(err))
	}
	if newStock == 0 {
		if err := s.events.PublishStockDepleted(ctx, StockDepletedEvent{
			EventID:    uuid.New(),
			Item:       intent.Item,
			Unit:       intent.Unit,
			DepletedAt: now,
		}); err != nil {
			s.log.Warn("publish stock depleted", zap.String("item", intent.Item), zap.Error(err))
		}
	}
}
