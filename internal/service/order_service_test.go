package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"chatorder-service/internal/models"
	"chatorder-service/internal/service"
)

// Mocks for the workflow ports.

type MockStockLedger struct {
	ReadStockFunc  func(ctx context.Context, item, unit string) (models.StockQuote, error)
	WriteStockFunc func(ctx context.Context, item, unit string, newStock int) error

	mu     sync.Mutex
	reads  int
	writes int
}

func (m *MockStockLedger) ReadStock(ctx context.Context, item, unit string) (models.StockQuote, error) {
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if m.ReadStockFunc != nil {
		return m.ReadStockFunc(ctx, item, unit)
	}
	return models.StockQuote{}, nil
}

func (m *MockStockLedger) WriteStock(ctx context.Context, item, unit string, newStock int) error {
	m.mu.Lock()
	m.writes++
	m.mu.Unlock()
	if m.WriteStockFunc != nil {
		return m.WriteStockFunc(ctx, item, unit, newStock)
	}
	return nil
}

type MockOrderRecorder struct {
	AppendOrderFunc func(ctx context.Context, rec models.OrderRecord) (int, error)

	mu      sync.Mutex
	appends int
}

func (m *MockOrderRecorder) AppendOrder(ctx context.Context, rec models.OrderRecord) (int, error) {
	m.mu.Lock()
	m.appends++
	m.mu.Unlock()
	if m.AppendOrderFunc != nil {
		return m.AppendOrderFunc(ctx, rec)
	}
	return 1, nil
}

type MockEventBus struct {
	PublishOrderPlacedFunc   func(ctx context.Context, e service.OrderPlacedEvent) error
	PublishStockDepletedFunc func(ctx context.Context, e service.StockDepletedEvent) error
}

func (m *MockEventBus) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	if m.PublishOrderPlacedFunc != nil {
		return m.PublishOrderPlacedFunc(ctx, e)
	}
	return nil
}

func (m *MockEventBus) PublishStockDepleted(ctx context.Context, e service.StockDepletedEvent) error {
	if m.PublishStockDepletedFunc != nil {
		return m.PublishStockDepletedFunc(ctx, e)
	}
	return nil
}

func TestHandleUtteranceNotUnderstood(t *testing.T) {
	ledger := &MockStockLedger{}
	recorder := &MockOrderRecorder{}
	svc := service.NewOrderService(ledger, recorder, nil, zap.NewNop())

	reply, err := svc.HandleUtterance(context.Background(), "สวัสดีครับ ขายอะไรบ้าง")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != models.ReplyNotUnderstood {
		t.Errorf("reply = %q", reply)
	}
	if ledger.reads != 0 || ledger.writes != 0 || recorder.appends != 0 {
		t.Errorf("ledger touched on not-understood input: reads=%d writes=%d appends=%d",
			ledger.reads, ledger.writes, recorder.appends)
	}
}

func TestHandleUtteranceFullOrder(t *testing.T) {
	var wroteStock int
	depleted := false

	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			if item != "มะนาว" || unit != "ลูก" {
				t.Errorf("read (%q, %q)", item, unit)
			}
			return models.StockQuote{Stock: 10, Price: 5}, nil
		},
		WriteStockFunc: func(ctx context.Context, item, unit string, newStock int) error {
			wroteStock = newStock
			return nil
		},
	}
	recorder := &MockOrderRecorder{
		AppendOrderFunc: func(ctx context.Context, rec models.OrderRecord) (int, error) {
			if rec.Total != 15 {
				t.Errorf("total = %d, want 15", rec.Total)
			}
			if rec.Status != models.OrderStatusPending {
				t.Errorf("status = %q", rec.Status)
			}
			return 4, nil
		},
	}
	events := &MockEventBus{
		PublishStockDepletedFunc: func(ctx context.Context, e service.StockDepletedEvent) error {
			depleted = true
			return nil
		},
	}
	svc := service.NewOrderService(ledger, recorder, events, zap.NewNop())

	reply, err := svc.HandleUtterance(context.Background(), "สมชาย สั่ง มะนาว 3 ลูก ส่งโดย Grab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"#4", "สมชาย", "มะนาว", "3", "ลูก", "15", "Grab"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply %q missing %q", reply, want)
		}
	}
	if wroteStock != 7 {
		t.Errorf("stock written = %d, want 7", wroteStock)
	}
	if depleted {
		t.Error("stock depleted event published at stock 7")
	}
}

func TestHandleUtteranceExactStockAccepted(t *testing.T) {
	var wroteStock = -1
	depleted := false

	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			return models.StockQuote{Stock: 5, Price: 2}, nil
		},
		WriteStockFunc: func(ctx context.Context, item, unit string, newStock int) error {
			wroteStock = newStock
			return nil
		},
	}
	events := &MockEventBus{
		PublishStockDepletedFunc: func(ctx context.Context, e service.StockDepletedEvent) error {
			depleted = true
			return nil
		},
	}
	svc := service.NewOrderService(ledger, &MockOrderRecorder{}, events, zap.NewNop())

	if _, err := svc.HandleUtterance(context.Background(), "สั่ง มะนาว 5 ลูก"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wroteStock != 0 {
		t.Errorf("stock written = %d, want 0", wroteStock)
	}
	if !depleted {
		t.Error("expected stock depleted event at stock 0")
	}
}

func TestHandleUtteranceInsufficientStock(t *testing.T) {
	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			return models.StockQuote{Stock: 4, Price: 2}, nil
		},
	}
	recorder := &MockOrderRecorder{}
	svc := service.NewOrderService(ledger, recorder, nil, zap.NewNop())

	reply, err := svc.HandleUtterance(context.Background(), "สั่ง มะนาว 5 ลูก")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "มะนาว") || !strings.Contains(reply, "ไม่เพียงพอ") {
		t.Errorf("reply = %q", reply)
	}
	if ledger.writes != 0 || recorder.appends != 0 {
		t.Errorf("side effects on rejected order: writes=%d appends=%d", ledger.writes, recorder.appends)
	}
}

func TestHandleUtteranceUnknownItemRejected(t *testing.T) {
	// No ledger row reads as zero stock, so any positive quantity is
	// rejected.
	svc := service.NewOrderService(&MockStockLedger{}, &MockOrderRecorder{}, nil, zap.NewNop())

	reply, err := svc.HandleUtterance(context.Background(), "สั่ง ทุเรียน 1 ลูก")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "ไม่เพียงพอ") {
		t.Errorf("reply = %q", reply)
	}
}

func TestHandleUtteranceAppendFailureAbortsStockWrite(t *testing.T) {
	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			return models.StockQuote{Stock: 10, Price: 5}, nil
		},
	}
	recorder := &MockOrderRecorder{
		AppendOrderFunc: func(ctx context.Context, rec models.OrderRecord) (int, error) {
			return 0, errors.New("append failed")
		},
	}
	svc := service.NewOrderService(ledger, recorder, nil, zap.NewNop())

	if _, err := svc.HandleUtterance(context.Background(), "สั่ง มะนาว 3 ลูก"); err == nil {
		t.Fatal("expected error")
	}
	if ledger.writes != 0 {
		t.Errorf("stock written %d times after failed append", ledger.writes)
	}
}

func TestHandleUtteranceWriteFailureSurfaces(t *testing.T) {
	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			return models.StockQuote{Stock: 10, Price: 5}, nil
		},
		WriteStockFunc: func(ctx context.Context, item, unit string, newStock int) error {
			return errors.New("write failed")
		},
	}
	svc := service.NewOrderService(ledger, &MockOrderRecorder{}, nil, zap.NewNop())

	if _, err := svc.HandleUtterance(context.Background(), "สั่ง มะนาว 3 ลูก"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleUtteranceConcurrentSameItemNoOversell(t *testing.T) {
	// Shared in-memory stock behind the mock: the keyed lock must make
	// read-check-write atomic per (item, unit), so selling 3+3 out of 5
	// accepts exactly one order.
	var mu sync.Mutex
	stock := 5

	ledger := &MockStockLedger{
		ReadStockFunc: func(ctx context.Context, item, unit string) (models.StockQuote, error) {
			mu.Lock()
			defer mu.Unlock()
			return models.StockQuote{Stock: stock, Price: 1}, nil
		},
		WriteStockFunc: func(ctx context.Context, item, unit string, newStock int) error {
			mu.Lock()
			defer mu.Unlock()
			stock = newStock
			return nil
		},
	}
	svc := service.NewOrderService(ledger, &MockOrderRecorder{}, nil, zap.NewNop())

	var wg sync.WaitGroup
	accepted := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reply, err := svc.HandleUtterance(context.Background(), "สั่ง มะนาว 3 ลูก")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !strings.Contains(reply, "ไม่เพียงพอ") {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	n := 0
	for range accepted {
		n++
	}
	if n != 1 {
		t.Errorf("accepted %d concurrent orders out of stock 5, want 1", n)
	}
	if stock != 2 {
		t.Errorf("final stock = %d, want 2", stock)
	}
}
