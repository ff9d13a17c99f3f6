package models

import "time"

// Sentinel values for order-intent slots the customer left out.
const (
	CustomerUnspecified = "ไม่ระบุชื่อ"
	UnitPiece           = "ชิ้น"
	DeliveryUnspecified = "ไม่ระบุ"
)

// OrderIntent is the structured form of one order utterance. It is
// consumed immediately by the workflow and never persisted as-is.
type OrderIntent struct {
	Customer       string
	Item           string
	Quantity       int
	Unit           string
	DeliveryMethod string
}

// StockQuote is the current ledger state for one (item, unit) pair.
// A pair with no ledger row reads as the zero value.
type StockQuote struct {
	Stock int
	Price int
}

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "รอดำเนินการ"
)

// OrderRecord is one append-only row of the orders table.
type OrderRecord struct {
	OrderNo        int
	Timestamp      time.Time
	Customer       string
	Item           string
	Quantity       int
	Unit           string
	DeliveryMethod string
	Status         OrderStatus
	Total          int
}
