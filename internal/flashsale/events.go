package flashsale

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCompleted = "FlashSaleOrderCompleted"

	TopicOrderCompleted = "flashsale.order.completed"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCompletedPayload struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	LedgerID  string    `json:"ledger_id"`
	Amount    string    `json:"amount"`
	OrderedAt time.Time `json:"ordered_at"`
}

// Partition key = order_id, supaya event per order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
