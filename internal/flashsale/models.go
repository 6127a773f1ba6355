package flashsale

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger adalah jatah stok untuk satu sesi flash sale.
// StartsAt/EndsAt sudah digabung dengan SaleDate di query (date + time).
type Ledger struct {
	ID         string
	ProductID  string
	SaleDate   time.Time
	StartsAt   time.Time
	EndsAt     time.Time
	FlashPrice decimal.Decimal
	TotalUnits int
	SoldUnits  int
	Active     bool
	Version    int64
}

func (l *Ledger) HasStock() bool { return l.SoldUnits < l.TotalUnits }

// Product = stok umum katalog, terpisah dari jatah flash sale.
type Product struct {
	ID           string
	Name         string
	Description  string
	RegularPrice decimal.Decimal
	Stock        int
}

type Order struct {
	ID        string
	UserID    string
	ProductID string
	LedgerID  string
	Amount    decimal.Decimal
	Status    OrderStatus
	OrderedAt time.Time
	OrderDate time.Time
}

// ActiveSale: satu baris hasil join ledger aktif + produknya (projector).
type ActiveSale struct {
	Ledger  Ledger
	Product Product
}

type PurchaseResult struct {
	OrderID          string          `json:"order_id"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
	OrderedAt        time.Time       `json:"ordered_at"`
	Message          string          `json:"message"`
}

type SaleView struct {
	LedgerID           string          `json:"flash_sale_id"`
	ProductID          string          `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Description        string          `json:"description"`
	RegularPrice       decimal.Decimal `json:"regular_price"`
	FlashPrice         decimal.Decimal `json:"flash_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	AvailableUnits     int             `json:"available_quantity"`
	TotalUnits         int             `json:"total_quantity"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	RemainingSeconds   int64           `json:"remaining_seconds"`
}
