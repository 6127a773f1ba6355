package flashsale

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-flash-sale.git/internal/clock"
	kafkax "github.com/ariefcatur/go-flash-sale.git/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// Store adalah akses data yang dibutuhkan purchase path; *Repo memenuhinya.
type Store interface {
	InTx(ctx context.Context, fn func(pgx.Tx) error) error
	HasPurchasedToday(ctx context.Context, tx pgx.Tx, userID string, day time.Time) (bool, error)
	FindActiveLedger(ctx context.Context, tx pgx.Tx, productID string, now time.Time) (*Ledger, error)
	LockLedger(ctx context.Context, tx pgx.Tx, id string) (*Ledger, error)
	LockProduct(ctx context.Context, tx pgx.Tx, id string) (*Product, error)
	GetUserBalance(ctx context.Context, tx pgx.Tx, userID string) (decimal.Decimal, error)
	DebitBalance(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal) error
	IncrementSold(ctx context.Context, tx pgx.Tx, l *Ledger) error
	DecrementStock(ctx context.Context, tx pgx.Tx, productID string) error
	InsertOrder(ctx context.Context, tx pgx.Tx, o *Order) error
	ListActiveSales(ctx context.Context, now time.Time) ([]ActiveSale, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Reconciler dipanggil best-effort setelah commit; idempotent di sisi sana.
type Reconciler interface {
	Reconcile(ctx context.Context, orderID, productID string) error
}

type Service struct {
	Store       Store
	Clock       clock.Clock
	Producer    Publisher  // optional: event order completed
	Reconciler  Reconciler // optional: panggilan langsung selain event
	ServiceName string
}

// Purchase menjalankan satu percobaan beli sebagai transaksi SERIALIZABLE.
// Urutan: guard harian -> resolve ledger -> lock ledger -> lock product ->
// cek saldo -> empat mutasi -> commit. Lock selalu ledger dulu baru product
// supaya tidak ada siklus deadlock antar transaksi.
func (s *Service) Purchase(ctx context.Context, userID, productID string) (*PurchaseResult, error) {
	now := s.Clock.Now()

	var (
		order       Order
		productName string
		remaining   decimal.Decimal
	)

	err := s.Store.InTx(ctx, func(tx pgx.Tx) error {
		purchased, err := s.Store.HasPurchasedToday(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if purchased {
			return ErrAlreadyPurchasedToday
		}

		candidate, err := s.Store.FindActiveLedger(ctx, tx, productID, now)
		if err != nil {
			return err
		}

		// refetch di bawah lock: hasil baca tanpa lock bisa basi
		ledger, err := s.Store.LockLedger(ctx, tx, candidate.ID)
		if err != nil {
			return err
		}
		if !ledger.HasStock() {
			return ErrSoldOut
		}

		product, err := s.Store.LockProduct(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product.Stock <= 0 {
			return ErrOutOfStock
		}

		balance, err := s.Store.GetUserBalance(ctx, tx, userID)
		if err != nil {
			return err
		}
		if balance.LessThan(ledger.FlashPrice) {
			return ErrInsufficientBalance
		}

		if err := s.Store.DebitBalance(ctx, tx, userID, ledger.FlashPrice); err != nil {
			return err
		}
		if err := s.Store.IncrementSold(ctx, tx, ledger); err != nil {
			return err
		}
		if err := s.Store.DecrementStock(ctx, tx, product.ID); err != nil {
			return err
		}

		order = Order{
			ID:        uuid.NewString(),
			UserID:    userID,
			ProductID: product.ID,
			LedgerID:  ledger.ID,
			Amount:    ledger.FlashPrice,
			Status:    StatusCompleted,
			OrderedAt: now,
			OrderDate: now,
		}
		if err := s.Store.InsertOrder(ctx, tx, &order); err != nil {
			return err
		}

		productName = product.Name
		remaining = balance.Sub(ledger.FlashPrice)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Setelah commit: audit trail best-effort. Gagal di sini tidak
	// membatalkan order; reconciler idempotent dan bisa diulang.
	if s.Reconciler != nil {
		if err := s.Reconciler.Reconcile(ctx, order.ID, order.ProductID); err != nil {
			log.Printf("reconcile order=%s: %v", order.ID, err)
		}
	}
	s.publishCompleted(&order)

	log.Printf("flash sale order created: order=%s user=%s product=%s amount=%s",
		order.ID, userID, order.ProductID, order.Amount.String())

	return &PurchaseResult{
		OrderID:          order.ID,
		ProductID:        order.ProductID,
		ProductName:      productName,
		Amount:           order.Amount,
		RemainingBalance: remaining,
		Status:           string(order.Status),
		OrderedAt:        order.OrderedAt,
		Message:          "Purchase successful!",
	}, nil
}

func (s *Service) publishCompleted(o *Order) {
	if s.Producer == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     EventOrderCompleted,
		EventVersion:  1,
		OccurredAt:    s.Clock.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(OrderCompletedPayload{
			OrderID:   o.ID,
			UserID:    o.UserID,
			ProductID: o.ProductID,
			LedgerID:  o.LedgerID,
			Amount:    o.Amount.String(),
			OrderedAt: o.OrderedAt,
		}),
	}
	s.Producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
