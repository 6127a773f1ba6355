package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
	kafkax "github.com/ariefcatur/go-flash-sale.git/internal/kafka"
	"github.com/ariefcatur/go-flash-sale.git/internal/redisx"
	kafkago "github.com/segmentio/kafka-go"
)

// Store adalah akses data reconciler; *Repo memenuhinya.
type Store interface {
	MovementExists(ctx context.Context, movementType, referenceID string) (bool, error)
	GetOrderStatus(ctx context.Context, orderID string) (flashsale.OrderStatus, error)
	GetProductStock(ctx context.Context, productID string) (int, error)
	InsertMovement(ctx context.Context, m *Movement) (bool, error)
}

type Service struct {
	Store       Store
	Redis       *redis.Client // optional: dedup event consumer
	ServiceName string
}

// Reconcile mencatat audit pergerakan stok untuk satu order. Idempotent:
// dipanggil berulang (retry, event dobel) hasilnya tetap satu baris.
func (s *Service) Reconcile(ctx context.Context, orderID, productID string) error {
	ref := ReferenceID(orderID)

	exists, err := s.Store.MovementExists(ctx, MovementFlashSaleOrder, ref)
	if err != nil {
		return err
	}
	if exists {
		log.Printf("inventory already synced for order %s", orderID)
		return nil
	}

	status, err := s.Store.GetOrderStatus(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}
	if status != flashsale.StatusCompleted {
		log.Printf("order %s not completed (%s), skip sync", orderID, status)
		return nil
	}

	stock, err := s.Store.GetProductStock(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product %s: %w", productID, err)
	}

	// stok sudah dikurangi di purchase tx, jadi nilai "before" direkonstruksi
	m := &Movement{
		ID:             uuid.NewString(),
		ProductID:      productID,
		QuantityChange: -1,
		StockBefore:    stock + 1,
		StockAfter:     stock,
		MovementType:   MovementFlashSaleOrder,
		ReferenceID:    ref,
	}
	inserted, err := s.Store.InsertMovement(ctx, m)
	if err != nil {
		return err
	}
	if !inserted {
		// kalah race dari pemanggil lain; sudah tercatat, bukan error
		log.Printf("inventory sync raced for order %s, already recorded", orderID)
		return nil
	}

	log.Printf("inventory synced: product=%s order=%s before=%d after=%d",
		productID, orderID, m.StockBefore, m.StockAfter)
	return nil
}

// HandleOrderCompleted: dipasang sebagai handler consumer.
func (s *Service) HandleOrderCompleted(ctx context.Context, m kafkago.Message) error {
	var env flashsale.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != flashsale.EventOrderCompleted {
		return nil
	} // ignore

	// dedup via Redis (pakai event_id); fast path saja, guard asli tetap
	// unique constraint di stock_movements
	dkey := fmt.Sprintf(redisx.KeyDedup, "reconciler", env.EventID)
	if s.Redis != nil {
		exists, _ := redisx.Exists(ctx, s.Redis, dkey)
		if exists {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[flashsale.OrderCompletedPayload](env.Payload)
	if err != nil {
		return err
	}
	if err := s.Reconcile(ctx, p.OrderID, p.ProductID); err != nil {
		// jangan tandai dedup: offset tidak di-commit, redelivery
		// harus tetap sampai ke Reconcile
		return err
	}

	if s.Redis != nil {
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}
	return nil
}
