package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-flash-sale.git/internal/flashsale"
)

const MovementFlashSaleOrder = "FLASH_SALE_ORDER"

// ReferenceID deterministik dari identitas order; kunci idempotensi.
func ReferenceID(orderID string) string { return "ORDER_" + orderID }

// Movement = satu baris audit trail pergerakan stok. Append-only.
type Movement struct {
	ID             string
	ProductID      string
	QuantityChange int
	StockBefore    int
	StockAfter     int
	MovementType   string
	ReferenceID    string
	RecordedAt     time.Time
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) MovementExists(ctx context.Context, movementType, referenceID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stock_movements
			WHERE movement_type = $1 AND reference_id = $2
		)`, movementType, referenceID).Scan(&exists)
	return exists, err
}

func (r *Repo) GetOrderStatus(ctx context.Context, orderID string) (flashsale.OrderStatus, error) {
	var s string
	err := r.DB.QueryRow(ctx, `SELECT status FROM flash_sale_orders WHERE id = $1`, orderID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", flashsale.ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return flashsale.OrderStatus(s), nil
}

func (r *Repo) GetProductStock(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, flashsale.ErrProductNotFound
	}
	return stock, err
}

// InsertMovement: unique (movement_type, reference_id) adalah guard yang
// sebenarnya; duplikat yang kalah race jatuh ke DO NOTHING, bukan error.
func (r *Repo) InsertMovement(ctx context.Context, m *Movement) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, quantity_change, stock_before, stock_after, movement_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (movement_type, reference_id) DO NOTHING`,
		m.ID, m.ProductID, m.QuantityChange, m.StockBefore, m.StockAfter, m.MovementType, m.ReferenceID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}
