package flashsale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repo: akses data purchase path. Semua helper ber-tx dipanggil di dalam
// InTx; urutan lock tetap (ledger dulu, baru product) dijaga oleh Service.
type Repo struct {
	DB *pgxpool.Pool

	// berapa lama nunggu row lock; 0 = pakai default server
	LockTimeout time.Duration
}

const ledgerCols = `id, product_id, sale_date, sale_date + start_time, sale_date + end_time,
	flash_price, total_units, sold_units, is_active, version`

// InTx menjalankan fn dalam satu transaksi SERIALIZABLE dengan lock_timeout
// lokal. Error lock/serialization dipetakan ke ErrLockTimeout.
func (r *Repo) InTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.LockTimeout > 0 {
		// SET LOCAL tidak bisa pakai bind parameter
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.LockTimeout.Milliseconds())); err != nil {
			return err
		}
	}

	if err := fn(tx); err != nil {
		return classifyTxErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyTxErr(err)
	}
	return nil
}

func (r *Repo) HasPurchasedToday(ctx context.Context, tx pgx.Tx, userID string, day time.Time) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM flash_sale_orders
			WHERE user_id = $1 AND order_date = $2::date AND status = 'COMPLETED'
		)`, userID, day.Format("2006-01-02")).Scan(&exists)
	return exists, err
}

// FindActiveLedger: kandidat tanpa lock; hasilnya bisa basi, wajib
// di-refetch lewat LockLedger sebelum dipakai.
func (r *Repo) FindActiveLedger(ctx context.Context, tx pgx.Tx, productID string, now time.Time) (*Ledger, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+ledgerCols+`
		FROM flash_sale_ledgers
		WHERE product_id = $1
		  AND sale_date = $2::date
		  AND start_time <= $3::time
		  AND end_time >= $3::time
		  AND is_active`,
		productID, now.Format("2006-01-02"), now.Format("15:04:05.000000"))
	l, err := scanLedger(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveSale
	}
	return l, err
}

func (r *Repo) LockLedger(ctx context.Context, tx pgx.Tx, id string) (*Ledger, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+ledgerCols+`
		FROM flash_sale_ledgers
		WHERE id = $1
		FOR UPDATE`, id)
	l, err := scanLedger(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveSale
	}
	return l, err
}

func (r *Repo) LockProduct(ctx context.Context, tx pgx.Tx, id string) (*Product, error) {
	var p Product
	err := tx.QueryRow(ctx, `
		SELECT id, name, description, regular_price, stock
		FROM products
		WHERE id = $1
		FOR UPDATE`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.RegularPrice, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Saldo dibaca tanpa FOR UPDATE: double-spend user yang sama dicegah oleh
// isolasi SERIALIZABLE, bukan row lock (lihat DESIGN.md).
func (r *Repo) GetUserBalance(ctx context.Context, tx pgx.Tx, userID string) (decimal.Decimal, error) {
	var b decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&b)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrUserNotFound
	}
	return b, err
}

func (r *Repo) DebitBalance(ctx context.Context, tx pgx.Tx, userID string, amount decimal.Decimal) error {
	ct, err := tx.Exec(ctx, `
		UPDATE users SET balance = balance - $2, updated_at = now()
		WHERE id = $1`, userID, amount)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrUserNotFound
	}
	return nil
}

// IncrementSold naikkan sold_units dengan version check. Version mismatch
// di bawah row lock berarti ada penulis yang nge-bypass lock; transaksi
// digagalkan dan aman di-retry.
func (r *Repo) IncrementSold(ctx context.Context, tx pgx.Tx, l *Ledger) error {
	ct, err := tx.Exec(ctx, `
		UPDATE flash_sale_ledgers
		SET sold_units = sold_units + 1, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2`, l.ID, l.Version)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrLockTimeout
	}
	return nil
}

func (r *Repo) DecrementStock(ctx context.Context, tx pgx.Tx, productID string) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - 1, updated_at = now()
		WHERE id = $1 AND stock > 0`, productID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrOutOfStock
	}
	return nil
}

func (r *Repo) InsertOrder(ctx context.Context, tx pgx.Tx, o *Order) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO flash_sale_orders (id, user_id, product_id, ledger_id, amount, status, ordered_at, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::date)`,
		o.ID, o.UserID, o.ProductID, o.LedgerID, o.Amount, string(o.Status), o.OrderedAt, o.OrderDate.Format("2006-01-02"))
	return err
}

// ListActiveSales: baca murni untuk projector, tanpa lock.
func (r *Repo) ListActiveSales(ctx context.Context, now time.Time) ([]ActiveSale, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.product_id, l.sale_date, l.sale_date + l.start_time, l.sale_date + l.end_time,
		       l.flash_price, l.total_units, l.sold_units, l.is_active, l.version,
		       p.name, p.description, p.regular_price, p.stock
		FROM flash_sale_ledgers l
		JOIN products p ON p.id = l.product_id
		WHERE l.sale_date = $1::date
		  AND l.start_time <= $2::time
		  AND l.end_time >= $2::time
		  AND l.is_active
		  AND l.sold_units < l.total_units
		ORDER BY l.start_time, p.name`,
		now.Format("2006-01-02"), now.Format("15:04:05.000000"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActiveSale
	for rows.Next() {
		var s ActiveSale
		if err := rows.Scan(
			&s.Ledger.ID, &s.Ledger.ProductID, &s.Ledger.SaleDate, &s.Ledger.StartsAt, &s.Ledger.EndsAt,
			&s.Ledger.FlashPrice, &s.Ledger.TotalUnits, &s.Ledger.SoldUnits, &s.Ledger.Active, &s.Ledger.Version,
			&s.Product.Name, &s.Product.Description, &s.Product.RegularPrice, &s.Product.Stock,
		); err != nil {
			return nil, err
		}
		s.Product.ID = s.Ledger.ProductID
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	var status string
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, product_id, ledger_id, amount, status, ordered_at, order_date
		FROM flash_sale_orders WHERE id = $1`, orderID).
		Scan(&o.ID, &o.UserID, &o.ProductID, &o.LedgerID, &o.Amount, &status, &o.OrderedAt, &o.OrderDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = OrderStatus(status)
	return &o, nil
}

func scanLedger(row pgx.Row) (*Ledger, error) {
	var l Ledger
	if err := row.Scan(
		&l.ID, &l.ProductID, &l.SaleDate, &l.StartsAt, &l.EndsAt,
		&l.FlashPrice, &l.TotalUnits, &l.SoldUnits, &l.Active, &l.Version,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
