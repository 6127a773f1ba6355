package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// User: entity milik collaborator auth. Purchase path cuma menyentuh
// kolom balance, itu pun lewat repo flashsale di dalam transaksinya.
type User struct {
	ID            string
	Email         string // kosong = tidak diisi
	Phone         string
	PasswordHash  string
	Balance       decimal.Decimal
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) CreateUser(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users (id, email, phone, password_hash, balance, email_verified, phone_verified)
		VALUES ($1, NULLIF($2,''), NULLIF($3,''), $4, $5, $6, $7)`,
		u.ID, u.Email, u.Phone, u.PasswordHash, u.Balance, u.EmailVerified, u.PhoneVerified)
	return err
}

func (r *Repo) ContactTaken(ctx context.Context, contact string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR phone = $1)`, contact).Scan(&exists)
	return exists, err
}

// FindByContact cari user lewat email atau nomor telepon.
func (r *Repo) FindByContact(ctx context.Context, contact string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, COALESCE(email,''), COALESCE(phone,''), password_hash, balance,
		       email_verified, phone_verified, created_at
		FROM users
		WHERE email = $1 OR phone = $1`, contact).
		Scan(&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.Balance,
			&u.EmailVerified, &u.PhoneVerified, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) MarkVerified(ctx context.Context, userID string, typ VerificationType) error {
	col := "email_verified"
	if typ == VerifyPhone {
		col = "phone_verified"
	}
	_, err := r.DB.Exec(ctx, `UPDATE users SET `+col+` = TRUE, updated_at = now() WHERE id = $1`, userID)
	return err
}
