package flashsale

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Penolakan bisnis: final, jangan di-retry.
var (
	ErrAlreadyPurchasedToday = errors.New("you can only purchase one flash sale product per day")
	ErrNoActiveSale          = errors.New("no active flash sale for this product")
	ErrSoldOut               = errors.New("flash sale sold out")
	ErrOutOfStock            = errors.New("product out of stock")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
)

// ErrLockTimeout: transient, aman diulang dari awal oleh caller.
var ErrLockTimeout = errors.New("purchase contention, please retry")

// SQLSTATE yang berarti "kalah rebutan lock", bukan penolakan bisnis.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func IsRetryable(err error) bool {
	if errors.Is(err, ErrLockTimeout) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return true
		}
	}
	return false
}

// classifyTxErr memetakan error lock/isolation ke ErrLockTimeout,
// error lain lewat apa adanya.
func classifyTxErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return ErrLockTimeout
		}
	}
	return err
}
