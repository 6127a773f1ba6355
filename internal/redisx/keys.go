package redisx

import "time"

const (
	// Session token: sess:{token} -> user_id
	KeySession = "sess:%s"

	// OTP pending verification: otp:{contact} -> JSON {user_id, code, type}
	KeyOTP = "otp:%s"

	// Cache status order: order_status:{order_id} -> JSON PurchaseResult
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
