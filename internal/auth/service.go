package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/go-flash-sale.git/internal/redisx"
)

type VerificationType string

const (
	VerifyEmail VerificationType = "EMAIL"
	VerifyPhone VerificationType = "PHONE"
)

var (
	ErrContactRequired    = errors.New("email or phone number is required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrPhoneTaken         = errors.New("phone number already exists")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// saldo awal untuk demo, sama seperti seed aslinya
var startingBalance = decimal.NewFromInt(100_000_000)

type Service struct {
	Repo  *Repo
	Redis *redis.Client

	OTPLength  int
	OTPTTL     time.Duration
	SessionTTL time.Duration
}

type otpRecord struct {
	UserID string           `json:"user_id"`
	Code   string           `json:"code"`
	Type   VerificationType `json:"type"`
}

type UserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	PhoneVerified bool   `json:"phone_verified"`
}

type Session struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user_info"`
}

// Register bikin user baru + kirim OTP (mock: cuma di-log).
func (s *Service) Register(ctx context.Context, email, phone, password string) (string, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if email == "" && phone == "" {
		return "", ErrContactRequired
	}
	if email != "" {
		taken, err := s.Repo.ContactTaken(ctx, email)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrEmailTaken
		}
	}
	if phone != "" {
		taken, err := s.Repo.ContactTaken(ctx, phone)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrPhoneTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Balance:      startingBalance,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return "", err
	}

	contact := email
	typ := VerifyEmail
	if contact == "" {
		contact = phone
		typ = VerifyPhone
	}

	code := GenerateOTP(s.OTPLength)
	rec, _ := json.Marshal(otpRecord{UserID: u.ID, Code: code, Type: typ})
	if err := s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOTP, contact), rec, s.OTPTTL).Err(); err != nil {
		return "", err
	}

	// mock pengiriman OTP
	log.Printf("=== OTP VERIFICATION ===")
	log.Printf("contact: %s", contact)
	log.Printf("code: %s (valid %s)", code, s.OTPTTL)
	log.Printf("========================")

	return "OTP sent to " + contact, nil
}

// VerifyOTP: single-use, kadaluarsa ikut TTL key Redis.
func (s *Service) VerifyOTP(ctx context.Context, contact, code string) error {
	key := fmt.Sprintf(redisx.KeyOTP, contact)
	raw, err := s.Redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return ErrInvalidOTP
	}
	if err != nil {
		return err
	}

	var rec otpRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return err
	}
	if rec.Code != code {
		return ErrInvalidOTP
	}

	_ = s.Redis.Del(ctx, key).Err()
	return s.Repo.MarkVerified(ctx, rec.UserID, rec.Type)
}

func (s *Service) Login(ctx context.Context, contact, password string) (*Session, error) {
	if strings.TrimSpace(contact) == "" {
		return nil, ErrContactRequired
	}
	u, err := s.Repo.FindByContact(ctx, contact)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.Redis.Set(ctx, fmt.Sprintf(redisx.KeySession, token), u.ID, s.SessionTTL).Err(); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.SessionTTL.Seconds()),
		User: UserInfo{
			ID:            u.ID,
			Email:         u.Email,
			Phone:         u.Phone,
			EmailVerified: u.EmailVerified,
			PhoneVerified: u.PhoneVerified,
		},
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeySession, token)).Err()
}

// Resolve: identity resolver untuk middleware; token -> user_id.
func (s *Service) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	id, err := s.Redis.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Result()
	if err == redis.Nil {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func GenerateOTP(length int) string {
	if length <= 0 {
		length = 6
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		b.WriteByte(byte('0' + rand.Intn(10)))
	}
	return b.String()
}
