package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// OTPStore keeps one-time codes keyed by purpose and address.
type OTPStore interface {
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Consume returns true and removes the code when it matches.
	Consume(ctx context.Context, key, code string) (bool, error)
}

// GenerateOTP returns a random numeric code of the given length.
func GenerateOTP(digits int) (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

type RedisOTPStore struct {
	rdb *redis.Client
}

func NewRedisOTPStore(rdb *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb}
}

func (s *RedisOTPStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, "otp:"+key, code, ttl).Err()
}

func (s *RedisOTPStore) Consume(ctx context.Context, key, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, "otp:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}
	return true, s.rdb.Del(ctx, "otp:"+key).Err()
}

type otpEntry struct {
	code    string
	expires time.Time
}

// MemoryOTPStore is used when redis is disabled and in tests.
type MemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]otpEntry
	now   func() time.Time
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{codes: make(map[string]otpEntry), now: time.Now}
}

func (s *MemoryOTPStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = otpEntry{code: code, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryOTPStore) Consume(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.codes[key]
	if !ok {
		return false, nil
	}
	if s.now().After(entry.expires) {
		delete(s.codes, key)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}
