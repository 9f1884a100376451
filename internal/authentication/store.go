package authentication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// UserRepository is the storage interface for accounts.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// GormUserRepository persists users with gorm, sharing the tracker's
// database.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users: %w", err)
	}
	return &GormUserRepository{db: db}, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	result := r.db.WithContext(ctx).First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&User{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// OTPStore holds short-lived one-time codes. Verify consumes the code on
// success and counts failed attempts; codes disappear after their TTL or
// after too many wrong guesses.
type OTPStore interface {
	Save(ctx context.Context, purpose OTPPurpose, username, code string, ttl time.Duration) error
	Verify(ctx context.Context, purpose OTPPurpose, username, code string) error
}

// RedisOTPStore keeps codes in redis so multiple auth instances share them.
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKey(purpose OTPPurpose, username string) string {
	return fmt.Sprintf("otp:%s:%s", purpose, username)
}

func attemptsKey(purpose OTPPurpose, username string) string {
	return fmt.Sprintf("otp_attempts:%s:%s", purpose, username)
}

func (s *RedisOTPStore) Save(ctx context.Context, purpose OTPPurpose, username, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpKey(purpose, username), code, ttl).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, attemptsKey(purpose, username)).Err()
}

func (s *RedisOTPStore) Verify(ctx context.Context, purpose OTPPurpose, username, code string) error {
	attempts, err := s.client.Incr(ctx, attemptsKey(purpose, username)).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		s.client.Expire(ctx, attemptsKey(purpose, username), otpTTL)
	}
	if attempts > otpMaxAttempts {
		s.client.Del(ctx, otpKey(purpose, username))
		return ErrInvalidOTP
	}

	stored, err := s.client.Get(ctx, otpKey(purpose, username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidOTP
		}
		return err
	}
	if stored != code {
		return ErrInvalidOTP
	}

	s.client.Del(ctx, otpKey(purpose, username), attemptsKey(purpose, username))
	return nil
}

// MemoryOTPStore is a single-process store used in tests and local runs
// without redis.
type MemoryOTPStore struct {
	mu      sync.Mutex
	entries map[string]memoryOTP
	now     func() time.Time
}

type memoryOTP struct {
	code      string
	expiresAt time.Time
	attempts  int
}

func NewMemoryOTPStore() *MemoryOTPStore {
	return &MemoryOTPStore{
		entries: make(map[string]memoryOTP),
		now:     time.Now,
	}
}

func (s *MemoryOTPStore) Save(_ context.Context, purpose OTPPurpose, username, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[otpKey(purpose, username)] = memoryOTP{
		code:      code,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *MemoryOTPStore) Verify(_ context.Context, purpose OTPPurpose, username, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := otpKey(purpose, username)
	entry, ok := s.entries[key]
	if !ok || s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return ErrInvalidOTP
	}

	entry.attempts++
	if entry.attempts > otpMaxAttempts || entry.code != code {
		if entry.attempts > otpMaxAttempts {
			delete(s.entries, key)
		} else {
			s.entries[key] = entry
		}
		return ErrInvalidOTP
	}

	delete(s.entries, key)
	return nil
}
