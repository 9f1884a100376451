package authentication

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/talentops/rfh/internal/requirement/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers one-time codes to the user. The delivery channel
// (email, SMS) is outside this service; the default implementation only
// logs.
type Notifier interface {
	SendOTP(ctx context.Context, user *User, purpose OTPPurpose, code string) error
}

// LogNotifier writes codes to the service log. Suitable for development and
// as a stand-in until a delivery channel is wired.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SendOTP(_ context.Context, user *User, purpose OTPPurpose, code string) error {
	n.Logger.Info("OTP issued",
		zap.String("username", user.Username),
		zap.String("purpose", string(purpose)),
		zap.String("code", code),
	)
	return nil
}

// Service implements the authentication flows.
type Service struct {
	users     UserRepository
	otp       OTPStore
	notifier  Notifier
	jwtSecret string
	logger    *zap.Logger
}

func NewService(users UserRepository, otp OTPStore, notifier Notifier, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{
		users:     users,
		otp:       otp,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		logger:    logger.Named("auth_service"),
	}
}

// Login verifies the password factor. Accounts with OTP enabled receive a
// code and no token; others get a token directly.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Same error as a wrong password so usernames cannot be probed.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.OTPEnabled {
		token, err := auth.GenerateToken(user.ID.String(), user.Role, s.jwtSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to issue token: %w", err)
		}
		return &LoginResult{Token: token}, nil
	}

	if err := s.issueOTP(ctx, user, PurposeLogin); err != nil {
		return nil, err
	}
	return &LoginResult{OTPRequired: true}, nil
}

// VerifyOTP checks the second factor and issues the token.
func (s *Service) VerifyOTP(ctx context.Context, username, code string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidOTP
		}
		return "", err
	}

	if err := s.otp.Verify(ctx, PurposeLogin, username, code); err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(user.ID.String(), user.Role, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// ForgotPassword issues a reset code for the account. An unknown username
// is reported as success so the endpoint cannot be used for enumeration.
func (s *Service) ForgotPassword(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}
	return s.issueOTP(ctx, user, PurposeReset)
}

// ResetPassword verifies the reset code and replaces the password.
func (s *Service) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password too short", ErrInvalidCredentials)
	}

	if err := s.otp.Verify(ctx, PurposeReset, username, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, username, string(hash))
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, username, email, password, role string, otpEnabled bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		OTPEnabled:   otpEnabled,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) issueOTP(ctx context.Context, user *User, purpose OTPPurpose) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.otp.Save(ctx, purpose, user.Username, code, otpTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	if err := s.notifier.SendOTP(ctx, user, purpose, code); err != nil {
		return fmt.Errorf("failed to deliver code: %w", err)
	}
	return nil
}

// generateOTP produces a 6-digit numeric code from crypto/rand.
func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeLength, n), nil
}
