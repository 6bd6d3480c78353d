package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pragatipath-be/models"
	"pragatipath-be/otp"
	"pragatipath-be/store"
	"pragatipath-be/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const invalidCredentials = "Invalid mobile number or password."

// AuthResult is returned by every flow that logs a user in.
type AuthResult struct {
	Token string
	User  models.PublicUser
}

type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

type AuthService struct {
	users  UserStore
	ledger otp.Ledger
	tokens TokenIssuer
	logger *zap.Logger

	otpTTL  time.Duration
	logOTPs bool
	now     func() time.Time
}

type AuthOption func(*AuthService)

// WithOTPTTL overrides the OTP validity window.
func WithOTPTTL(ttl time.Duration) AuthOption {
	return func(s *AuthService) { s.otpTTL = ttl }
}

// WithOTPLogging writes issued codes to the log. Development only.
func WithOTPLogging(enabled bool) AuthOption {
	return func(s *AuthService) { s.logOTPs = enabled }
}

func NewAuthService(users UserStore, ledger otp.Ledger, tokens TokenIssuer, logger *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:  users,
		ledger: ledger,
		tokens: tokens,
		logger: logger,
		otpTTL: otp.DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeMobile(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", utils.BadRequest("Mobile number is required.")
	}
	mobile := utils.NormalizeMobile(raw)
	if !utils.ValidMobile(mobile) {
		return "", utils.BadRequest("Invalid mobile number.")
	}
	return mobile, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Roles)
	if err != nil {
		return nil, utils.Internal("Something went wrong", fmt.Errorf("sign token: %w", err))
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Register creates a password account with the citizen role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	mobile, err := normalizeMobile(in.Mobile)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || in.Password == "" {
		return nil, utils.BadRequest("Name, mobile and password are required.")
	}

	_, err = s.users.FindUserByMobile(ctx, mobile)
	switch {
	case err == nil:
		return nil, utils.Conflict("User already exists with this mobile number.")
	case !errors.Is(err, store.ErrNotFound):
		return nil, utils.Internal("Internal server error during registration.", err)
	}

	now := s.now()
	user := &models.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(strings.ToLower(in.Email)),
		Mobile:    mobile,
		Roles:     models.DefaultRoles(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(in.Password); err != nil {
		return nil, utils.Internal("Internal server error during registration.", err)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.Conflict("User already exists with this mobile number.")
		}
		return nil, utils.Internal("Internal server error during registration.", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

// LoginWithPassword never reveals which check failed.
func (s *AuthService) LoginWithPassword(ctx context.Context, rawMobile, password string) (*AuthResult, error) {
	mobile := utils.NormalizeMobile(rawMobile)
	if mobile == "" || password == "" {
		return nil, utils.Unauthorized(invalidCredentials)
	}

	user, err := s.users.FindUserByMobile(ctx, mobile)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.Unauthorized(invalidCredentials)
		}
		return nil, utils.Internal("Internal server error during login.", err)
	}
	if !user.IsActive || !user.ComparePassword(password) {
		return nil, utils.Unauthorized(invalidCredentials)
	}

	return s.issue(user)
}

// RequestOtp stores a fresh code for the number, replacing any pending one,
// and returns the normalized number. The code itself is never returned.
func (s *AuthService) RequestOtp(ctx context.Context, rawMobile string) (string, error) {
	mobile, err := normalizeMobile(rawMobile)
	if err != nil {
		return "", err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return "", utils.Internal("Failed to send OTP. Please try again.", err)
	}
	expiresAt, err := s.ledger.Issue(ctx, mobile, code, s.otpTTL)
	if err != nil {
		return "", utils.Internal("Failed to send OTP. Please try again.", err)
	}

	if s.logOTPs {
		s.logger.Info("OTP issued",
			zap.String("mobile", mobile),
			zap.String("otp", code),
			zap.Time("expires_at", expiresAt),
		)
	}
	return mobile, nil
}

// VerifyOtp consumes the code and logs the user in, creating the account on first sight.
func (s *AuthService) VerifyOtp(ctx context.Context, rawMobile, code string) (*AuthResult, error) {
	if strings.TrimSpace(rawMobile) == "" || strings.TrimSpace(code) == "" {
		return nil, utils.BadRequest("Mobile number and OTP are required.")
	}
	mobile, err := normalizeMobile(rawMobile)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Verify(ctx, mobile, strings.TrimSpace(code)); err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			return nil, utils.BadRequest("OTP not found. Please request a new one.")
		case errors.Is(err, otp.ErrExpired):
			return nil, utils.BadRequest("OTP has expired. Please request a new one.")
		case errors.Is(err, otp.ErrMismatch):
			return nil, utils.BadRequest("Invalid OTP.")
		default:
			return nil, utils.Internal("Failed to verify OTP. Please try again.", err)
		}
	}

	user, err := s.findOrCreateByMobile(ctx, mobile)
	if err != nil {
		return nil, utils.Internal("Failed to verify OTP. Please try again.", err)
	}
	if !user.IsActive {
		return nil, utils.Unauthorized("Account is suspended. Please contact support.")
	}

	return s.issue(user)
}

func (s *AuthService) findOrCreateByMobile(ctx context.Context, mobile string) (*models.User, error) {
	user, err := s.users.FindUserByMobile(ctx, mobile)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	user = &models.User{
		Name:      "User-" + utils.LastDigits(mobile, 4),
		Mobile:    mobile,
		Roles:     models.DefaultRoles(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		// a concurrent verify created the account first
		return s.users.FindUserByMobile(ctx, mobile)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created from OTP login", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// ResolveIdentity loads the caller named by a verified token.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, utils.Unauthorized("Token is not valid. User not found.")
	}

	identity, err := s.users.FindIdentity(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, utils.Unauthorized("Token is not valid. User not found.")
		}
		return nil, utils.Internal("Internal server error in authentication.", err)
	}
	return identity, nil
}

// WhoAmI returns the identity attached by the auth middleware.
func (s *AuthService) WhoAmI(identity *models.Identity) *models.Identity {
	return identity
}
