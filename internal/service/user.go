package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomeriko7/finalProject-sub000/internal/auth"
	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/event"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

const bcryptCost = 12

// UserService implements registration, login and session management.
type UserService struct {
	userRepo      repository.UserRepository
	tokenRepo     repository.RefreshTokenRepository
	jwtManager    *auth.JWTManager
	producer      *event.Producer
	logger        *slog.Logger
	refreshExpiry time.Duration
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
	refreshExpiry time.Duration,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		jwtManager:    jwtManager,
		producer:      producer,
		logger:        logger,
		refreshExpiry: refreshExpiry,
	}
}

// RegisterInput holds the parameters for creating an account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates a new customer account and returns the user with a
// fresh token pair.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.TokenPair, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// Login authenticates a user by email and password.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("account is deactivated")
	}

	tokens, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))

	return user, tokens, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair. The
// presented token is revoked; each refresh token is single-use.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	stored, err := s.tokenRepo.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	if stored.RevokedAt != nil || time.Now().After(stored.ExpiresAt) {
		return nil, apperrors.Unauthorized("refresh token expired or revoked")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	if err := s.tokenRepo.Revoke(ctx, stored.TokenHash); err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.generateTokenPair(ctx, user)
}

// Logout revokes the presented refresh token. An unparseable token
// revokes every session for the user instead.
func (s *UserService) Logout(ctx context.Context, userID, refreshToken string) error {
	if _, err := s.jwtManager.ValidateRefreshToken(refreshToken); err != nil {
		if err := s.tokenRepo.RevokeByUserID(ctx, userID); err != nil {
			return fmt.Errorf("revoke user sessions: %w", err)
		}
		return nil
	}

	if err := s.tokenRepo.Revoke(ctx, hashToken(refreshToken)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// GetProfile returns the user's own profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfileInput holds the updatable profile fields. Nil fields are
// left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile applies partial updates to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, apperrors.InvalidInput("first name must not be empty")
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, apperrors.InvalidInput("last name must not be empty")
		}
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.refreshExpiry)
	if err := s.tokenRepo.Create(ctx, user.ID, hashToken(refreshToken), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit {
		return apperrors.InvalidInput("password must contain upper and lower case letters and a digit")
	}

	return nil
}
