package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomeriko7/finalProject-sub000/internal/auth"
	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
)

func newUserTestService(userRepo *mockUserRepository, tokenRepo *mockRefreshTokenRepository) *UserService {
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
	return NewUserService(userRepo, tokenRepo, jwtManager, newTestProducer(), newTestLogger(), 7*24*time.Hour)
}

func activeUser(password string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	now := time.Now().UTC()
	return &domain.User{
		ID:           "user-1",
		Email:        "dana@example.com",
		PasswordHash: string(hash),
		FirstName:    "Dana",
		LastName:     "Levi",
		Role:         domain.RoleCustomer,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRegister(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserTestService(userRepo, tokenRepo)
	ctx := context.Background()

	var created *domain.User
	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	tokenRepo.On("Create", ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	user, tokens, err := svc.Register(ctx, RegisterInput{
		Email:     "  Dana@Example.com ",
		Password:  "Str0ngPass",
		FirstName: "Dana",
		LastName:  "Levi",
	})

	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	require.NotNil(t, created)
	assert.NotEqual(t, "Str0ngPass", created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Str0ngPass")))
}

func TestRegister_WeakPassword(t *testing.T) {
	svc := newUserTestService(new(mockUserRepository), new(mockRefreshTokenRepository))
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "Ab1"},
		{name: "no upper", password: "alllower1"},
		{name: "no digit", password: "NoDigitsHere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, RegisterInput{Email: "a@b.com", Password: tt.password})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(apperrors.AlreadyExists("user", "email", "dana@example.com"))

	_, _, err := svc.Register(ctx, RegisterInput{Email: "dana@example.com", Password: "Str0ngPass"})

	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestLogin(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserTestService(userRepo, tokenRepo)
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "dana@example.com").Return(activeUser("Str0ngPass"), nil)
	tokenRepo.On("Create", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	user, tokens, err := svc.Login(ctx, "dana@example.com", "Str0ngPass")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "dana@example.com").Return(activeUser("Str0ngPass"), nil)

	_, _, err := svc.Login(ctx, "dana@example.com", "wrong")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByEmail", ctx, "nobody@example.com").
		Return(nil, apperrors.NotFound("user", "nobody@example.com"))

	_, _, err := svc.Login(ctx, "nobody@example.com", "whatever")

	// Unknown email and wrong password are indistinguishable.
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogin_InactiveAccount(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	user := activeUser("Str0ngPass")
	user.IsActive = false
	userRepo.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)

	_, _, err := svc.Login(ctx, "dana@example.com", "Str0ngPass")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshToken_RotatesToken(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserTestService(userRepo, tokenRepo)
	ctx := context.Background()

	user := activeUser("Str0ngPass")
	userRepo.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)
	tokenRepo.On("Create", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	_, tokens, err := svc.Login(ctx, "dana@example.com", "Str0ngPass")
	require.NoError(t, err)

	stored := &domain.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		TokenHash: hashToken(tokens.RefreshToken),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}
	tokenRepo.On("GetByHash", ctx, hashToken(tokens.RefreshToken)).Return(stored, nil)
	tokenRepo.On("Revoke", ctx, stored.TokenHash).Return(nil)
	userRepo.On("GetByID", ctx, "user-1").Return(user, nil)

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)

	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	tokenRepo.AssertCalled(t, "Revoke", ctx, stored.TokenHash)
}

func TestRefreshToken_Revoked(t *testing.T) {
	userRepo := new(mockUserRepository)
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserTestService(userRepo, tokenRepo)
	ctx := context.Background()

	user := activeUser("Str0ngPass")
	userRepo.On("GetByEmail", ctx, "dana@example.com").Return(user, nil)
	tokenRepo.On("Create", ctx, "user-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)

	_, tokens, err := svc.Login(ctx, "dana@example.com", "Str0ngPass")
	require.NoError(t, err)

	revokedAt := time.Now().Add(-time.Minute)
	stored := &domain.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		TokenHash: hashToken(tokens.RefreshToken),
		ExpiresAt: time.Now().Add(24 * time.Hour),
		RevokedAt: &revokedAt,
	}
	tokenRepo.On("GetByHash", ctx, hashToken(tokens.RefreshToken)).Return(stored, nil)

	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRefreshToken_Garbage(t *testing.T) {
	svc := newUserTestService(new(mockUserRepository), new(mockRefreshTokenRepository))
	ctx := context.Background()

	_, err := svc.RefreshToken(ctx, "not-a-jwt")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLogout_UnparseableTokenRevokesAllSessions(t *testing.T) {
	tokenRepo := new(mockRefreshTokenRepository)
	svc := newUserTestService(new(mockUserRepository), tokenRepo)
	ctx := context.Background()

	tokenRepo.On("RevokeByUserID", ctx, "user-1").Return(nil)

	require.NoError(t, svc.Logout(ctx, "user-1", "garbage"))
	tokenRepo.AssertExpectations(t)
}

func TestUpdateProfile_Partial(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("Str0ngPass"), nil)
	userRepo.On("Update", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

	phone := "+972541112233"
	user, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, "+972541112233", user.Phone)
	assert.Equal(t, "Dana", user.FirstName)
}

func TestUpdateProfile_EmptyName(t *testing.T) {
	userRepo := new(mockUserRepository)
	svc := newUserTestService(userRepo, new(mockRefreshTokenRepository))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("Str0ngPass"), nil)

	empty := ""
	_, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileInput{FirstName: &empty})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
