package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/storefront/internal/app"
	"github.com/oggyb/storefront/internal/db"
	svcErr "github.com/oggyb/storefront/internal/errors"
	"github.com/oggyb/storefront/internal/repository"
)

// Service implements registration, login and logout. Sessions are opaque
// tokens mapped to user ids in Redis with a sliding TTL.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewAuthService creates a new auth service with dependencies from AppContext.
func NewAuthService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, username, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" || username == "" {
		return nil, svcErr.InvalidArgument("email and username are required")
	}
	if len(password) < 8 {
		return nil, svcErr.InvalidArgument("password must be at least 8 characters")
	}

	taken, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, svcErr.AlreadyExists("email or username already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID, "username", username)
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, svcErr.Unauthorized("invalid credentials")
	} else if err != nil {
		return "", nil, err
	}
	if !user.Active {
		return "", nil, svcErr.Unauthorized("account is disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, svcErr.Unauthorized("invalid credentials")
	}

	token := uuid.NewString()
	if err := s.appCtx.RedisCache.SaveSession(ctx, token, user.ID); err != nil {
		return "", nil, err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.appCtx.Logger.Warn("failed to stamp last login", "user_id", user.ID, "err", err)
	}

	s.appCtx.Logger.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout invalidates a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.appCtx.RedisCache.DeleteSession(ctx, token)
}
