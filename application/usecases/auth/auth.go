package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/domain/repository"
	"github.com/banterhq/banter/infrastructure/logger"
	pgrepo "github.com/banterhq/banter/infrastructure/persistence/repository"
	"github.com/banterhq/banter/infrastructure/token"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrUsernameTaken      = errors.New("username is already taken")
)

const bcryptCost = 12

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthUseCase interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type authUseCase struct {
	users  repository.UserRepository
	tokens *token.Manager
	redis  *redis.Client
	logger *logger.Logger
}

func NewAuthUseCase(
	users repository.UserRepository,
	tokens *token.Manager,
	redisClient *redis.Client,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		users:  users,
		tokens: tokens,
		redis:  redisClient,
		logger: logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgrepo.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgrepo.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: string(hash),
		Role:     model.RoleUser,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		uc.logger.Error("failed to create user", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info("user registered", zap.String("userID", user.ID), zap.String("username", username))
	return user, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*model.User, *TokenPair, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if errors.Is(err, pgrepo.ErrUserNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := uc.issuePair(user.ID)
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("user logged in", zap.String("userID", user.ID))
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A revoked or otherwise invalid token fails with
// token.ErrUnauthenticated.
func (uc *authUseCase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := uc.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, token.ErrUnauthenticated
	}

	revoked, err := uc.isRevoked(ctx, refreshToken)
	if err != nil {
		uc.logger.Error("failed to check token revocation", zap.Error(err))
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, token.ErrUnauthenticated
	}

	if err := uc.revoke(ctx, refreshToken); err != nil {
		uc.logger.Error("failed to revoke refresh token", zap.Error(err))
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return uc.issuePair(userID)
}

func (uc *authUseCase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if _, err := uc.tokens.VerifyRefreshToken(refreshToken); err != nil {
		// Already unusable; nothing to revoke.
		return nil
	}
	return uc.revoke(ctx, refreshToken)
}

func (uc *authUseCase) GetByID(ctx context.Context, id string) (*model.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *authUseCase) issuePair(userID string) (*TokenPair, error) {
	access, err := uc.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := uc.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (uc *authUseCase) isRevoked(ctx context.Context, refreshToken string) (bool, error) {
	n, err := uc.redis.Exists(ctx, revocationKey(refreshToken)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (uc *authUseCase) revoke(ctx context.Context, refreshToken string) error {
	return uc.redis.Set(ctx, revocationKey(refreshToken), "1", uc.tokens.RefreshTokenExpiry()).Err()
}

func revocationKey(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return "auth:revoked:" + hex.EncodeToString(sum[:])
}
