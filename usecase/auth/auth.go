// Package auth implements registration, login and identity resolution. Token
// issuance is delegated to pkg/token; the last issued token is also written
// back to the user record for bookkeeping, but verification never consults it.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/token"
	"github.com/tasknest/backend/repository"
)

const bcryptCost = 10

type UseCase struct {
	users  repository.UserRepository
	cache  repository.IdentityCache
	tokens *token.Manager
	logger *zap.Logger
}

func New(users repository.UserRepository, cache repository.IdentityCache, tokens *token.Manager, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cache:  cache,
		tokens: tokens,
		logger: logger,
	}
}

// Register validates the input, stores the new account with a bcrypt hash and
// returns the created user together with a freshly issued token.
func (uc *UseCase) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	if err := domain.ValidateRegistration(username, email, password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}

	created, err := uc.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	tokenString, err := uc.issueToken(ctx, created)
	if err != nil {
		return nil, "", err
	}

	created.Password = ""
	return created, tokenString, nil
}

// Login verifies the credentials and issues a new token. An unknown email and
// a wrong password produce the identical error so neither case is revealed.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", domain.NewError(domain.ErrCodeInvalid, "email and password are required")
	}

	user, err := uc.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	tokenString, err := uc.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	user.Password = ""
	return user, tokenString, nil
}

// Identify resolves a verified token subject to a live user record, going
// through the identity cache first. Cache failures fall back to the store.
func (uc *UseCase) Identify(ctx context.Context, userID string) (*domain.User, error) {
	if uc.cache != nil {
		if user, err := uc.cache.Get(ctx, userID); err == nil {
			return user, nil
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Warn("identity cache read failed", zap.Error(err))
		}
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, user); err != nil {
			uc.logger.Warn("identity cache write failed", zap.Error(err))
		}
	}
	return user, nil
}

func (uc *UseCase) issueToken(ctx context.Context, user *domain.User) (string, error) {
	tokenString, err := uc.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}

	if err := uc.users.SaveToken(ctx, user.ID, tokenString); err != nil {
		return "", err
	}
	user.Token = tokenString

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, user.ID); err != nil {
			uc.logger.Warn("identity cache invalidation failed", zap.Error(err))
		}
	}
	return tokenString, nil
}
