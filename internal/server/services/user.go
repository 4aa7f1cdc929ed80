// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, profile
// updates, and issuing JWT access tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/server/auth"
	"github.com/avolkovs/tabshare/internal/server/config"
	"github.com/avolkovs/tabshare/internal/server/credentials"
	"github.com/avolkovs/tabshare/internal/server/models"
	"github.com/avolkovs/tabshare/internal/server/repositories/users"
	"github.com/avolkovs/tabshare/internal/timex"
	"github.com/google/uuid"
)

// UserService provides account operations:
//   - Register: create users with a hashed password
//   - Authenticate: verify credentials for login
//   - Update: apply partial profile changes, re-hashing on password change
//   - GenerateToken: mint access tokens after authentication
type UserService struct {
	repo          users.Repository
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewUserService constructs a UserService from the repository and server config.
func NewUserService(repo users.Repository, cfg *config.Config) *UserService {
	return &UserService{
		repo:          repo,
		jwtSecret:     cfg.JWTSecret(),
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// Register creates a new user. The password is hashed before anything is
// persisted; the plaintext never leaves this call. Fails with
// common.ErrDuplicateUsername when the name is already held.
func (s *UserService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	hash, err := credentials.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    timex.Timestamp{Time: time.Now().UTC()},
	}

	return s.repo.Create(ctx, user)
}

// Authenticate returns the user matching username and password, or
// common.ErrUnauthorized. An unknown username and a wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	if !credentials.Verify(password, user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// GetByID returns the user with the given id, or common.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername returns the user matching username case-insensitively,
// or common.ErrNotFound.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Update applies a partial profile change. A provided password is hashed
// here so the repository only ever sees the derived value.
func (s *UserService) Update(ctx context.Context, id string, changes models.UserChanges) (*models.User, error) {
	repoChanges := users.Changes{
		Username: changes.Username,
		Email:    changes.Email,
	}

	if changes.Password != nil {
		hash, err := credentials.Hash(*changes.Password)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		repoChanges.PasswordHash = &hash
	}

	return s.repo.UpdateUser(ctx, id, repoChanges)
}

// Delete removes a user. Repository-level only; not exposed over HTTP.
func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// GenerateToken mints an access token for userID.
func (s *UserService) GenerateToken(userID string) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.tokenValidity)
}

// UserIDFromToken verifies an access token and returns its user id.
func (s *UserService) UserIDFromToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, s.jwtSecret)
}
