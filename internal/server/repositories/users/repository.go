// Package users persists the registered-user collection. The collection is a
// single flat file, loaded and saved as a whole on every operation.
package users

import (
	"context"

	"github.com/avolkovs/tabshare/internal/server/models"
)

// Changes is a partial update applied by UpdateUser. Nil fields are left
// untouched. PasswordHash must already be hashed; plaintext never reaches
// the repository.
type Changes struct {
	Username     *string
	Email        *string
	PasswordHash *string
}

type Repository interface {
	// Create stores a new user. Fails with common.ErrDuplicateUsername if
	// the username is already held by any user under case-insensitive
	// comparison.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByUsername returns the user matching username case-insensitively,
	// or common.ErrNotFound. If historical data holds several matches, the
	// first in collection iteration order wins.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdateUser applies changes to the user with the given id. Fails with
	// common.ErrNotFound for an unknown id and common.ErrUsernameTaken when
	// the new username collides with a different user.
	UpdateUser(ctx context.Context, id string, changes Changes) (*models.User, error)

	// Delete removes the user with the given id and reports whether a
	// deletion occurred.
	Delete(ctx context.Context, id string) (bool, error)
}
