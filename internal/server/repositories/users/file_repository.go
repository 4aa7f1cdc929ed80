package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/models"
)

// FileRepository keeps the whole user collection in one JSON file keyed by
// user id. Every operation loads the file, works on the decoded collection,
// and (for mutations) writes the full collection back. A mutex serializes
// the load-modify-save cycle so concurrent updates cannot lose writes.
type FileRepository struct {
	path   string
	mu     sync.Mutex
	logger logging.Logger
}

func NewFileRepository(path string, logger logging.Logger) *FileRepository {
	return &FileRepository{path: path, logger: logger.With("module", "users_repository")}
}

// load reads the collection from disk. A missing or corrupt file is treated
// as an empty collection so a damaged store degrades to "no users" instead
// of taking the service down; corruption is logged.
func (r *FileRepository) load(ctx context.Context) map[string]*models.User {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn(ctx, "user collection unreadable, treating as empty", "path", r.path, "error", err.Error())
		}
		return map[string]*models.User{}
	}

	collection := map[string]*models.User{}
	if err := json.Unmarshal(data, &collection); err != nil {
		r.logger.Warn(ctx, "user collection corrupt, treating as empty", "path", r.path, "error", err.Error())
		return map[string]*models.User{}
	}
	return collection
}

// save writes the full collection back. The write goes to a temporary file
// in the same directory followed by a rename, so a concurrent reader sees
// either the old collection or the new one, never a partial file.
func (r *FileRepository) save(collection map[string]*models.User) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding user collection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("saving user collection: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("saving user collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("saving user collection: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("saving user collection: %w", err)
	}
	return nil
}

// sortedIDs fixes the collection iteration order, so "first match wins" is
// deterministic across calls.
func sortedIDs(collection map[string]*models.User) []string {
	ids := make([]string, 0, len(collection))
	for id := range collection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// findByUsername scans for a case-insensitive username match. Uniqueness is
// enforced at creation, but historical data is not trusted to honor it: on
// multiple matches the first wins and the anomaly is logged.
func (r *FileRepository) findByUsername(ctx context.Context, collection map[string]*models.User, username string) *models.User {
	var found *models.User
	matches := 0
	for _, id := range sortedIDs(collection) {
		u := collection[id]
		if strings.EqualFold(u.Username, username) {
			matches++
			if found == nil {
				found = u
			}
		}
	}
	if matches > 1 {
		r.logger.Warn(ctx, "multiple users share a username", "username", username, "matches", matches)
	}
	return found
}

func (r *FileRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection := r.load(ctx)

	if existing := r.findByUsername(ctx, collection, user.Username); existing != nil {
		return nil, common.ErrDuplicateUsername
	}

	collection[user.ID] = user
	if err := r.save(collection); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.load(ctx)[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return user, nil
}

func (r *FileRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.findByUsername(ctx, r.load(ctx), username)
	if user == nil {
		return nil, common.ErrNotFound
	}
	return user, nil
}

func (r *FileRepository) UpdateUser(ctx context.Context, id string, changes Changes) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection := r.load(ctx)

	user, ok := collection[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	if changes.Username != nil && !strings.EqualFold(*changes.Username, user.Username) {
		if other := r.findByUsername(ctx, collection, *changes.Username); other != nil && other.ID != id {
			return nil, common.ErrUsernameTaken
		}
	}

	if changes.Username != nil {
		user.Username = *changes.Username
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		user.PasswordHash = *changes.PasswordHash
	}

	if err := r.save(collection); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	collection := r.load(ctx)

	if _, ok := collection[id]; !ok {
		return false, nil
	}

	delete(collection, id)
	if err := r.save(collection); err != nil {
		return false, err
	}
	return true, nil
}
