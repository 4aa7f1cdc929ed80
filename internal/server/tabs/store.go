// Package tabs maps opaque ids to tablature files stored under a flat
// directory. The directory listing is the source of truth: nothing is cached
// in memory, and list results are a point-in-time snapshot.
package tabs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/models"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// allowedExtensions is the fixed allow-set for uploads.
var allowedExtensions = map[string]struct{}{
	"gp":       {},
	"gpx":      {},
	"gp5":      {},
	"musicxml": {},
}

// IsAllowed reports whether filename has an extension from the allow-set.
// The extension is the lower-cased suffix after the last dot.
func IsAllowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[idx+1:])]
	return ok
}

// sanitizeFilename strips path components and reduces the stem to a safe
// slug, keeping the lower-cased extension.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	idx := strings.LastIndex(base, ".")
	ext := strings.ToLower(base[idx+1:])

	stem := slug.Make(base[:idx])
	if stem == "" {
		stem = "tab"
	}
	return stem + "." + ext
}

// Store reads and writes tablature files under root as "{id}.{extension}".
type Store struct {
	root   string
	logger logging.Logger
}

func NewStore(root string, logger logging.Logger) *Store {
	return &Store{root: root, logger: logger.With("module", "tab_store")}
}

// Save writes content to a fresh "{id}.{extension}" file and returns its
// record. A disallowed filename yields common.ErrNotAllowed. The random id
// makes a name collision practically impossible, but the create is O_EXCL so
// a collision fails closed instead of overwriting.
func (s *Store) Save(ctx context.Context, originalFilename string, content io.Reader) (*models.TabRecord, error) {
	if !IsAllowed(originalFilename) {
		return nil, common.ErrNotAllowed
	}

	sanitized := sanitizeFilename(originalFilename)
	ext := sanitized[strings.LastIndex(sanitized, ".")+1:]

	id := uuid.NewString()
	storedName := id + "." + ext
	path := filepath.Join(s.root, storedName)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("storing %s: %w", storedName, common.ErrIDCollision)
		}
		return nil, fmt.Errorf("storing %s: %w", storedName, err)
	}

	size, err := io.Copy(f, content)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("storing %s: %w", storedName, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("storing %s: %w", storedName, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("storing %s: %w", storedName, err)
	}

	s.logger.Info(ctx, "tab stored", "id", id, "filename", sanitized, "size", size)

	return &models.TabRecord{
		ID:               id,
		OriginalFilename: sanitized,
		Extension:        ext,
		StoredName:       storedName,
		Size:             size,
		DateAdded:        fi.ModTime(),
	}, nil
}

// List enumerates the storage root and returns a record for every entry
// with an allowed extension. Size and DateAdded come from the filesystem at
// call time. Ordering follows directory enumeration and is not specified.
func (s *Store) List(ctx context.Context) ([]models.TabRecord, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing tabs: %w", err)
	}

	records := make([]models.TabRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsAllowed(name) {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			// entry vanished between ReadDir and Info
			s.logger.Warn(ctx, "skipping unreadable entry", "name", name, "error", err.Error())
			continue
		}

		records = append(records, models.TabRecord{
			ID:               name[:strings.Index(name, ".")],
			OriginalFilename: name,
			Extension:        strings.ToLower(name[strings.LastIndex(name, ".")+1:]),
			StoredName:       name,
			Size:             fi.Size(),
			DateAdded:        fi.ModTime(),
		})
	}

	return records, nil
}

// Get opens the stored file whose name starts with "{id}." and returns its
// content stream along with the stored filename. The caller closes the
// stream. Absent ids yield common.ErrNotFound. Should several entries share
// the prefix, the first found wins.
func (s *Store) Get(ctx context.Context, id string) (io.ReadCloser, string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, "", fmt.Errorf("reading tab %s: %w", id, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, id+".") {
			continue
		}

		f, err := os.Open(filepath.Join(s.root, name))
		if err != nil {
			return nil, "", fmt.Errorf("reading tab %s: %w", id, err)
		}
		return f, name, nil
	}

	return nil, "", common.ErrNotFound
}

// Delete removes the single stored file matching id and reports whether a
// deletion occurred.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return false, fmt.Errorf("deleting tab %s: %w", id, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, id+".") {
			continue
		}

		if err := os.Remove(filepath.Join(s.root, name)); err != nil {
			return false, fmt.Errorf("deleting tab %s: %w", id, err)
		}
		s.logger.Info(ctx, "tab deleted", "id", id, "name", name)
		return true, nil
	}

	return false, nil
}
