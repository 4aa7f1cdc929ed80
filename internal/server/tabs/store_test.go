package tabs

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewStore(t.TempDir(), logger)
}

func TestIsAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     bool
	}{
		{"song.gp5", true},
		{"song.gp", true},
		{"song.gpx", true},
		{"score.musicxml", true},
		{"SONG.GP5", true},
		{"archive.tar.gp5", true},
		{"notes.txt", false},
		{"noextension", false},
		{"song.gp6", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := IsAllowed(tc.filename); got != tc.want {
			t.Errorf("IsAllowed(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func Test_sanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"song.gp5", "song.gp5"},
		{"My Song.GP5", "my-song.gp5"},
		{"../../etc/passwd.gp", "passwd.gp"},
		{"weird/../name.gpx", "name.gpx"},
		{"ühne märchen.musicxml", "uhne-marchen.musicxml"},
		{"....gp5", "tab.gp5"},
	}

	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStore_SaveAndGet_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	content := []byte("tab bytes")

	rec, err := store.Save(ctx, "song.gp5", bytes.NewReader(content))
	require.NoError(t, err)

	require.NotEmpty(t, rec.ID)
	require.Equal(t, "gp5", rec.Extension)
	require.Equal(t, rec.ID+".gp5", rec.StoredName)
	require.Equal(t, int64(len(content)), rec.Size)

	stream, storedName, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	defer stream.Close()

	require.Equal(t, rec.StoredName, storedName)
	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestStore_Save_DisallowedExtension(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), "notes.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrNotAllowed)
}

func TestStore_Save_CollisionFailsClosed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Save(ctx, "song.gp5", strings.NewReader("original"))
	require.NoError(t, err)

	// force the collision the random id makes practically impossible
	path := filepath.Join(store.root, rec.StoredName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	require.ErrorIs(t, err, os.ErrExist)
	_ = f

	got, _, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	defer got.Close()
	data, err := io.ReadAll(got)
	require.NoError(t, err)
	require.Equal(t, "original", string(data), "existing content must survive")
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contents := map[string][]byte{
		"one.gp":     []byte("a"),
		"two.gpx":    []byte("bb"),
		"three.gp5":  []byte("ccc"),
		"four.music": nil, // never stored: disallowed
	}

	stored := map[string]int64{}
	for name, data := range contents {
		if !IsAllowed(name) {
			continue
		}
		rec, err := store.Save(ctx, name, bytes.NewReader(data))
		require.NoError(t, err)
		stored[rec.ID] = int64(len(data))
	}

	// a stray disallowed file in the root must not show up
	require.NoError(t, os.WriteFile(filepath.Join(store.root, "README.txt"), []byte("hi"), 0o660))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, len(stored))

	for _, rec := range records {
		wantSize, ok := stored[rec.ID]
		require.True(t, ok, "unexpected record id %q", rec.ID)
		require.Equal(t, wantSize, rec.Size)
		require.False(t, rec.DateAdded.IsZero())
	}
}

func TestStore_Get_Absent(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec, err := store.Save(ctx, "song.gp5", strings.NewReader("x"))
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, _, err = store.Get(ctx, rec.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	deleted, err = store.Delete(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestStore_IDIsNeverReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		rec, err := store.Save(ctx, "song.gp5", strings.NewReader("x"))
		require.NoError(t, err)
		_, dup := seen[rec.ID]
		require.False(t, dup, "id %q reused", rec.ID)
		seen[rec.ID] = struct{}{}
	}
}
