package users

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avolkovs/tabshare/internal/common"
	"github.com/avolkovs/tabshare/internal/logging"
	"github.com/avolkovs/tabshare/internal/server/models"
	"github.com/avolkovs/tabshare/internal/timex"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *FileRepository {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewFileRepository(filepath.Join(t.TempDir(), "users.json"), logger)
}

func newTestUser(username string) *models.User {
	return &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$fakehashfakehashfakehash",
		CreatedAt:    timex.Timestamp{Time: time.Now().UTC()},
	}
}

func strptr(s string) *string { return &s }

func TestFileRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)
}

func TestFileRepository_Create_DuplicateUsernameCaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestUser("Alice"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newTestUser("alice"))
	require.ErrorIs(t, err, common.ErrDuplicateUsername)
}

func TestFileRepository_GetByUsername_CaseInsensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestUser("Alice"))
	require.NoError(t, err)

	got, err := repo.GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestFileRepository_Get_Absent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetByUsername(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFileRepository_UpdateUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	updated, err := repo.UpdateUser(ctx, created.ID, Changes{
		Username: strptr("alice2"),
		Email:    strptr("alice2@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, "alice2", updated.Username)
	require.Equal(t, "alice2@example.com", updated.Email)

	// change survives a reload
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice2", got.Username)
}

func TestFileRepository_UpdateUser_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.UpdateUser(context.Background(), "missing", Changes{Email: strptr("x@example.com")})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFileRepository_UpdateUser_UsernameTakenLeavesRecordUnmodified(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestUser("bob"))
	require.NoError(t, err)

	_, err = repo.UpdateUser(ctx, alice.ID, Changes{
		Username: strptr("Bob"),
		Email:    strptr("changed@example.com"),
	})
	require.ErrorIs(t, err, common.ErrUsernameTaken)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "alice@example.com", got.Email)
}

func TestFileRepository_UpdateUser_OwnUsernameCaseChangeAllowed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	alice, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	updated, err := repo.UpdateUser(ctx, alice.ID, Changes{Username: strptr("Alice")})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.Username)
}

func TestFileRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = repo.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFileRepository_CorruptFileTreatedAsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(repo.path, []byte("{ not json"), 0o660))

	_, err := repo.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, common.ErrNotFound)

	// a create after the tolerant read starts a fresh collection
	created, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestFileRepository_OnDiskFormat(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestUser("alice"))
	require.NoError(t, err)

	raw, err := os.ReadFile(repo.path)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	entry, ok := decoded[created.ID]
	require.True(t, ok, "collection must be keyed by user_id")
	require.Equal(t, created.ID, entry["user_id"])
	require.Equal(t, "alice", entry["username"])
	require.Contains(t, entry, "password_hash")
	require.Contains(t, entry, "created_at")
}

func TestFileRepository_ReadsCollectionFromPreviousBackend(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// collection as written by the Flask predecessor: zoneless
	// datetime.isoformat() timestamps with microseconds
	fixture := `{
  "7f3b2c1a-1111-4aaa-bbbb-000000000001": {
    "user_id": "7f3b2c1a-1111-4aaa-bbbb-000000000001",
    "username": "legacyuser",
    "email": "legacy@example.com",
    "password_hash": "$2b$12$abcdefghijklmnopqrstuv",
    "created_at": "2024-01-01T12:00:00.123456"
  }
}`
	require.NoError(t, os.WriteFile(repo.path, []byte(fixture), 0o660))

	got, err := repo.GetByID(ctx, "7f3b2c1a-1111-4aaa-bbbb-000000000001")
	require.NoError(t, err)
	require.Equal(t, "legacyuser", got.Username)
	require.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 123_456_000, time.UTC), got.CreatedAt.Time)

	// a later mutation must keep the pre-existing account
	_, err = repo.Create(ctx, newTestUser("newcomer"))
	require.NoError(t, err)

	got, err = repo.GetByUsername(ctx, "legacyuser")
	require.NoError(t, err)
	require.Equal(t, "7f3b2c1a-1111-4aaa-bbbb-000000000001", got.ID)
}

func TestFileRepository_FirstMatchWinsOnHistoricalDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// simulate historical data written before uniqueness was enforced
	collection := map[string]*models.User{
		"a-id": {ID: "a-id", Username: "dup", CreatedAt: timex.Timestamp{Time: time.Now().UTC()}},
		"b-id": {ID: "b-id", Username: "Dup", CreatedAt: timex.Timestamp{Time: time.Now().UTC()}},
	}
	data, err := json.Marshal(collection)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(repo.path, data, 0o660))

	got, err := repo.GetByUsername(ctx, "dup")
	require.NoError(t, err)
	require.Equal(t, "a-id", got.ID, "first id in sorted order wins")
}
