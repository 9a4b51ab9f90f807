package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jason-s-yu/scoundrel/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Load(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "alice", `{"v":1}`))
	got, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, got)

	require.NoError(t, s.Save(ctx, "alice", `{"v":2}`))
	got, err = s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, got, "save must overwrite")

	require.NoError(t, s.Save(ctx, "bob", "other"))
	got, err = s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, got, "slots are independent")

	require.NoError(t, s.Delete(ctx, "alice"))
	_, err = s.Load(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "alice"), "deleting a missing slot is fine")

	for _, bad := range []string{"", "../escape", "a b", "slash/slot"} {
		assert.ErrorIs(t, s.Save(ctx, bad, "x"), ErrInvalidSlot, bad)
		_, err := s.Load(ctx, bad)
		assert.ErrorIs(t, err, ErrInvalidSlot, bad)
	}
}

func TestValidateSlot(t *testing.T) {
	assert.NoError(t, ValidateSlot("default"))
	assert.NoError(t, ValidateSlot("3f2b8a4e-1c9d-4e7f-a0b1-c2d3e4f5a6b7"))
	assert.NoError(t, ValidateSlot("Save_01"))

	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	assert.ErrorIs(t, ValidateSlot(string(long)), ErrInvalidSlot)
	assert.NoError(t, ValidateSlot(string(long[:64])))
	assert.ErrorIs(t, ValidateSlot("dot.json"), ErrInvalidSlot)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, "alice", "x"), context.Canceled)
	_, err := s.Load(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "saves"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, "alice", "data"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice.json", entries[0].Name())
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "alice", "persisted"))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "alice", "persisted"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "  ")
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("SCOUNDREL_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SCOUNDREL_TEST_REDIS_URL not set")
	}
	s, err := NewRedisStore(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.Delete(ctx, "bob")
		_ = s.Close()
	})
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SCOUNDREL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SCOUNDREL_TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Delete(context.Background(), "bob")
		_ = s.Close()
	})
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(ctx, config.Config{Store: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, config.Config{Store: config.StoreFile, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(ctx, config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(dir, "open.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.Config{Store: "floppy"})
	assert.Error(t, err)
}
