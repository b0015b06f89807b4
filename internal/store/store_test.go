package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/ir"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestEntry(session string, seq int64, event, from, to string) ir.JournalEntry {
	return ir.JournalEntry{
		Session:       session,
		Seq:           seq,
		Event:         event,
		From:          from,
		To:            to,
		DocumentHash:  "test-hash",
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"sessions", "journal"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}

	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1", // NORMAL
		"busy_timeout": "5000",
		"foreign_keys": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestRecord_ReadSessionInSeqOrder(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	second := createTestEntry("s1", 2, "FORCE_READY", "loading", "ready_to_enter_normal_spin")
	first := createTestEntry("s1", 1, "UPDATE_ELEMENT_STATUS", "loading", "loading")
	first.Payload = ir.LoadStatusMap{"reel": {Label: "reel", IsLoaded: true}, "logo": {Label: "logo"}}
	first.Progress = 0.5

	require.NoError(t, s.Record(ctx, second))
	require.NoError(t, s.Record(ctx, first))

	got, err := s.ReadSession(ctx, "s1", "")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
}

func TestRecord_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	e := createTestEntry("s1", 1, "SPIN", "idle", "spinning")
	require.NoError(t, s.Record(ctx, e))
	require.NoError(t, s.Record(ctx, e))

	got, err := s.ReadSession(ctx, "s1", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReadSession_EventFilterAndEmpty(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.Record(ctx, createTestEntry("s1", 1, "SPIN", "idle", "spinning")))
	require.NoError(t, s.Record(ctx, createTestEntry("s1", 2, "SPIN_END", "spinning", "idle")))
	require.NoError(t, s.Record(ctx, createTestEntry("s1", 3, "SPIN", "idle", "spinning")))

	spins, err := s.ReadSession(ctx, "s1", "SPIN")
	require.NoError(t, err)
	require.Len(t, spins, 2)
	assert.Equal(t, int64(3), spins[1].Seq)

	none, err := s.ReadSession(ctx, "missing", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSessionsAndLastSeq(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.Record(ctx, createTestEntry("b", 1, "SPIN", "idle", "spinning")))
	require.NoError(t, s.Record(ctx, createTestEntry("a", 1, "SPIN", "idle", "spinning")))
	require.NoError(t, s.Record(ctx, createTestEntry("a", 7, "SPIN_END", "spinning", "idle")))

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].Entries)
	assert.Equal(t, "test-hash", sessions[1].DocumentHash)

	last, err := s.LastSeq(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(7), last)

	last, err = s.LastSeq(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}
