package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hotbar/internal/ir"
)

func TestOpen_ReopenKeepsJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotbar.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	sess := writeTestSession(t, s, "sess-1")
	_, err = s.WriteDispatches(ctx, "sess-1", []ir.Dispatch{
		createTestDispatch(1, ir.PhaseExec, "Mining", "UseItem"),
		createTestDispatch(2, ir.PhaseEnd, "Mining", "UseItem"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, tbl, err := s.ReadSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, testTable(), tbl)

	trace, err := s.ReadDispatches(ctx, TraceFilter{Session: "sess-1"})
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.Equal(t, ir.PhaseEnd, trace[1].Phase)
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/hotbar.db")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open journal")
}

func TestOpen_ReaderSeesCommittedBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotbar.db")
	ctx := context.Background()

	writer, err := Open(path)
	require.NoError(t, err)
	defer writer.Close()
	writeTestSession(t, writer, "live")

	reader, err := Open(path)
	require.NoError(t, err)
	defer reader.Close()

	for seq := int64(1); seq <= 3; seq++ {
		_, err := writer.WriteDispatches(ctx, "live", []ir.Dispatch{createTestDispatch(seq, ir.PhaseNoop, "Default", "Craft")})
		require.NoError(t, err)

		trace, err := reader.ReadDispatches(ctx, TraceFilter{Session: "live"})
		require.NoError(t, err)
		assert.Len(t, trace, int(seq), "reader sees every flushed batch")
	}
}

func TestJournal_BatchIsAtomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestSession(t, s, "sess-1")

	bad := createTestDispatch(2, ir.PhaseExec, "Mining", "UseItem")
	bad.Phase = "explode"
	_, err := s.WriteDispatches(ctx, "sess-1", []ir.Dispatch{
		createTestDispatch(1, ir.PhaseExec, "Mining", "UseItem"),
		bad,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seq 2")

	trace, err := s.ReadDispatches(ctx, TraceFilter{Session: "sess-1"})
	require.NoError(t, err)
	assert.Empty(t, trace, "the valid entry is rolled back with the bad one")
}

func TestJournal_SessionsKeepTheirOwnClock(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestSession(t, s, "first")
	writeTestSession(t, s, "second")

	for _, token := range []string{"first", "second"} {
		n, err := s.WriteDispatches(ctx, token, []ir.Dispatch{
			createTestDispatch(1, ir.PhaseSwitch, "Mining", ""),
			createTestDispatch(2, ir.PhaseExec, "Mining", token),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n, "seq restarts per session")
	}

	trace, err := s.ReadDispatches(ctx, TraceFilter{Session: "second"})
	require.NoError(t, err)
	require.Len(t, trace, 2)
	assert.Equal(t, "second", trace[1].Command)

	all, err := s.ReadDispatches(ctx, TraceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "first", all[1].Command, "sessions are read in recording order")
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "hotbar.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NotPanics(t, func() { _ = s.Close() })

	assert.NoError(t, (&Store{}).Close())
}

func TestDSN(t *testing.T) {
	got := dsn("/tmp/hotbar.db")
	require.True(t, strings.HasPrefix(got, "/tmp/hotbar.db?"))
	for _, param := range []string{"_journal_mode=WAL", "_foreign_keys=1", "_busy_timeout=5000", "_synchronous=NORMAL"} {
		assert.Contains(t, got, param)
	}
}
