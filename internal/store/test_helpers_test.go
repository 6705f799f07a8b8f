package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/hotbar/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
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

// testTable is a small two-mode table.
func testTable() ir.ModeTable {
	return ir.ModeTable{
		Enabled: true,
		Modes: []ir.ModeSpec{
			{
				Name:     "Default",
				Bindings: []ir.BindingSpec{{Trigger: "Start", Command: "SwitchMode", Params: map[string]string{"ModeName": "Mining"}}},
			},
			{
				Name:       "Mining",
				ToggleKeys: []ir.KeyID{"Back"},
				Bindings: []ir.BindingSpec{
					{Trigger: "LB", Command: "UseItem", Params: map[string]string{"ItemName": "PickAxe"}},
					{Toggle: "Back", Trigger: "Y", Command: "Craft"},
				},
			},
		},
	}
}

// writeTestSession records a session running testTable.
func writeTestSession(t *testing.T, s *Store, token string) ir.Session {
	t.Helper()
	tbl := testTable()
	sess := ir.Session{
		Token:         token,
		TableHash:     "test-hash",
		InitialMode:   tbl.InitialMode(),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
	if err := s.WriteSession(context.Background(), sess, tbl); err != nil {
		t.Fatalf("WriteSession() failed: %v", err)
	}
	return sess
}

// createTestDispatch creates a dispatch with minimal required fields.
func createTestDispatch(seq int64, phase ir.Phase, mode, cmd string) ir.Dispatch {
	return ir.Dispatch{
		Seq:          seq,
		Frame:        seq / 2,
		Phase:        phase,
		Mode:         mode,
		BindingIndex: 0,
		BindingID:    "binding-" + cmd,
		Command:      cmd,
		Slot:         -1,
	}
}
