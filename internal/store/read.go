package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/hotbar/internal/ir"
)

// TraceFilter narrows ReadDispatches. Empty fields match everything.
type TraceFilter struct {
	Session string
	Mode    string
	Command string
	Phase   ir.Phase

	// Limit caps the number of entries returned; 0 means no limit.
	Limit int
}

// where renders the filter as a SQL condition and its arguments.
func (f TraceFilter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(col, val string) {
		if val == "" {
			return
		}
		conds = append(conds, col+" = ?")
		args = append(args, val)
	}
	add("session_token", f.Session)
	add("mode", f.Mode)
	add("command", f.Command)
	add("phase", string(f.Phase))

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ReadDispatches returns journal entries matching f.
// Results are ordered deterministically: ORDER BY session id, seq ASC.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadDispatches(ctx context.Context, f TraceFilter) ([]ir.Dispatch, error) {
	where, args := f.where()
	query := `
		SELECT d.seq, d.frame, d.phase, d.mode, d.binding_index, d.binding_id, d.command, d.slot, d.detail
		FROM dispatches d
		JOIN sessions s ON s.token = d.session_token
		` + where + `
		ORDER BY s.id ASC, d.seq ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	dispatches := []ir.Dispatch{}
	for rows.Next() {
		var d ir.Dispatch
		var phase string
		if err := rows.Scan(&d.Seq, &d.Frame, &phase, &d.Mode, &d.BindingIndex, &d.BindingID, &d.Command, &d.Slot, &d.Detail); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		d.Phase = ir.Phase(phase)
		dispatches = append(dispatches, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}

	return dispatches, nil
}

// PhaseCounts returns how many entries matching f were recorded per phase.
// Limit is ignored.
func (s *Store) PhaseCounts(ctx context.Context, f TraceFilter) (map[ir.Phase]int, error) {
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx, `
		SELECT phase, COUNT(*)
		FROM dispatches
		`+where+`
		GROUP BY phase
		ORDER BY phase ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query phase counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[ir.Phase]int)
	for rows.Next() {
		var phase string
		var n int
		if err := rows.Scan(&phase, &n); err != nil {
			return nil, fmt.Errorf("scan phase count: %w", err)
		}
		counts[ir.Phase(phase)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate phase counts: %w", err)
	}

	return counts, nil
}

// ReadSession retrieves a session and the mode table it ran.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, token string) (ir.Session, ir.ModeTable, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, table_hash, initial_mode, engine_version, ir_version, mode_table
		FROM sessions
		WHERE token = ?
	`, token)

	var sess ir.Session
	var tableJSON string
	if err := row.Scan(&sess.Token, &sess.TableHash, &sess.InitialMode, &sess.EngineVersion, &sess.IRVersion, &tableJSON); err != nil {
		if err == sql.ErrNoRows {
			return ir.Session{}, ir.ModeTable{}, err
		}
		return ir.Session{}, ir.ModeTable{}, fmt.Errorf("read session: %w", err)
	}

	table, err := unmarshalTable(tableJSON)
	if err != nil {
		return ir.Session{}, ir.ModeTable{}, fmt.Errorf("read session %s: %w", token, err)
	}
	return sess, table, nil
}

// ListSessions returns all sessions in the order they were recorded.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListSessions(ctx context.Context) ([]ir.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, table_hash, initial_mode, engine_version, ir_version
		FROM sessions
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []ir.Session{}
	for rows.Next() {
		var sess ir.Session
		if err := rows.Scan(&sess.Token, &sess.TableHash, &sess.InitialMode, &sess.EngineVersion, &sess.IRVersion); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}
