package store

import (
	"context"
	"fmt"

	"github.com/roach88/hotbar/internal/ir"
)

// WriteSession records the start of a session together with the mode
// table it runs. Uses ON CONFLICT(token) DO NOTHING for idempotency.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session, table ir.ModeTable) error {
	tableJSON, err := marshalTable(table)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(token, table_hash, initial_mode, engine_version, ir_version, mode_table)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`,
		sess.Token,
		sess.TableHash,
		sess.InitialMode,
		sess.EngineVersion,
		sess.IRVersion,
		tableJSON,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// WriteDispatches appends a batch of journal entries for a session in one
// transaction. Entries whose seq is already stored are silently ignored,
// so a batch can be retried after a partial failure.
//
// Returns the number of entries actually inserted.
//
// Note: The session must already exist (foreign key constraint).
func (s *Store) WriteDispatches(ctx context.Context, token string, ds []ir.Dispatch) (int, error) {
	if len(ds) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write dispatches: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dispatches
		(session_token, seq, frame, phase, mode, binding_index, binding_id, command, slot, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_token, seq) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("write dispatches: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, d := range ds {
		res, err := stmt.ExecContext(ctx,
			token,
			d.Seq,
			d.Frame,
			string(d.Phase),
			d.Mode,
			d.BindingIndex,
			d.BindingID,
			d.Command,
			d.Slot,
			d.Detail,
		)
		if err != nil {
			return 0, fmt.Errorf("write dispatch seq %d: %w", d.Seq, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("write dispatch seq %d: rows affected: %w", d.Seq, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write dispatches: commit: %w", err)
	}

	return inserted, nil
}
