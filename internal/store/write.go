package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/tetra/internal/ir"
)

// Record appends one journal entry. It implements actor.Journal.
//
// The session row is created on first use (ON CONFLICT DO NOTHING), and the
// entry itself is idempotent on (session, seq): replaying the same entry is
// silently ignored.
func (s *Store) Record(ctx context.Context, e ir.JournalEntry) error {
	payload, err := marshalPayload(e.Payload)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, document_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, e.Session, e.DocumentHash, e.EngineVersion, e.IRVersion); err != nil {
		return fmt.Errorf("record: session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO journal (session, seq, event, from_state, to_state, payload, progress)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`, e.Session, e.Seq, e.Event, e.From, e.To, payload, e.Progress); err != nil {
		return fmt.Errorf("record: entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record: commit: %w", err)
	}
	return nil
}

// marshalPayload encodes the load-status payload. encoding/json sorts map
// keys, so equal payloads always encode to equal bytes.
func marshalPayload(m ir.LoadStatusMap) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(b), nil
}
