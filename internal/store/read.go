package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/tetra/internal/ir"
)

// SessionInfo describes one journalled session.
type SessionInfo struct {
	ID            string `json:"id"`
	DocumentHash  string `json:"document_hash"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
	Entries       int    `json:"entries"`
}

// Sessions lists every session, ordered by ID. UUIDv7 session IDs sort by
// creation time.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.document_hash, s.engine_version, s.ir_version, COUNT(j.seq)
		FROM sessions s
		LEFT JOIN journal j ON j.session = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.ID, &info.DocumentHash, &info.EngineVersion, &info.IRVersion, &info.Entries); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// ReadSession returns a session's entries in seq order. An empty event
// filter returns every entry.
//
// Returns an empty slice (not nil) if the session has no entries.
func (s *Store) ReadSession(ctx context.Context, session, event string) ([]ir.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT j.session, j.seq, j.event, j.from_state, j.to_state, j.payload, j.progress,
		       s.document_hash, s.engine_version, s.ir_version
		FROM journal j
		JOIN sessions s ON s.id = j.session
		WHERE j.session = ? AND (? = '' OR j.event = ?)
		ORDER BY j.seq ASC
	`, session, event, event)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	out := []ir.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return out, nil
}

// LastSeq returns the highest seq recorded for session, or 0.
func (s *Store) LastSeq(ctx context.Context, session string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM journal WHERE session = ?
	`, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanEntry(rows *sql.Rows) (ir.JournalEntry, error) {
	var (
		e       ir.JournalEntry
		payload string
	)
	if err := rows.Scan(&e.Session, &e.Seq, &e.Event, &e.From, &e.To, &payload, &e.Progress,
		&e.DocumentHash, &e.EngineVersion, &e.IRVersion); err != nil {
		return ir.JournalEntry{}, fmt.Errorf("scan entry: %w", err)
	}

	var m ir.LoadStatusMap
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return ir.JournalEntry{}, fmt.Errorf("unmarshal payload seq %d: %w", e.Seq, err)
	}
	if len(m) > 0 {
		e.Payload = m
	}
	return e, nil
}
