// Package storage keeps the market event history queryable in SQLite.
// It sits entirely downstream of the engine: the service appends each
// command's event batch, and tools read it back for audit and replay
// inspection.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"tycho/service"
)

// EventStore handles persistent storage of market events in SQLite.
type EventStore struct {
	db *sql.DB
}

// NewEventStore opens (and migrates) the store with WAL mode enabled.
func NewEventStore(dbPath string) (*EventStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			symbol_id INTEGER NOT NULL,
			order_id INTEGER NOT NULL,
			price INTEGER NOT NULL,
			qty INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &EventStore{db: db}, nil
}

func (s *EventStore) Close() error { return s.db.Close() }

// SaveBatch appends one command's event batch in a single transaction.
func (s *EventStore) SaveBatch(ctx context.Context, events []service.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO events (seq, type, symbol_id, order_id, price, qty, payload) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event %d: %w", ev.Seq, err)
		}
		if _, err := stmt.ExecContext(ctx,
			ev.Seq, string(ev.Type), ev.SymbolID, ev.OrderID, ev.Price, ev.Quantity, payload); err != nil {
			return fmt.Errorf("failed to insert event %d: %w", ev.Seq, err)
		}
	}
	return tx.Commit()
}

// Executions returns the executions for a symbol, newest first.
func (s *EventStore) Executions(ctx context.Context, symbolID uint32, limit int) ([]service.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM events WHERE type = ? AND symbol_id = ? ORDER BY seq DESC LIMIT ?",
		string(service.EvExecuteOrder), symbolID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []service.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev service.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// LastSeq returns the highest stored event sequence, zero when empty.
func (s *EventStore) LastSeq(ctx context.Context) (uint64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM events").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return uint64(seq.Int64), nil
}
