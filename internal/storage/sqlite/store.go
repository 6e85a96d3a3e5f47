// Package sqlite provides a SQLite-backed storage.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lotpool/internal/event"
	"lotpool/internal/storage"
	"lotpool/internal/storage/sqlite/migrations"
)

// Store persists rounds and event journals in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRound implements storage.RoundStore.
func (s *Store) SaveRound(ctx context.Context, record storage.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	participants, err := json.Marshal(record.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rounds (
		   id, name, entry_fee, draw_time, creator, participants,
		   prize_pool, winner, is_drawn, state, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   entry_fee = excluded.entry_fee,
		   draw_time = excluded.draw_time,
		   creator = excluded.creator,
		   participants = excluded.participants,
		   prize_pool = excluded.prize_pool,
		   winner = excluded.winner,
		   is_drawn = excluded.is_drawn,
		   state = excluded.state,
		   updated_at = excluded.updated_at`,
		record.ID,
		record.Name,
		record.EntryFee,
		toMillis(record.DrawTime),
		record.Creator,
		string(participants),
		record.PrizePool,
		record.Winner,
		boolToInt(record.IsDrawn),
		record.State,
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("save round: %w", err)
	}
	return nil
}

// GetRound implements storage.RoundStore.
func (s *Store) GetRound(ctx context.Context, id string) (storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RoundRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, entry_fee, draw_time, creator, participants,
		        prize_pool, winner, is_drawn, state, updated_at
		 FROM rounds WHERE id = ?`,
		id,
	)
	record, err := scanRound(row)
	if err == sql.ErrNoRows {
		return storage.RoundRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.RoundRecord{}, fmt.Errorf("get round: %w", err)
	}
	return record, nil
}

// ListRounds implements storage.RoundStore.
func (s *Store) ListRounds(ctx context.Context) ([]storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, entry_fee, draw_time, creator, participants,
		        prize_pool, winner, is_drawn, state, updated_at
		 FROM rounds ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer rows.Close()

	var records []storage.RoundRecord
	for rows.Next() {
		record, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	return records, nil
}

// AppendEvent implements storage.EventStore. The sequence number is assigned
// inside a transaction so concurrent appends to one round never collide.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next uint64
	err = tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM round_events WHERE round_id = ?`,
		evt.RoundID,
	).Scan(&next)
	if err != nil {
		return event.Event{}, fmt.Errorf("next seq: %w", err)
	}

	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO round_events (round_id, seq, ts, kind, payload)
		 VALUES (?, ?, ?, ?, ?)`,
		evt.RoundID,
		next,
		toMillis(evt.Timestamp),
		string(evt.Kind),
		string(payload),
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit append: %w", err)
	}
	evt.Seq = next
	return evt, nil
}

// ListEvents implements storage.EventStore.
func (s *Store) ListEvents(ctx context.Context, roundID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT round_id, seq, ts, kind, payload
		 FROM round_events WHERE round_id = ? ORDER BY seq`,
		roundID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt     event.Event
			ts      int64
			kind    string
			payload string
		)
		if err := rows.Scan(&evt.RoundID, &evt.Seq, &ts, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Timestamp = fromMillis(ts)
		evt.Kind = event.Kind(kind)
		evt.PayloadJSON = []byte(payload)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRound(row rowScanner) (storage.RoundRecord, error) {
	var (
		record       storage.RoundRecord
		drawTime     int64
		participants string
		isDrawn      int
		updatedAt    int64
	)
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.EntryFee,
		&drawTime,
		&record.Creator,
		&participants,
		&record.PrizePool,
		&record.Winner,
		&isDrawn,
		&record.State,
		&updatedAt,
	)
	if err != nil {
		return storage.RoundRecord{}, err
	}
	if err := json.Unmarshal([]byte(participants), &record.Participants); err != nil {
		return storage.RoundRecord{}, fmt.Errorf("unmarshal participants: %w", err)
	}
	record.DrawTime = fromMillis(drawTime)
	record.IsDrawn = isDrawn != 0
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func applyMigrations(sqlDB *sql.DB) error {
	if _, err := sqlDB.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		var applied int
		err := sqlDB.QueryRow(
			`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, entry.Name(),
		).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if applied > 0 {
			continue
		}
		content, err := migrations.FS.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			entry.Name(), time.Now().UTC().UnixMilli(),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}
