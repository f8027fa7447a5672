package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/susu3304/votebot/internal/poll"
	_ "modernc.org/sqlite"
)

// SQLite keeps the active poll in a local database file. All writes go
// through one connection and a process mutex.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
	}

	return &SQLite{db: conn}, nil
}

func (s *SQLite) Close() {
	s.db.Close()
}

// RunMigrations creates the tables if they do not exist yet.
func (s *SQLite) RunMigrations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS active_poll (
			slot INTEGER PRIMARY KEY CHECK (slot = 1),
			doc TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS poll_history (
			id INTEGER PRIMARY KEY,
			doc TEXT NOT NULL,
			closed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (s *SQLite) Get(ctx context.Context) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM active_poll WHERE slot = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decodePoll([]byte(doc))
}

func (s *SQLite) Put(ctx context.Context, p *poll.Poll) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := p.ID
	if id == 0 {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO counters (name, value) VALUES ('poll_id', 1)
			 ON CONFLICT (name) DO UPDATE SET value = value + 1
			 RETURNING value`,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to allocate poll id: %w", err)
		}
	} else if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('poll_id', ?)
		 ON CONFLICT (name) DO UPDATE SET value = MAX(value, excluded.value)`,
		id,
	); err != nil {
		return fmt.Errorf("failed to advance poll id counter: %w", err)
	}
	stored := p.Clone()
	stored.ID = id
	doc, err := encodePoll(stored)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO active_poll (slot, doc) VALUES (1, ?)
		 ON CONFLICT (slot) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`,
		string(doc),
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *SQLite) Update(ctx context.Context, fn func(p *poll.Poll) error) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var doc string
	if err := tx.QueryRowContext(ctx, `SELECT doc FROM active_poll WHERE slot = 1`).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, poll.ErrNoActivePoll
		}
		return nil, err
	}
	p, err := decodePoll([]byte(doc))
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	next, err := encodePoll(p)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE active_poll SET doc = ?, updated_at = CURRENT_TIMESTAMP WHERE slot = 1`,
		string(next),
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLite) Clear(ctx context.Context) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var doc string
	if err := tx.QueryRowContext(ctx, `DELETE FROM active_poll WHERE slot = 1 RETURNING doc`).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p, decodeErr := decodePoll([]byte(doc))
	if decodeErr == nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO poll_history (id, doc) VALUES (?, ?)
			 ON CONFLICT (id) DO UPDATE SET doc = excluded.doc, closed_at = CURRENT_TIMESTAMP`,
			p.ID, doc,
		); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *SQLite) History(ctx context.Context, limit int) ([]*poll.Poll, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM poll_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*poll.Poll
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodePoll([]byte(doc))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
