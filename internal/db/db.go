package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/susu3304/votebot/internal/poll"
)

// Postgres stores the active poll as a JSONB document in a one-row table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (db *Postgres) Close() {
	db.pool.Close()
}

// RunMigrations runs database migrations
func (db *Postgres) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE SEQUENCE IF NOT EXISTS poll_id_seq;
		CREATE TABLE IF NOT EXISTS active_poll (
			slot SMALLINT PRIMARY KEY DEFAULT 1 CHECK (slot = 1),
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS poll_history (
			id BIGINT PRIMARY KEY,
			doc JSONB NOT NULL,
			closed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (db *Postgres) Get(ctx context.Context) (*poll.Poll, error) {
	var doc []byte
	err := db.pool.QueryRow(ctx, `SELECT doc FROM active_poll WHERE slot = 1`).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decodePoll(doc)
}

func (db *Postgres) Put(ctx context.Context, p *poll.Poll) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := p.ID
	if id == 0 {
		if err := tx.QueryRow(ctx, `SELECT nextval('poll_id_seq')`).Scan(&id); err != nil {
			return fmt.Errorf("failed to allocate poll id: %w", err)
		}
	} else if _, err := tx.Exec(ctx,
		`SELECT setval('poll_id_seq', GREATEST($1::bigint, (SELECT last_value FROM poll_id_seq)))`,
		id,
	); err != nil {
		return fmt.Errorf("failed to advance poll id sequence: %w", err)
	}
	stored := p.Clone()
	stored.ID = id
	doc, err := encodePoll(stored)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO active_poll (slot, doc) VALUES (1, $1)
		 ON CONFLICT (slot) DO UPDATE SET doc = EXCLUDED.doc, updated_at = CURRENT_TIMESTAMP`,
		doc,
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.ID = id
	return nil
}

// Update locks the active row for the duration of fn so concurrent ballots
// are applied one after another.
func (db *Postgres) Update(ctx context.Context, fn func(p *poll.Poll) error) (*poll.Poll, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc []byte
	if err := tx.QueryRow(ctx, `SELECT doc FROM active_poll WHERE slot = 1 FOR UPDATE`).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, poll.ErrNoActivePoll
		}
		return nil, err
	}
	p, err := decodePoll(doc)
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
	if _, err := tx.Exec(ctx,
		`UPDATE active_poll SET doc = $1, updated_at = CURRENT_TIMESTAMP WHERE slot = 1`,
		next,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Clear moves the active poll into poll_history. A corrupt document is
// dropped without being archived.
func (db *Postgres) Clear(ctx context.Context) (*poll.Poll, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var doc []byte
	if err := tx.QueryRow(ctx, `DELETE FROM active_poll WHERE slot = 1 RETURNING doc`).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p, decodeErr := decodePoll(doc)
	if decodeErr == nil {
		if _, err := tx.Exec(ctx,
			`INSERT INTO poll_history (id, doc) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, closed_at = CURRENT_TIMESTAMP`,
			p.ID, doc,
		); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (db *Postgres) History(ctx context.Context, limit int) ([]*poll.Poll, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.pool.Query(ctx, `SELECT doc FROM poll_history ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*poll.Poll
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodePoll(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
