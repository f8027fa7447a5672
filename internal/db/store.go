package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/susu3304/votebot/internal/poll"
)

// Store persists the single active poll. An empty slot is a valid state:
// Get returns nil, nil.
type Store interface {
	Get(ctx context.Context) (*poll.Poll, error)
	// Put overwrites the active slot. A poll with ID 0 gets the next id from
	// the persisted counter; p.ID is updated in place.
	Put(ctx context.Context, p *poll.Poll) error
	// Update runs fn against the active poll as one atomic read-modify-write.
	// Nothing is written when fn returns an error.
	Update(ctx context.Context, fn func(p *poll.Poll) error) (*poll.Poll, error)
	// Clear empties the active slot and returns what was there.
	Clear(ctx context.Context) (*poll.Poll, error)
	// History lists closed polls, newest first.
	History(ctx context.Context, limit int) ([]*poll.Poll, error)
	Close()
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured backend and runs its migrations.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverPostgres:
		pg, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pg, nil
	case DriverSQLite:
		lite, err := NewSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if err := lite.RunMigrations(ctx); err != nil {
			lite.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return lite, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func encodePoll(p *poll.Poll) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func decodePoll(doc []byte) (*poll.Poll, error) {
	var p poll.Poll
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", poll.ErrStoreCorrupt, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", poll.ErrStoreCorrupt, err)
	}
	if p.Ballots == nil {
		p.Ballots = make(map[string]int)
	}
	return &p, nil
}
