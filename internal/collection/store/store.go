package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
)

// Store keeps one collection as a single JSONB document in the collections
// table. The revision column is the compare-and-swap token.
type Store[T any] struct {
	db   *sql.DB
	name string
}

func New[T any](db *sql.DB, name string) *Store[T] {
	return &Store[T]{db: db, name: name}
}

func (s *Store[T]) Load(ctx context.Context) (collection.Snapshot[T], error) {
	query := `SELECT revision, payload FROM collections WHERE name = $1`

	var (
		revision int64
		payload  []byte
	)

	err := s.db.QueryRowContext(ctx, query, s.name).Scan(&revision, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return collection.Snapshot[T]{}, nil
		}

		return collection.Snapshot[T]{}, apperr.Persistence("loading "+s.name, err)
	}

	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return collection.Snapshot[T]{}, apperr.Persistence("decoding "+s.name, err)
	}

	return collection.Snapshot[T]{Items: items, Revision: revision}, nil
}

func (s *Store[T]) Save(ctx context.Context, snap collection.Snapshot[T]) (collection.Snapshot[T], error) {
	items := snap.Items
	if items == nil {
		items = []T{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return collection.Snapshot[T]{}, apperr.Persistence("encoding "+s.name, err)
	}

	var res sql.Result

	if snap.Revision == 0 {
		query := `
			INSERT INTO collections (name, revision, payload, updated_at)
			VALUES ($1, 1, $2, NOW())
			ON CONFLICT (name) DO NOTHING
		`
		res, err = s.db.ExecContext(ctx, query, s.name, payload)
	} else {
		query := `
			UPDATE collections
			SET revision = revision + 1, payload = $1, updated_at = NOW()
			WHERE name = $2 AND revision = $3
		`
		res, err = s.db.ExecContext(ctx, query, payload, s.name, snap.Revision)
	}

	if err != nil {
		return collection.Snapshot[T]{}, apperr.Persistence("saving "+s.name, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return collection.Snapshot[T]{}, apperr.Persistence("saving "+s.name, fmt.Errorf("rows affected: %w", err))
	}

	if affected == 0 {
		return collection.Snapshot[T]{}, apperr.Conflict(s.name)
	}

	return collection.Snapshot[T]{Items: snap.Items, Revision: snap.Revision + 1}, nil
}
