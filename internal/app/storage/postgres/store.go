// Package postgres implements the channel store backed by PostgreSQL, for
// deployments that outgrow the flat file. Save replaces the collection in a
// single transaction to keep the store contract's all-or-nothing semantics.
package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	"github.com/payaction/channel_layer/internal/app/storage"
	apperr "github.com/payaction/channel_layer/internal/errors"
)

// Schema is the table backing the store.
const Schema = `
CREATE TABLE IF NOT EXISTS channels (
	id            TEXT PRIMARY KEY,
	route         TEXT NOT NULL UNIQUE,
	channel_name  TEXT NOT NULL,
	description   TEXT NOT NULL,
	fee           DOUBLE PRECISION NOT NULL,
	cover_image   TEXT NOT NULL,
	owner_address TEXT NOT NULL,
	external_link TEXT NOT NULL,
	contact_link  TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	position      BIGINT NOT NULL
)`

// Store implements storage.ChannelStore using a database handle.
type Store struct {
	db *sql.DB
}

var _ storage.ChannelStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the backing table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

func (s *Store) Load(ctx context.Context) ([]channel.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT route, channel_name, description, fee, cover_image,
		       owner_address, external_link, contact_link, created_at
		FROM channels
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, apperr.StorageRead("failed to load channels")
	}
	defer rows.Close()

	records := []channel.Record{}
	for rows.Next() {
		var rec channel.Record
		if err := rows.Scan(&rec.Route, &rec.ChannelName, &rec.Description, &rec.Fee,
			&rec.CoverImage, &rec.OwnerAddress, &rec.ExternalLink, &rec.ContactLink,
			&rec.CreatedAt); err != nil {
			return nil, apperr.StorageRead("failed to scan channel row")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageRead("failed to iterate channel rows")
	}
	return records, nil
}

func (s *Store) Save(ctx context.Context, records []channel.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.StorageWrite("failed to begin channel save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM channels`); err != nil {
		return apperr.StorageWrite("failed to clear channels")
	}

	for i, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channels (id, route, channel_name, description, fee, cover_image,
			                      owner_address, external_link, contact_link, created_at, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, uuid.NewString(), rec.Route, rec.ChannelName, rec.Description, rec.Fee,
			rec.CoverImage, rec.OwnerAddress, rec.ExternalLink, rec.ContactLink,
			rec.CreatedAt, int64(i)); err != nil {
			return apperr.StorageWrite("failed to insert channel row")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.StorageWrite("failed to commit channel save")
	}
	return nil
}
