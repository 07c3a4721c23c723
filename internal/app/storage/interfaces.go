// Package storage defines the persistence contract for channel records.
package storage

import (
	"context"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
)

// ChannelStore persists the full channel collection. Load returns the
// collection in insertion order; an uninitialized backing store yields an
// empty collection, not an error. Save atomically replaces the whole
// collection; no partial write is ever visible to a subsequent Load.
//
// The store itself provides no locking. The registry serializes its
// load-check-append-save cycle so registrations cannot lose updates.
type ChannelStore interface {
	Load(ctx context.Context) ([]channel.Record, error)
	Save(ctx context.Context, records []channel.Record) error
}
