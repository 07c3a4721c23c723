// Package memory provides an in-memory channel store. It is safe for
// concurrent use and is primarily intended for tests and local development.
package memory

import (
	"context"
	"sync"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	"github.com/payaction/channel_layer/internal/app/storage"
)

// Store is the in-memory implementation of storage.ChannelStore.
type Store struct {
	mu      sync.RWMutex
	records []channel.Record
}

var _ storage.ChannelStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) Load(_ context.Context) ([]channel.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]channel.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store) Save(_ context.Context, records []channel.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]channel.Record, len(records))
	copy(s.records, records)
	return nil
}
