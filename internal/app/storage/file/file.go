// Package file provides the flat-file channel store. The whole collection is
// serialized as one JSON document; Save replaces it atomically via a temp
// file and rename so readers never observe a partial write.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/payaction/channel_layer/internal/app/domain/channel"
	"github.com/payaction/channel_layer/internal/app/storage"
	apperr "github.com/payaction/channel_layer/internal/errors"
)

// Store persists channel records in a single JSON file.
type Store struct {
	path string
}

var _ storage.ChannelStore = (*Store)(nil)

// New creates a store backed by the given path. The file is created on the
// first Save; a missing file reads as an empty collection.
func New(path string) *Store {
	return &Store{path: path}
}

// document is the on-disk shape. Unknown fields are ignored on read so newer
// writers remain compatible with older readers.
type document struct {
	Channels []channel.Record `json:"channels"`
}

func (s *Store) Load(_ context.Context) ([]channel.Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []channel.Record{}, nil
	}
	if err != nil {
		return nil, apperr.StorageRead("failed to read channel store")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.StorageRead("channel store is corrupt")
	}
	if doc.Channels == nil {
		doc.Channels = []channel.Record{}
	}
	return doc.Channels, nil
}

func (s *Store) Save(_ context.Context, records []channel.Record) error {
	data, err := json.MarshalIndent(document{Channels: records}, "", "  ")
	if err != nil {
		return apperr.StorageWrite("failed to encode channel store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.StorageWrite("failed to create store directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperr.StorageWrite("failed to stage channel store write")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.StorageWrite("failed to write channel store")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.StorageWrite("failed to flush channel store")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperr.StorageWrite(fmt.Sprintf("failed to replace channel store: %v", err))
	}
	return nil
}
