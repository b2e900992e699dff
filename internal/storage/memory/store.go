package memory

import (
	"context"
	"sync"

	"capworks/internal/storage"
)

// Store keeps encoded snapshots for the life of the process.
type Store struct {
	mu       sync.Mutex
	versions [][]byte
	latest   int64
}

var _ storage.SnapshotStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Latest(ctx context.Context) (storage.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.versions) == 0 {
		return storage.Snapshot{}, storage.ErrNoSnapshot
	}
	return storage.Decode(s.versions[len(s.versions)-1])
}

func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	payload, err := storage.Encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := storage.CheckNext(s.latest, snap.Version); err != nil {
		return err
	}
	s.versions = append(s.versions, payload)
	s.latest = snap.Version
	return nil
}

// Versions reports how many snapshots have been saved.
func (s *Store) Versions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.versions)
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}
