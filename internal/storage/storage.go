// Package storage defines the snapshot contract shared by the memory,
// postgres and mongo drivers. A snapshot is the whole workshop state; there
// is no partial update.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/roster"
	"capworks/internal/domain/stock"
	"capworks/internal/domain/wages"
)

var (
	ErrNoSnapshot      = errors.New("no snapshot stored")
	ErrVersionConflict = errors.New("snapshot version conflict")
	ErrSealedSnapshot  = errors.New("snapshot is sealed and no key is configured")
)

type Snapshot struct {
	Version   int64           `json:"version"`
	SavedAt   time.Time       `json:"savedAt"`
	Wages     wages.State     `json:"wages"`
	Roster    roster.State    `json:"roster"`
	Customers customers.State `json:"customers"`
	Stock     stock.State     `json:"stock"`
}

// SnapshotStore persists versioned snapshots. Save accepts a snapshot only
// when its version is exactly one past the latest stored version.
type SnapshotStore interface {
	Latest(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func Encode(snap Snapshot) ([]byte, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot %d: %w", snap.Version, err)
	}
	return payload, nil
}

func Decode(payload []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// CheckNext reports ErrVersionConflict unless next follows latest.
func CheckNext(latest, next int64) error {
	if next != latest+1 {
		return fmt.Errorf("%w: have %d, got %d", ErrVersionConflict, latest, next)
	}
	return nil
}

// Cipher seals payloads at rest.
type Cipher interface {
	Seal(plain []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Codec encodes snapshots for the database drivers. With a Cipher set the
// JSON payload is sealed and stored as {"sealed": "<base64>"}, which keeps it
// valid for JSONB columns. Unsealed payloads still decode, so a key can be
// introduced on an existing store.
type Codec struct {
	Cipher Cipher
}

type sealedPayload struct {
	Sealed []byte `json:"sealed"`
}

func (c Codec) Encode(snap Snapshot) ([]byte, error) {
	payload, err := Encode(snap)
	if err != nil || c.Cipher == nil {
		return payload, err
	}
	sealed, err := c.Cipher.Seal(payload)
	if err != nil {
		return nil, fmt.Errorf("seal snapshot %d: %w", snap.Version, err)
	}
	return json.Marshal(sealedPayload{Sealed: sealed})
}

func (c Codec) Decode(payload []byte) (Snapshot, error) {
	var wrapped sealedPayload
	if err := json.Unmarshal(payload, &wrapped); err == nil && len(wrapped.Sealed) > 0 {
		if c.Cipher == nil {
			return Snapshot{}, ErrSealedSnapshot
		}
		plain, err := c.Cipher.Open(wrapped.Sealed)
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
		}
		payload = plain
	}
	return Decode(payload)
}
