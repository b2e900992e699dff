package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"capworks/internal/storage"
)

const uniqueViolation = "23505"

// Store keeps snapshots in the workshop_snapshots table. The pool is owned by
// the caller.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	codec  storage.Codec
}

var _ storage.SnapshotStore = (*Store)(nil)

func New(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}

// WithCodec replaces the payload codec, typically to seal snapshots.
func (s *Store) WithCodec(codec storage.Codec) *Store {
	s.codec = codec
	return s
}

func (s *Store) Latest(ctx context.Context) (storage.Snapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
    SELECT payload
    FROM workshop_snapshots
    ORDER BY version DESC
    LIMIT 1
  `).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Snapshot{}, storage.ErrNoSnapshot
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("load latest snapshot: %w", err)
	}
	return s.codec.Decode(payload)
}

func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	payload, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var latest int64
	if err := tx.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM workshop_snapshots").Scan(&latest); err != nil {
		return fmt.Errorf("read snapshot version: %w", err)
	}
	if err := storage.CheckNext(latest, snap.Version); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO workshop_snapshots (version, saved_at, payload)
    VALUES ($1, $2, $3)
  `, snap.Version, snap.SavedAt, payload); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: version %d already stored", storage.ErrVersionConflict, snap.Version)
		}
		return fmt.Errorf("insert snapshot %d: %w", snap.Version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot %d: %w", snap.Version, err)
	}
	s.logger.Debug("snapshot saved", zap.Int64("version", snap.Version), zap.Int("bytes", len(payload)))
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is closed by whoever opened it.
func (s *Store) Close(ctx context.Context) error {
	return nil
}
