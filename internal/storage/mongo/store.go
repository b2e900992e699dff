package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"capworks/internal/storage"
)

const collectionName = "workshop_snapshots"

type document struct {
	Version int64     `bson:"version"`
	SavedAt time.Time `bson:"savedAt"`
	Payload []byte    `bson:"payload"`
}

// Store keeps snapshots in a MongoDB collection with a unique version index.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	codec  storage.Codec
}

var _ storage.SnapshotStore = (*Store)(nil)

// Open connects to uri, verifies the connection and ensures the version index.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{client: client, coll: client.Database(dbName).Collection(collectionName)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// WithCodec replaces the payload codec, typically to seal snapshots.
func (s *Store) WithCodec(codec storage.Codec) *Store {
	s.codec = codec
	return s
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("version_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}
	return nil
}

func (s *Store) latestDocument(ctx context.Context) (document, error) {
	var doc document
	opts := options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}})
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return document{}, storage.ErrNoSnapshot
	}
	if err != nil {
		return document{}, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return doc, nil
}

func (s *Store) Latest(ctx context.Context) (storage.Snapshot, error) {
	doc, err := s.latestDocument(ctx)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return s.codec.Decode(doc.Payload)
}

func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	payload, err := s.codec.Encode(snap)
	if err != nil {
		return err
	}

	var latest int64
	doc, err := s.latestDocument(ctx)
	switch {
	case err == nil:
		latest = doc.Version
	case !errors.Is(err, storage.ErrNoSnapshot):
		return err
	}
	if err := storage.CheckNext(latest, snap.Version); err != nil {
		return err
	}

	_, err = s.coll.InsertOne(ctx, document{Version: snap.Version, SavedAt: snap.SavedAt, Payload: payload})
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: version %d already stored", storage.ErrVersionConflict, snap.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to insert snapshot %d: %w", snap.Version, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
