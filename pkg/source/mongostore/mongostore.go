// Package mongostore loads lineage graphs from a MongoDB collection.
//
// Each graph is stored as one document in the shared [source.Document]
// shape, keyed by its name field. This backend suits deployments where
// a provenance service already persists lineage records in Mongo.
package mongostore

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ebiiii/lineal/pkg/dag"
	"github.com/ebiiii/lineal/pkg/errors"
	"github.com/ebiiii/lineal/pkg/source"
)

// Config holds connection settings for a Mongo-backed store.
type Config struct {
	URI        string // mongodb:// connection string
	Database   string
	Collection string // defaults to "graphs"
}

// Store reads lineage documents from MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB and verifies the connection with a ping.
// Call Close when done.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Collection == "" {
		cfg.Collection = "graphs"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", cfg.URI)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", cfg.URI)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Name identifies the store in logs and hook payloads.
func (s *Store) Name() string { return "mongo" }

// Load fetches and validates the named graph.
func (s *Store) Load(ctx context.Context, name string) (*dag.Graph, error) {
	var doc source.Document
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load graph %s", name)
	}
	return doc.ToGraph()
}

// Save upserts a graph document by name.
func (s *Store) Save(ctx context.Context, doc *source.Document) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"name": doc.Name},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save graph %s", doc.Name)
	}
	return nil
}

// Names lists the stored graph names.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list graphs")
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cursor.Err()
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure Store implements Source.
var _ source.Source = (*Store)(nil)
