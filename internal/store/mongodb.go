package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Secondary indexes per collection, beyond the primary-key index.
var mongoSecondaryIndexes = map[string][]string{
	"games":   {"name", "release_date"},
	"reviews": {"app_id", "recommended", "timestamp_created"},
}

// MongoDBStore projects tables into collections of the same name.
type MongoDBStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

func NewMongoDB(uri, database string, logg *logger.Logger) (*MongoDBStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongodb: connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: mongodb: ping: %w", err)
	}
	return &MongoDBStore{
		client: client,
		db:     client.Database(database),
		log:    logg.With("service", "MongoDBStore"),
	}, nil
}

func (s *MongoDBStore) Name() string { return config.BackendMongoDB }

// Database exposes the handle for catalog aggregations.
func (s *MongoDBStore) Database() *mongo.Database { return s.db }

func (s *MongoDBStore) ProjectTable(ctx context.Context, t model.Table, batchSize int) error {
	coll := s.db.Collection(t.Name)
	for _, b := range batches(len(t.Rows), batchSize) {
		docs := make([]interface{}, 0, b[1]-b[0])
		for _, row := range t.Rows[b[0]:b[1]] {
			docs = append(docs, row)
		}
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("store: mongodb: insert %s rows %d..%d: %w", t.Name, b[0], b[1], err)
		}
	}
	if err := s.createIndexes(ctx, t); err != nil {
		return err
	}
	s.log.Info("table projected", "table", t.Name, "rows", len(t.Rows))
	return nil
}

func (s *MongoDBStore) createIndexes(ctx context.Context, t model.Table) error {
	coll := s.db.Collection(t.Name)

	if len(t.PrimaryKey) > 0 {
		keys := bson.D{}
		for _, pk := range t.PrimaryKey {
			keys = append(keys, bson.E{Key: pk, Value: 1})
		}
		idx := mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
		if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("store: mongodb: index %s primary key: %w", t.Name, err)
		}
	}

	for _, field := range mongoSecondaryIndexes[t.Name] {
		idx := mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
		if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("store: mongodb: index %s.%s: %w", t.Name, field, err)
		}
	}
	return nil
}

func (s *MongoDBStore) Drop(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("store: mongodb: drop %s: %w", name, err)
		}
	}
	return nil
}

func (s *MongoDBStore) Count(ctx context.Context, name string) (int64, error) {
	n, err := s.db.Collection(name).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("store: mongodb: count %s: %w", name, err)
	}
	return n, nil
}

func (s *MongoDBStore) SampleIDs(ctx context.Context, name, idColumn string, n int) (map[int64]string, error) {
	cursor, err := s.db.Collection(name).Find(ctx, bson.D{},
		options.Find().
			SetProjection(bson.D{{Key: idColumn, Value: 1}, {Key: "name", Value: 1}, {Key: "_id", Value: 0}}).
			SetSort(bson.D{{Key: idColumn, Value: 1}}).
			SetLimit(int64(n)))
	if err != nil {
		return nil, fmt.Errorf("store: mongodb: sample %s: %w", name, err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("store: mongodb: sample %s: %w", name, err)
	}
	out := make(map[int64]string, len(docs))
	for _, doc := range docs {
		id, ok := asInt64(doc[idColumn])
		if !ok {
			continue
		}
		if s, ok := doc["name"].(string); ok {
			out[id] = s
		}
	}
	return out, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func (s *MongoDBStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
