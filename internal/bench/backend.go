package bench

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/store"
)

// Row is one materialized result row.
type Row = model.Row

// Backend executes catalog cases against one engine. Run returns the
// materialized rows or an error; an empty result is never conflated with a
// failure.
type Backend interface {
	Name() string
	Run(ctx context.Context, c *Case, limit int) ([]Row, error)
	Close(ctx context.Context) error
}

// OpenBackend wraps a projector's connection as a query backend.
func OpenBackend(p store.Projector) (Backend, error) {
	switch s := p.(type) {
	case *store.SQLStore:
		return &sqlBackend{store: s}, nil
	case *store.MongoDBStore:
		return &mongoBackend{store: s}, nil
	case *store.Neo4jStore:
		return &graphBackend{store: s}, nil
	}
	return nil, fmt.Errorf("bench: no backend for projector %s", p.Name())
}

type sqlBackend struct {
	store *store.SQLStore
}

func (b *sqlBackend) Name() string { return b.store.Name() }

func (b *sqlBackend) Run(ctx context.Context, c *Case, limit int) ([]Row, error) {
	query := c.SQL(limit)
	if b.store.Name() == config.BackendMySQL {
		query = c.MySQLQuery(limit)
	}
	var raw []map[string]interface{}
	if err := b.store.DB().WithContext(ctx).Raw(query).Scan(&raw).Error; err != nil {
		return nil, fmt.Errorf("bench: %s: %s: %w", b.store.Name(), c.Name, err)
	}
	rows := make([]Row, len(raw))
	for i, r := range raw {
		rows[i] = Row(r)
	}
	return rows, nil
}

func (b *sqlBackend) Close(ctx context.Context) error { return b.store.Close(ctx) }

type mongoBackend struct {
	store *store.MongoDBStore
}

func (b *mongoBackend) Name() string { return config.BackendMongoDB }

func (b *mongoBackend) Run(ctx context.Context, c *Case, limit int) ([]Row, error) {
	rows, err := c.Mongo(ctx, b.store.Database(), limit)
	if err != nil {
		return nil, fmt.Errorf("bench: mongodb: %s: %w", c.Name, err)
	}
	return rows, nil
}

func (b *mongoBackend) Close(ctx context.Context) error { return b.store.Close(ctx) }

type graphBackend struct {
	store *store.Neo4jStore
}

func (b *graphBackend) Name() string { return config.BackendNeo4j }

func (b *graphBackend) Run(ctx context.Context, c *Case, limit int) ([]Row, error) {
	session := b.store.Driver().NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: b.store.Database(),
	})
	defer session.Close(ctx)

	collected, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, c.Cypher(limit), nil)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("bench: neo4j: %s: %w", c.Name, err)
	}

	records := collected.([]*neo4j.Record)
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(rec.Keys))
		for j, key := range rec.Keys {
			row[key] = rec.Values[j]
		}
		rows[i] = row
	}
	return rows, nil
}

func (b *graphBackend) Close(ctx context.Context) error { return b.store.Close(ctx) }
