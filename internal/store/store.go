package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Projector persists canonical tables into one storage engine. A projected
// table must round-trip: reading a row back by primary key and normalizing
// it yields the row that went in.
type Projector interface {
	Name() string
	ProjectTable(ctx context.Context, t model.Table, batchSize int) error
	Drop(ctx context.Context, names []string) error
	Count(ctx context.Context, name string) (int64, error)
	SampleIDs(ctx context.Context, name, idColumn string, n int) (map[int64]string, error)
	Close(ctx context.Context) error
}

// Open connects the adapter for the named backend.
func Open(name string, dsn config.DSN, log *logger.Logger) (Projector, error) {
	switch name {
	case config.BackendPostgres:
		return NewPostgres(dsn.Postgres, log)
	case config.BackendMySQL:
		return NewMySQL(dsn.MySQL, log)
	case config.BackendMongoDB:
		return NewMongoDB(dsn.MongoURI, dsn.MongoDatabase, log)
	case config.BackendNeo4j:
		return NewNeo4j(dsn, log)
	}
	return nil, fmt.Errorf("store: unknown backend %q", name)
}

// columnsOf derives a stable column order for a table: primary key columns
// in declared order, then the remaining columns sorted by name. Rows are
// maps, so the order has to be reconstructed for DDL and inserts.
func columnsOf(t model.Table) []string {
	seen := make(map[string]bool)
	cols := make([]string, 0, 8)
	for _, pk := range t.PrimaryKey {
		cols = append(cols, pk)
		seen[pk] = true
	}
	rest := make(map[string]bool)
	for _, row := range t.Rows {
		for k := range row {
			if !seen[k] && !rest[k] {
				rest[k] = true
			}
		}
	}
	tail := make([]string, 0, len(rest))
	for k := range rest {
		tail = append(tail, k)
	}
	sort.Strings(tail)
	return append(cols, tail...)
}

func isJSONColumn(t model.Table, col string) bool {
	for _, c := range t.JSONColumns {
		if c == col {
			return true
		}
	}
	return false
}

// batches cuts [0, n) into half-open index ranges of at most size.
func batches(n, size int) [][2]int {
	if size <= 0 {
		size = 1000
	}
	var out [][2]int
	for i := 0; i < n; i += size {
		end := i + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{i, end})
	}
	return out
}
