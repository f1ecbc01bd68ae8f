package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// sqlDialect captures the few points where the two relational engines
// diverge: identifier quoting, type names and how a JSON parameter is bound.
type sqlDialect struct {
	quote     func(string) string
	jsonType  string
	floatType string
	timeType  string
	jsonParam string
}

// SQLStore is the shared gorm-backed adapter for PostgreSQL and MySQL.
type SQLStore struct {
	name string
	db   *gorm.DB
	dial sqlDialect
	log  *logger.Logger
}

func (s *SQLStore) Name() string { return s.name }

// DB exposes the underlying handle for raw catalog queries.
func (s *SQLStore) DB() *gorm.DB { return s.db }

func (s *SQLStore) ProjectTable(ctx context.Context, t model.Table, batchSize int) error {
	if err := s.createTable(ctx, t); err != nil {
		return fmt.Errorf("store: %s: create %s: %w", s.name, t.Name, err)
	}
	cols := columnsOf(t)
	for _, b := range batches(len(t.Rows), batchSize) {
		if err := s.insertBatch(ctx, t, cols, t.Rows[b[0]:b[1]]); err != nil {
			return fmt.Errorf("store: %s: insert %s rows %d..%d: %w", s.name, t.Name, b[0], b[1], err)
		}
	}
	s.log.Info("table projected", "table", t.Name, "rows", len(t.Rows))
	return nil
}

func (s *SQLStore) createTable(ctx context.Context, t model.Table) error {
	cols := columnsOf(t)
	defs := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		defs = append(defs, fmt.Sprintf("%s %s", s.dial.quote(col), s.columnType(t, col)))
	}
	if len(t.PrimaryKey) > 0 {
		quoted := make([]string, len(t.PrimaryKey))
		for i, pk := range t.PrimaryKey {
			quoted[i] = s.dial.quote(pk)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.dial.quote(t.Name), strings.Join(defs, ", "))
	return s.db.WithContext(ctx).Exec(ddl).Error
}

// columnType infers the SQL type from the first non-nil value in the column.
// Columns that are nil in every row fall back to TEXT.
func (s *SQLStore) columnType(t model.Table, col string) string {
	if isJSONColumn(t, col) {
		return s.dial.jsonType
	}
	for _, row := range t.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case int64, int:
			return "BIGINT"
		case float64:
			return s.dial.floatType
		case bool:
			return "BOOLEAN"
		case time.Time:
			return s.dial.timeType
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func (s *SQLStore) insertBatch(ctx context.Context, t model.Table, cols []string, rows []model.Row) error {
	if len(rows) == 0 {
		return nil
	}
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = s.dial.quote(col)
		params[i] = "?"
		if isJSONColumn(t, col) {
			params[i] = s.dial.jsonParam
		}
	}
	tuple := "(" + strings.Join(params, ", ") + ")"

	tuples := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(cols))
	for i, row := range rows {
		tuples[i] = tuple
		for _, col := range cols {
			v := row[col]
			if isJSONColumn(t, col) && v != nil {
				raw, err := json.Marshal(v)
				if err != nil {
					return fmt.Errorf("encode %s: %w", col, err)
				}
				v = string(raw)
			}
			args = append(args, v)
		}
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		s.dial.quote(t.Name), strings.Join(quoted, ", "), strings.Join(tuples, ", "))
	return s.db.WithContext(ctx).Exec(stmt, args...).Error
}

func (s *SQLStore) Drop(ctx context.Context, names []string) error {
	for _, name := range names {
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", s.dial.quote(name))
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("store: %s: drop %s: %w", s.name, name, err)
		}
	}
	return nil
}

func (s *SQLStore) Count(ctx context.Context, name string) (int64, error) {
	var n int64
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s", s.dial.quote(name))
	if err := s.db.WithContext(ctx).Raw(stmt).Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("store: %s: count %s: %w", s.name, name, err)
	}
	return n, nil
}

// SampleIDs returns id -> name for the first n rows of a dimension table,
// ordered by id.
func (s *SQLStore) SampleIDs(ctx context.Context, name, idColumn string, n int) (map[int64]string, error) {
	stmt := fmt.Sprintf("SELECT %s AS id, %s AS name FROM %s ORDER BY %s LIMIT %d",
		s.dial.quote(idColumn), s.dial.quote("name"), s.dial.quote(name), s.dial.quote(idColumn), n)
	var rows []struct {
		ID   int64
		Name string
	}
	if err := s.db.WithContext(ctx).Raw(stmt).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: %s: sample %s: %w", s.name, name, err)
	}
	out := make(map[int64]string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Name
	}
	return out, nil
}

func (s *SQLStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
