package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/envutil"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Node labels per table. Tables absent here are projected as relationships.
var neo4jNodeLabels = map[string]string{
	"games":               "Game",
	"reviews":             "Review",
	"developers":          "GameDeveloper",
	"publishers":          "GamePublisher",
	"genres":              "GameGenre",
	"categories":          "GameCategory",
	"tags":                "GameTag",
	"user_profiles":       "UserProfile",
	"game_review_summary": "GameReviewSummary",
	"developer_stats":     "DeveloperStats",
	"game_price_history":  "GamePriceHistory",
}

// Secondary property indexes, mirroring the document projection.
var neo4jIndexes = map[string][]string{
	"games":   {"name", "release_date", "price"},
	"reviews": {"app_id", "recommended", "timestamp_created"},
}

// Association tables become typed relationships between the Game node and
// the dimension node, so graph traversals stay graph-native instead of
// joining on foreign-key properties.
type neo4jRelation struct {
	relType     string
	targetLabel string
	targetKey   string
	props       []string
}

var neo4jRelations = map[string]neo4jRelation{
	"game_developers": {relType: "DEVELOPED_BY_NORM", targetLabel: "GameDeveloper", targetKey: "developer_id"},
	"game_publishers": {relType: "PUBLISHED_BY_NORM", targetLabel: "GamePublisher", targetKey: "publisher_id"},
	"game_genres":     {relType: "HAS_GENRE_NORM", targetLabel: "GameGenre", targetKey: "genre_id"},
	"game_categories": {relType: "HAS_CATEGORY_NORM", targetLabel: "GameCategory", targetKey: "category_id"},
	"game_tags":       {relType: "HAS_TAG_NORM", targetLabel: "GameTag", targetKey: "tag_id", props: []string{"vote_count"}},
}

// Neo4jStore projects tables as nodes and relationships.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

func NewNeo4j(dsn config.DSN, logg *logger.Logger) (*Neo4jStore, error) {
	timeoutSec := envutil.Int("NEO4J_TIMEOUT_SECONDS", 10)
	maxPool := envutil.Int("NEO4J_MAX_POOL_SIZE", 50)

	auth := neo4j.BasicAuth(dsn.Neo4jUser, dsn.Neo4jPassword, "")
	driver, err := neo4j.NewDriverWithContext(dsn.Neo4jURI, auth, func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = maxPool
		cfg.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("store: neo4j: init driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("store: neo4j: verify connectivity: %w", err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: dsn.Neo4jDatabase,
		log:      logg.With("service", "Neo4jStore"),
	}, nil
}

func (s *Neo4jStore) Name() string { return config.BackendNeo4j }

// Driver exposes the handle for catalog Cypher.
func (s *Neo4jStore) Driver() neo4j.DriverWithContext { return s.driver }

// Database returns the session database name (empty for the default).
func (s *Neo4jStore) Database() string { return s.database }

func (s *Neo4jStore) ProjectTable(ctx context.Context, t model.Table, batchSize int) error {
	if rel, ok := neo4jRelations[t.Name]; ok {
		return s.projectRelationships(ctx, t, rel, batchSize)
	}
	return s.projectNodes(ctx, t, batchSize)
}

func (s *Neo4jStore) projectNodes(ctx context.Context, t model.Table, batchSize int) error {
	label, ok := neo4jNodeLabels[t.Name]
	if !ok {
		return fmt.Errorf("store: neo4j: no label mapping for table %s", t.Name)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	if len(t.PrimaryKey) == 1 {
		stmt := fmt.Sprintf(
			"CREATE CONSTRAINT %s_%s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			strings.ToLower(label), t.PrimaryKey[0], label, t.PrimaryKey[0])
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("store: neo4j: constraint %s: %w", label, err)
		}
	}

	merge := make([]string, len(t.PrimaryKey))
	for i, pk := range t.PrimaryKey {
		merge[i] = fmt.Sprintf("%s: record.%s", pk, pk)
	}
	query := fmt.Sprintf(
		"UNWIND $batch AS record MERGE (n:%s {%s}) SET n += record",
		label, strings.Join(merge, ", "))

	for _, b := range batches(len(t.Rows), batchSize) {
		batch := make([]map[string]any, 0, b[1]-b[0])
		for _, row := range t.Rows[b[0]:b[1]] {
			batch = append(batch, neo4jRecord(t, row))
		}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("store: neo4j: merge %s rows %d..%d: %w", t.Name, b[0], b[1], err)
		}
	}

	for _, prop := range neo4jIndexes[t.Name] {
		stmt := fmt.Sprintf("CREATE INDEX %s_%s IF NOT EXISTS FOR (n:%s) ON (n.%s)",
			strings.ToLower(label), prop, label, prop)
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("store: neo4j: index %s.%s: %w", label, prop, err)
		}
	}

	if t.Name == "reviews" {
		if err := s.linkReviews(ctx, session); err != nil {
			return err
		}
	}

	s.log.Info("nodes projected", "table", t.Name, "label", label, "rows", len(t.Rows))
	return nil
}

// linkReviews connects every Review to its Game once both node sets exist.
func (s *Neo4jStore) linkReviews(ctx context.Context, session neo4j.SessionWithContext) error {
	query := "MATCH (r:Review) MATCH (g:Game {appid: r.app_id}) MERGE (r)-[:REVIEWED]->(g)"
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, nil)
	})
	if err != nil {
		return fmt.Errorf("store: neo4j: link reviews: %w", err)
	}
	return nil
}

func (s *Neo4jStore) projectRelationships(ctx context.Context, t model.Table, rel neo4jRelation, batchSize int) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	var set string
	if len(rel.props) > 0 {
		assigns := make([]string, len(rel.props))
		for i, p := range rel.props {
			assigns[i] = fmt.Sprintf("r.%s = rel.%s", p, p)
		}
		set = " SET " + strings.Join(assigns, ", ")
	}
	query := fmt.Sprintf(
		"UNWIND $batch AS rel MATCH (source:Game {appid: rel.game_appid}) MATCH (target:%s {%s: rel.%s}) MERGE (source)-[r:%s]->(target)%s",
		rel.targetLabel, rel.targetKey, rel.targetKey, rel.relType, set)

	for _, b := range batches(len(t.Rows), batchSize) {
		batch := make([]map[string]any, 0, b[1]-b[0])
		for _, row := range t.Rows[b[0]:b[1]] {
			batch = append(batch, map[string]any(row))
		}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, map[string]any{"batch": batch})
		})
		if err != nil {
			return fmt.Errorf("store: neo4j: relate %s rows %d..%d: %w", t.Name, b[0], b[1], err)
		}
	}

	s.log.Info("relationships projected", "table", t.Name, "type", rel.relType, "rows", len(t.Rows))
	return nil
}

// neo4jRecord adapts a row for node properties: map-valued JSON columns are
// stored as JSON strings, lists of primitives stay native.
func neo4jRecord(t model.Table, row model.Row) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		if isJSONColumn(t, k) {
			switch v.(type) {
			case nil, []string:
			default:
				if raw, err := json.Marshal(v); err == nil {
					v = string(raw)
				}
			}
		}
		out[k] = v
	}
	return out
}

func (s *Neo4jStore) Drop(ctx context.Context, names []string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	for _, name := range names {
		var query string
		if rel, ok := neo4jRelations[name]; ok {
			query = fmt.Sprintf("MATCH ()-[r:%s]->() DELETE r", rel.relType)
		} else if label, ok := neo4jNodeLabels[name]; ok {
			query = fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", label)
		} else {
			return fmt.Errorf("store: neo4j: no mapping for table %s", name)
		}
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			return tx.Run(ctx, query, nil)
		})
		if err != nil {
			return fmt.Errorf("store: neo4j: drop %s: %w", name, err)
		}
	}
	return nil
}

func (s *Neo4jStore) Count(ctx context.Context, name string) (int64, error) {
	var query string
	if rel, ok := neo4jRelations[name]; ok {
		query = fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r) AS count", rel.relType)
	} else if label, ok := neo4jNodeLabels[name]; ok {
		query = fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", label)
	} else {
		return 0, fmt.Errorf("store: neo4j: no mapping for table %s", name)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return 0, fmt.Errorf("store: neo4j: count %s: %w", name, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: neo4j: count %s: %w", name, err)
	}
	n, _ := record.Get("count")
	count, ok := n.(int64)
	if !ok {
		return 0, fmt.Errorf("store: neo4j: count %s: unexpected result %T", name, n)
	}
	return count, nil
}

func (s *Neo4jStore) SampleIDs(ctx context.Context, name, idColumn string, n int) (map[int64]string, error) {
	label, ok := neo4jNodeLabels[name]
	if !ok {
		return nil, fmt.Errorf("store: neo4j: no mapping for table %s", name)
	}
	query := fmt.Sprintf("MATCH (d:%s) RETURN d.%s AS id, d.name AS name ORDER BY id LIMIT %d",
		label, idColumn, n)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("store: neo4j: sample %s: %w", name, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: neo4j: sample %s: %w", name, err)
	}
	out := make(map[int64]string, len(records))
	for _, rec := range records {
		rawID, _ := rec.Get("id")
		rawName, _ := rec.Get("name")
		id, ok := rawID.(int64)
		if !ok {
			continue
		}
		if s, ok := rawName.(string); ok {
			out[id] = s
		}
	}
	return out, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	return err
}
