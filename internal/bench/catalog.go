package bench

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Case is one declarative catalog entry: the same logical query rendered
// per backend. Fields lists the projected columns in declared order; every
// renderer must produce exactly this projection. Sort orders carry explicit
// tie-breakers so position-based comparison is meaningful.
type Case struct {
	Name        string
	Description string
	Fields      []string

	// SQL renders the query for PostgreSQL; MySQL overrides it only when
	// the dialects genuinely diverge.
	SQL   func(limit int) string
	MySQL func(limit int) string

	Mongo  func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error)
	Cypher func(limit int) string
}

// MySQLQuery returns the MySQL rendering, falling back to the shared SQL.
func (c *Case) MySQLQuery(limit int) string {
	if c.MySQL != nil {
		return c.MySQL(limit)
	}
	return c.SQL(limit)
}

// reviewSubsetSize bounds the inner game subset of the review-stats case.
// The subset is ordered by primary key ascending so which games are chosen
// is reproducible on every backend.
const reviewSubsetSize = 20

// Catalog returns the seven cross-backend test cases.
func Catalog() []*Case {
	return []*Case{
		simpleSelectCase(),
		countByGenreCase(),
		gamesWithDevelopersCase(),
		reviewStatsCase(),
		developerStatsCase(),
		priceHistoryCase(),
		multiJoinCase(),
	}
}

func simpleSelectCase() *Case {
	return &Case{
		Name:        "simple_select_expensive_games",
		Description: "Select all games with price greater than 50",
		Fields:      []string{"appid", "name", "price"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT appid, name, price
				FROM games
				WHERE price > 50
				ORDER BY price DESC, appid
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			cursor, err := db.Collection("games").Find(ctx,
				bson.D{{Key: "price", Value: bson.D{{Key: "$gt", Value: 50}}}},
				options.Find().
					SetProjection(bson.D{
						{Key: "appid", Value: 1}, {Key: "name", Value: 1},
						{Key: "price", Value: 1}, {Key: "_id", Value: 0},
					}).
					SetSort(bson.D{{Key: "price", Value: -1}, {Key: "appid", Value: 1}}).
					SetLimit(int64(limit)))
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (g:Game)
				WHERE g.price > 50
				RETURN g.appid AS appid, g.name AS name, g.price AS price
				ORDER BY g.price DESC, g.appid
				LIMIT %d`, limit)
		},
	}
}

func countByGenreCase() *Case {
	return &Case{
		Name:        "count_games_by_genre",
		Description: "Count number of games for each genre",
		Fields:      []string{"genre", "game_count"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT g.name AS genre, COUNT(*) AS game_count
				FROM game_genres gg
				JOIN genres g ON gg.genre_id = g.genre_id
				GROUP BY g.name
				ORDER BY game_count DESC, g.name
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			pipeline := mongo.Pipeline{
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "genres"},
					{Key: "localField", Value: "genre_id"},
					{Key: "foreignField", Value: "genre_id"},
					{Key: "as", Value: "genre_info"},
				}}},
				{{Key: "$unwind", Value: "$genre_info"}},
				{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$genre_info.name"},
					{Key: "game_count", Value: bson.D{{Key: "$sum", Value: 1}}},
				}}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "genre", Value: "$_id"},
					{Key: "game_count", Value: 1},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "game_count", Value: -1}, {Key: "genre", Value: 1}}}},
				{{Key: "$limit", Value: limit}},
			}
			cursor, err := db.Collection("game_genres").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (g:Game)-[:HAS_GENRE_NORM]->(ge:GameGenre)
				RETURN ge.name AS genre, COUNT(g) AS game_count
				ORDER BY game_count DESC, genre
				LIMIT %d`, limit)
		},
	}
}

func gamesWithDevelopersCase() *Case {
	return &Case{
		Name:        "games_with_developers",
		Description: "Get games with their developer names",
		Fields:      []string{"appid", "game_name", "developer"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT g.appid, g.name AS game_name, d.name AS developer
				FROM games g
				JOIN game_developers gd ON g.appid = gd.game_appid
				JOIN developers d ON gd.developer_id = d.developer_id
				WHERE g.price > 30
				ORDER BY g.appid, d.name
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			pipeline := mongo.Pipeline{
				{{Key: "$match", Value: bson.D{{Key: "price", Value: bson.D{{Key: "$gt", Value: 30}}}}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "game_developers"},
					{Key: "localField", Value: "appid"},
					{Key: "foreignField", Value: "game_appid"},
					{Key: "as", Value: "dev_links"},
				}}},
				{{Key: "$unwind", Value: "$dev_links"}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "developers"},
					{Key: "localField", Value: "dev_links.developer_id"},
					{Key: "foreignField", Value: "developer_id"},
					{Key: "as", Value: "dev_info"},
				}}},
				{{Key: "$unwind", Value: "$dev_info"}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "appid", Value: 1},
					{Key: "game_name", Value: "$name"},
					{Key: "developer", Value: "$dev_info.name"},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "appid", Value: 1}, {Key: "developer", Value: 1}}}},
				{{Key: "$limit", Value: limit}},
			}
			cursor, err := db.Collection("games").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (g:Game)-[:DEVELOPED_BY_NORM]->(d:GameDeveloper)
				WHERE g.price > 30
				RETURN g.appid AS appid, g.name AS game_name, d.name AS developer
				ORDER BY g.appid, d.name
				LIMIT %d`, limit)
		},
	}
}

func reviewStatsCase() *Case {
	return &Case{
		Name:        "review_stats_by_game",
		Description: "Calculate review statistics per game",
		Fields:      []string{"app_id", "total_reviews", "positive_reviews", "avg_helpful_votes"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					r.app_id,
					COUNT(*) AS total_reviews,
					SUM(CASE WHEN r.recommended THEN 1 ELSE 0 END) AS positive_reviews,
					ROUND(AVG(r.votes_helpful), 2) AS avg_helpful_votes
				FROM reviews r
				WHERE r.app_id IN (
					SELECT appid FROM games WHERE price > 0 ORDER BY appid LIMIT %d
				)
				GROUP BY r.app_id
				ORDER BY total_reviews DESC, r.app_id
				LIMIT %d`, reviewSubsetSize, limit)
		},
		// MySQL rejects LIMIT inside an IN subquery; rewrite as a derived
		// table join.
		MySQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					r.app_id,
					COUNT(*) AS total_reviews,
					SUM(CASE WHEN r.recommended THEN 1 ELSE 0 END) AS positive_reviews,
					ROUND(AVG(r.votes_helpful), 2) AS avg_helpful_votes
				FROM reviews r
				JOIN (
					SELECT appid FROM games WHERE price > 0 ORDER BY appid LIMIT %d
				) AS limited_games ON r.app_id = limited_games.appid
				GROUP BY r.app_id
				ORDER BY total_reviews DESC, r.app_id
				LIMIT %d`, reviewSubsetSize, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			cursor, err := db.Collection("games").Find(ctx,
				bson.D{{Key: "price", Value: bson.D{{Key: "$gt", Value: 0}}}},
				options.Find().
					SetProjection(bson.D{{Key: "appid", Value: 1}, {Key: "_id", Value: 0}}).
					SetSort(bson.D{{Key: "appid", Value: 1}}).
					SetLimit(reviewSubsetSize))
			if err != nil {
				return nil, err
			}
			subset, err := drainCursor(ctx, cursor)
			if err != nil {
				return nil, err
			}
			gameIDs := make([]any, 0, len(subset))
			for _, row := range subset {
				gameIDs = append(gameIDs, row["appid"])
			}

			pipeline := mongo.Pipeline{
				{{Key: "$match", Value: bson.D{{Key: "app_id", Value: bson.D{{Key: "$in", Value: gameIDs}}}}}},
				{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$app_id"},
					{Key: "total_reviews", Value: bson.D{{Key: "$sum", Value: 1}}},
					{Key: "positive_reviews", Value: bson.D{
						{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{"$recommended", 1, 0}}}},
					}},
					{Key: "avg_helpful_votes", Value: bson.D{{Key: "$avg", Value: "$votes_helpful"}}},
				}}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "app_id", Value: "$_id"},
					{Key: "total_reviews", Value: 1},
					{Key: "positive_reviews", Value: 1},
					{Key: "avg_helpful_votes", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_helpful_votes", 2}}}},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "total_reviews", Value: -1}, {Key: "app_id", Value: 1}}}},
				{{Key: "$limit", Value: limit}},
			}
			agg, err := db.Collection("reviews").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, agg)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (g:Game)
				WHERE g.price > 0
				WITH g.appid AS game_appid
				ORDER BY game_appid
				LIMIT %d
				MATCH (r:Review {app_id: game_appid})
				WITH game_appid AS app_id,
					COUNT(r) AS total_reviews,
					SUM(CASE WHEN r.recommended THEN 1 ELSE 0 END) AS positive_reviews,
					ROUND(AVG(r.votes_helpful), 2) AS avg_helpful_votes
				ORDER BY total_reviews DESC, app_id
				RETURN app_id, total_reviews, positive_reviews, avg_helpful_votes
				LIMIT %d`, reviewSubsetSize, limit)
		},
	}
}

func developerStatsCase() *Case {
	return &Case{
		Name:        "developer_statistics",
		Description: "Get statistics for developers with most games",
		Fields: []string{
			"developer_id", "developer_name", "total_games",
			"avg_price", "total_positive_reviews", "total_negative_reviews",
		},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					ds.developer_id,
					d.name AS developer_name,
					ds.total_games,
					ROUND(CAST(ds.avg_game_price AS numeric), 2) AS avg_price,
					ds.total_positive_reviews,
					ds.total_negative_reviews
				FROM developer_stats ds
				JOIN developers d ON ds.developer_id = d.developer_id
				WHERE ds.total_games >= 3
				ORDER BY ds.total_games DESC, d.name, ds.developer_id
				LIMIT %d`, limit)
		},
		MySQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					ds.developer_id,
					d.name AS developer_name,
					ds.total_games,
					ROUND(ds.avg_game_price, 2) AS avg_price,
					ds.total_positive_reviews,
					ds.total_negative_reviews
				FROM developer_stats ds
				JOIN developers d ON ds.developer_id = d.developer_id
				WHERE ds.total_games >= 3
				ORDER BY ds.total_games DESC, d.name, ds.developer_id
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			pipeline := mongo.Pipeline{
				{{Key: "$match", Value: bson.D{{Key: "total_games", Value: bson.D{{Key: "$gte", Value: 3}}}}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "developers"},
					{Key: "localField", Value: "developer_id"},
					{Key: "foreignField", Value: "developer_id"},
					{Key: "as", Value: "dev_info"},
				}}},
				{{Key: "$unwind", Value: "$dev_info"}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "developer_id", Value: 1},
					{Key: "developer_name", Value: "$dev_info.name"},
					{Key: "total_games", Value: 1},
					{Key: "avg_price", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_game_price", 2}}}},
					{Key: "total_positive_reviews", Value: 1},
					{Key: "total_negative_reviews", Value: 1},
				}}},
				{{Key: "$sort", Value: bson.D{
					{Key: "total_games", Value: -1},
					{Key: "developer_name", Value: 1},
					{Key: "developer_id", Value: 1},
				}}},
				{{Key: "$limit", Value: limit}},
			}
			cursor, err := db.Collection("developer_stats").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (ds:DeveloperStats)
				WHERE ds.total_games >= 3
				MATCH (d:GameDeveloper {developer_id: ds.developer_id})
				RETURN ds.developer_id AS developer_id,
					d.name AS developer_name,
					ds.total_games AS total_games,
					ROUND(ds.avg_game_price, 2) AS avg_price,
					ds.total_positive_reviews AS total_positive_reviews,
					ds.total_negative_reviews AS total_negative_reviews
				ORDER BY ds.total_games DESC, d.name, ds.developer_id
				LIMIT %d`, limit)
		},
	}
}

func priceHistoryCase() *Case {
	return &Case{
		Name:        "price_history_analysis",
		Description: "Get price history for games with most price points",
		Fields:      []string{"game_appid", "price_points", "min_price", "max_price", "avg_price"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					ph.game_appid,
					COUNT(*) AS price_points,
					MIN(ph.price) AS min_price,
					MAX(ph.price) AS max_price,
					AVG(ph.price) AS avg_price
				FROM game_price_history ph
				GROUP BY ph.game_appid
				ORDER BY price_points DESC, ph.game_appid
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			pipeline := mongo.Pipeline{
				{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: "$game_appid"},
					{Key: "price_points", Value: bson.D{{Key: "$sum", Value: 1}}},
					{Key: "min_price", Value: bson.D{{Key: "$min", Value: "$price"}}},
					{Key: "max_price", Value: bson.D{{Key: "$max", Value: "$price"}}},
					{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
				}}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "game_appid", Value: "$_id"},
					{Key: "price_points", Value: 1},
					{Key: "min_price", Value: 1},
					{Key: "max_price", Value: 1},
					{Key: "avg_price", Value: 1},
				}}},
				{{Key: "$sort", Value: bson.D{{Key: "price_points", Value: -1}, {Key: "game_appid", Value: 1}}}},
				{{Key: "$limit", Value: limit}},
			}
			cursor, err := db.Collection("game_price_history").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (ph:GamePriceHistory)
				WITH ph.game_appid AS game_appid,
					COUNT(ph) AS price_points,
					MIN(ph.price) AS min_price,
					MAX(ph.price) AS max_price,
					AVG(ph.price) AS avg_price
				ORDER BY price_points DESC, game_appid
				RETURN game_appid, price_points, min_price, max_price, avg_price
				LIMIT %d`, limit)
		},
	}
}

func multiJoinCase() *Case {
	return &Case{
		Name:        "multi_join_game_details",
		Description: "Get games with developers, genres, and categories in one query",
		Fields:      []string{"appid", "game_name", "developer", "genre", "category"},
		SQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					g.appid,
					g.name AS game_name,
					d.name AS developer,
					ge.name AS genre,
					c.name AS category
				FROM games g
				LEFT JOIN game_developers gd ON g.appid = gd.game_appid
				LEFT JOIN developers d ON gd.developer_id = d.developer_id
				LEFT JOIN game_genres gg ON g.appid = gg.game_appid
				LEFT JOIN genres ge ON gg.genre_id = ge.genre_id
				LEFT JOIN game_categories gc ON g.appid = gc.game_appid
				LEFT JOIN categories c ON gc.category_id = c.category_id
				WHERE g.price BETWEEN 20 AND 40
				ORDER BY g.appid, d.name NULLS FIRST, ge.name NULLS FIRST, c.name NULLS FIRST
				LIMIT %d`, limit)
		},
		// MySQL sorts NULLs first on ascending order already.
		MySQL: func(limit int) string {
			return fmt.Sprintf(`
				SELECT
					g.appid,
					g.name AS game_name,
					d.name AS developer,
					ge.name AS genre,
					c.name AS category
				FROM games g
				LEFT JOIN game_developers gd ON g.appid = gd.game_appid
				LEFT JOIN developers d ON gd.developer_id = d.developer_id
				LEFT JOIN game_genres gg ON g.appid = gg.game_appid
				LEFT JOIN genres ge ON gg.genre_id = ge.genre_id
				LEFT JOIN game_categories gc ON g.appid = gc.game_appid
				LEFT JOIN categories c ON gc.category_id = c.category_id
				WHERE g.price BETWEEN 20 AND 40
				ORDER BY g.appid, d.name, ge.name, c.name
				LIMIT %d`, limit)
		},
		Mongo: func(ctx context.Context, db *mongo.Database, limit int) ([]Row, error) {
			preserve := bson.D{{Key: "preserveNullAndEmptyArrays", Value: true}}
			pipeline := mongo.Pipeline{
				{{Key: "$match", Value: bson.D{{Key: "price", Value: bson.D{
					{Key: "$gte", Value: 20}, {Key: "$lte", Value: 40},
				}}}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "game_developers"},
					{Key: "localField", Value: "appid"},
					{Key: "foreignField", Value: "game_appid"},
					{Key: "as", Value: "dev_links"},
				}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "game_genres"},
					{Key: "localField", Value: "appid"},
					{Key: "foreignField", Value: "game_appid"},
					{Key: "as", Value: "genre_links"},
				}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "game_categories"},
					{Key: "localField", Value: "appid"},
					{Key: "foreignField", Value: "game_appid"},
					{Key: "as", Value: "category_links"},
				}}},
				{{Key: "$unwind", Value: append(bson.D{{Key: "path", Value: "$dev_links"}}, preserve...)}},
				{{Key: "$unwind", Value: append(bson.D{{Key: "path", Value: "$genre_links"}}, preserve...)}},
				{{Key: "$unwind", Value: append(bson.D{{Key: "path", Value: "$category_links"}}, preserve...)}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "developers"},
					{Key: "localField", Value: "dev_links.developer_id"},
					{Key: "foreignField", Value: "developer_id"},
					{Key: "as", Value: "dev_info"},
				}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "genres"},
					{Key: "localField", Value: "genre_links.genre_id"},
					{Key: "foreignField", Value: "genre_id"},
					{Key: "as", Value: "genre_info"},
				}}},
				{{Key: "$lookup", Value: bson.D{
					{Key: "from", Value: "categories"},
					{Key: "localField", Value: "category_links.category_id"},
					{Key: "foreignField", Value: "category_id"},
					{Key: "as", Value: "category_info"},
				}}},
				{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "appid", Value: 1},
					{Key: "game_name", Value: "$name"},
					{Key: "developer", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$dev_info.name", 0}}}},
					{Key: "genre", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$genre_info.name", 0}}}},
					{Key: "category", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$category_info.name", 0}}}},
				}}},
				{{Key: "$sort", Value: bson.D{
					{Key: "appid", Value: 1}, {Key: "developer", Value: 1},
					{Key: "genre", Value: 1}, {Key: "category", Value: 1},
				}}},
				{{Key: "$limit", Value: limit}},
			}
			cursor, err := db.Collection("games").Aggregate(ctx, pipeline)
			if err != nil {
				return nil, err
			}
			return drainCursor(ctx, cursor)
		},
		// coalesce to empty string so absent names sort first, matching the
		// relational and document renderings.
		Cypher: func(limit int) string {
			return fmt.Sprintf(`
				MATCH (g:Game)
				WHERE g.price >= 20 AND g.price <= 40
				OPTIONAL MATCH (g)-[:DEVELOPED_BY_NORM]->(d:GameDeveloper)
				OPTIONAL MATCH (g)-[:HAS_GENRE_NORM]->(ge:GameGenre)
				OPTIONAL MATCH (g)-[:HAS_CATEGORY_NORM]->(c:GameCategory)
				RETURN g.appid AS appid,
					g.name AS game_name,
					d.name AS developer,
					ge.name AS genre,
					c.name AS category
				ORDER BY g.appid, coalesce(d.name, ''), coalesce(ge.name, ''), coalesce(c.name, '')
				LIMIT %d`, limit)
		},
	}
}

func drainCursor(ctx context.Context, cursor *mongo.Cursor) ([]Row, error) {
	defer cursor.Close(ctx)
	var rows []Row
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
