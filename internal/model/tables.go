package model

import (
	"time"

	"github.com/KonSprin/ztbd/internal/dataset"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Row is one generic record handed to a projection adapter.
type Row = map[string]any

// Table is the unit of the projection contract: a named row set with its
// primary key and the columns that hold nested JSON values. Adapters must
// persist rows such that a primary-key lookup round-trips through the row
// normalizer unchanged.
type Table struct {
	Name        string
	PrimaryKey  []string
	JSONColumns []string
	Rows        []Row
}

// Model is the full canonical output of one build: every derived table plus
// the lookups used to construct them. Build-once, read-only.
type Model struct {
	Developers []Dimension
	Publishers []Dimension
	Genres     []Dimension
	Categories []Dimension
	Tags       []Tag

	DeveloperLookup Lookup
	PublisherLookup Lookup
	GenreLookup     Lookup
	CategoryLookup  Lookup
	TagLookup       Lookup

	GameDevelopers []GameAssociation
	GamePublishers []GameAssociation
	GameGenres     []GameAssociation
	GameCategories []GameAssociation
	GameTags       []GameTag

	UserProfiles    []UserProfile
	ReviewSummaries []GameReviewSummary
	DeveloperStats  []DeveloperStats
	PriceHistory    []PricePoint
}

// Build derives the complete canonical model from the source tables.
// Dimensions are finalized before associations are constructed so that
// every id comes from the same immutable lookup.
func Build(games []dataset.Game, reviews []dataset.Review, monthsBack int, baseDate time.Time, log *logger.Logger) *Model {
	m := &Model{}

	m.Developers, m.DeveloperLookup = ExtractDimension(games, Developers, log)
	m.Publishers, m.PublisherLookup = ExtractDimension(games, Publishers, log)
	m.Genres, m.GenreLookup = ExtractDimension(games, Genres, log)
	m.Categories, m.CategoryLookup = ExtractDimension(games, Categories, log)
	m.Tags, m.TagLookup = ExtractTags(games, log)

	m.GameDevelopers = BuildAssociations(games, Developers, m.DeveloperLookup, log)
	m.GamePublishers = BuildAssociations(games, Publishers, m.PublisherLookup, log)
	m.GameGenres = BuildAssociations(games, Genres, m.GenreLookup, log)
	m.GameCategories = BuildAssociations(games, Categories, m.CategoryLookup, log)
	m.GameTags = BuildTagAssociations(games, m.TagLookup, log)

	m.UserProfiles = BuildUserProfiles(reviews, log)
	m.ReviewSummaries = BuildGameReviewSummaries(reviews, log)
	m.DeveloperStats = BuildDeveloperStats(games, m.GameDevelopers, log)
	m.PriceHistory = SimulatePriceHistory(games, monthsBack, baseDate, log)

	return m
}

// Tables flattens the source tables and every canonical output into the
// generic projection form. Ordering matters for the graph projection:
// games and dimensions precede the associations that reference them.
func (m *Model) Tables(games []dataset.Game, reviews []dataset.Review) []Table {
	tables := []Table{
		{
			Name:        "games",
			PrimaryKey:  []string{"appid"},
			JSONColumns: []string{"developers", "publishers", "genres", "categories", "tags"},
			Rows:        gameRows(games),
		},
		{
			Name:       "reviews",
			PrimaryKey: []string{"review_id"},
			Rows:       reviewRows(reviews),
		},
		dimensionTable("developers", "developer_id", m.Developers),
		dimensionTable("publishers", "publisher_id", m.Publishers),
		dimensionTable("genres", "genre_id", m.Genres),
		dimensionTable("categories", "category_id", m.Categories),
		{
			Name:       "tags",
			PrimaryKey: []string{"tag_id"},
			Rows:       tagRows(m.Tags),
		},
		associationTable("game_developers", "developer_id", m.GameDevelopers),
		associationTable("game_publishers", "publisher_id", m.GamePublishers),
		associationTable("game_genres", "genre_id", m.GameGenres),
		associationTable("game_categories", "category_id", m.GameCategories),
		{
			Name:       "game_tags",
			PrimaryKey: []string{"game_appid", "tag_id"},
			Rows:       gameTagRows(m.GameTags),
		},
		{
			Name:       "user_profiles",
			PrimaryKey: []string{"author_steamid"},
			Rows:       userProfileRows(m.UserProfiles),
		},
		{
			Name:       "game_review_summary",
			PrimaryKey: []string{"game_appid"},
			Rows:       reviewSummaryRows(m.ReviewSummaries),
		},
		{
			Name:       "developer_stats",
			PrimaryKey: []string{"developer_id"},
			Rows:       developerStatsRows(m.DeveloperStats),
		},
		{
			Name:       "game_price_history",
			PrimaryKey: []string{"game_appid", "recorded_date"},
			Rows:       priceHistoryRows(m.PriceHistory),
		},
	}
	return tables
}

func gameRows(games []dataset.Game) []Row {
	rows := make([]Row, len(games))
	for i, g := range games {
		rows[i] = Row{
			"appid":                    g.AppID,
			"name":                     g.Name,
			"release_date":             g.ReleaseDate,
			"price":                    g.Price,
			"discount":                 g.Discount,
			"metacritic_score":         g.MetacriticScore,
			"positive":                 g.Positive,
			"negative":                 g.Negative,
			"average_playtime_forever": g.AveragePlaytimeForever,
			"developers":               g.Developers,
			"publishers":               g.Publishers,
			"genres":                   g.Genres,
			"categories":               g.Categories,
			"tags":                     g.Tags,
		}
	}
	return rows
}

func reviewRows(reviews []dataset.Review) []Row {
	rows := make([]Row, len(reviews))
	for i, r := range reviews {
		rows[i] = Row{
			"review_id":                   r.ReviewID,
			"app_id":                      r.AppID,
			"author_steamid":              r.AuthorSteamID,
			"language":                    r.Language,
			"review":                      r.Review,
			"timestamp_created":           r.TimestampCreated,
			"timestamp_updated":           r.TimestampUpdated,
			"recommended":                 r.Recommended,
			"votes_helpful":               r.VotesHelpful,
			"steam_purchase":              r.SteamPurchase,
			"written_during_early_access": r.WrittenDuringEarlyAccess,
			"author_num_games_owned":      r.AuthorNumGamesOwned,
			"author_num_reviews":          r.AuthorNumReviews,
			"author_playtime_forever":     r.AuthorPlaytimeForever,
			"author_playtime_at_review":   r.AuthorPlaytimeAtReview,
		}
	}
	return rows
}

func dimensionTable(name, idColumn string, dims []Dimension) Table {
	rows := make([]Row, len(dims))
	for i, d := range dims {
		rows[i] = Row{idColumn: d.ID, "name": d.Name}
	}
	return Table{Name: name, PrimaryKey: []string{idColumn}, Rows: rows}
}

func tagRows(tags []Tag) []Row {
	rows := make([]Row, len(tags))
	for i, t := range tags {
		rows[i] = Row{"tag_id": t.ID, "name": t.Name, "total_votes": t.TotalVotes}
	}
	return rows
}

func associationTable(name, idColumn string, assocs []GameAssociation) Table {
	rows := make([]Row, len(assocs))
	for i, a := range assocs {
		rows[i] = Row{"game_appid": a.GameAppID, idColumn: a.DimensionID}
	}
	return Table{Name: name, PrimaryKey: []string{"game_appid", idColumn}, Rows: rows}
}

func gameTagRows(assocs []GameTag) []Row {
	rows := make([]Row, len(assocs))
	for i, a := range assocs {
		rows[i] = Row{"game_appid": a.GameAppID, "tag_id": a.TagID, "vote_count": a.VoteCount}
	}
	return rows
}

func userProfileRows(profiles []UserProfile) []Row {
	rows := make([]Row, len(profiles))
	for i, p := range profiles {
		rows[i] = Row{
			"author_steamid":         p.AuthorSteamID,
			"num_games_owned":        p.NumGamesOwned,
			"num_reviews":            p.NumReviews,
			"total_playtime_minutes": p.TotalPlaytimeMinutes,
			"first_review_date":      p.FirstReviewDate,
			"last_review_date":       p.LastReviewDate,
			"positive_review_count":  p.PositiveReviewCount,
			"negative_review_count":  p.NegativeReviewCount,
			"avg_review_length":      p.AvgReviewLength,
			"helpful_votes_received": p.HelpfulVotesReceived,
		}
	}
	return rows
}

func reviewSummaryRows(summaries []GameReviewSummary) []Row {
	rows := make([]Row, len(summaries))
	for i, s := range summaries {
		var lang any
		if s.MostCommonLanguage != nil {
			lang = *s.MostCommonLanguage
		}
		rows[i] = Row{
			"game_appid":                s.GameAppID,
			"total_reviews":             s.TotalReviews,
			"positive_reviews":          s.PositiveReviews,
			"negative_reviews":          s.NegativeReviews,
			"avg_playtime_at_review":    s.AvgPlaytimeAtReview,
			"median_playtime_at_review": s.MedianPlaytimeAtReview,
			"avg_helpful_votes":         s.AvgHelpfulVotes,
			"most_common_language":      lang,
			"steam_purchase_ratio":      s.SteamPurchaseRatio,
			"early_access_review_count": s.EarlyAccessReviewCount,
		}
	}
	return rows
}

func developerStatsRows(stats []DeveloperStats) []Row {
	rows := make([]Row, len(stats))
	for i, s := range stats {
		var genre any
		if s.MostCommonGenre != nil {
			genre = *s.MostCommonGenre
		}
		rows[i] = Row{
			"developer_id":           s.DeveloperID,
			"total_games":            s.TotalGames,
			"avg_game_price":         s.AvgGamePrice,
			"avg_metacritic_score":   s.AvgMetacriticScore,
			"total_positive_reviews": s.TotalPositiveReviews,
			"total_negative_reviews": s.TotalNegativeReviews,
			"avg_playtime":           s.AvgPlaytime,
			"most_common_genre":      genre,
		}
	}
	return rows
}

func priceHistoryRows(points []PricePoint) []Row {
	rows := make([]Row, len(points))
	for i, p := range points {
		rows[i] = Row{
			"game_appid":       p.GameAppID,
			"price":            p.Price,
			"discount_percent": p.DiscountPercent,
			"recorded_date":    p.RecordedDate,
		}
	}
	return rows
}
