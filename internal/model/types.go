package model

import "time"

// Dimension is one deduplicated value of a denormalized column, keyed by a
// deterministic surrogate id. Ids are assigned by sorting the distinct
// names lexicographically and numbering from 1, which is what lets every
// backend projection reproduce identical keys independently.
type Dimension struct {
	ID   int64
	Name string
}

// Tag is the tags dimension; unlike the others it carries the vote total
// summed across all games.
type Tag struct {
	ID         int64
	Name       string
	TotalVotes int64
}

// Lookup maps a dimension name to its surrogate id. It is built once from
// the finalized dimension table and threaded into association construction;
// it must never be mutated afterwards.
type Lookup map[string]int64

// GameAssociation links a game to one dimension value (developer,
// publisher, genre or category). Composite key (GameAppID, DimensionID).
type GameAssociation struct {
	GameAppID   int64
	DimensionID int64
}

// GameTag links a game to a tag with that game's vote count.
type GameTag struct {
	GameAppID int64
	TagID     int64
	VoteCount int64
}

// UserProfile aggregates all reviews written by one author.
type UserProfile struct {
	AuthorSteamID        int64
	NumGamesOwned        int64
	NumReviews           int64
	TotalPlaytimeMinutes float64
	FirstReviewDate      time.Time
	LastReviewDate       time.Time
	PositiveReviewCount  int64
	NegativeReviewCount  int64
	AvgReviewLength      float64
	HelpfulVotesReceived int64
}

// GameReviewSummary aggregates all reviews of one game. Only games with at
// least one review get a summary row.
type GameReviewSummary struct {
	GameAppID              int64
	TotalReviews           int64
	PositiveReviews        int64
	NegativeReviews        int64
	AvgPlaytimeAtReview    float64
	MedianPlaytimeAtReview float64
	AvgHelpfulVotes        float64
	MostCommonLanguage     *string
	SteamPurchaseRatio     float64
	EarlyAccessReviewCount int64
}

// DeveloperStats aggregates the games of one developer. The positive and
// negative totals come from the platform-reported counters on the game row,
// not from the reviews table.
type DeveloperStats struct {
	DeveloperID          int64
	TotalGames           int64
	AvgGamePrice         float64
	AvgMetacriticScore   float64
	TotalPositiveReviews int64
	TotalNegativeReviews int64
	AvgPlaytime          float64
	MostCommonGenre      *string
}

// PricePoint is one simulated historical price observation.
type PricePoint struct {
	GameAppID       int64
	Price           float64
	DiscountPercent int64
	RecordedDate    time.Time
}
