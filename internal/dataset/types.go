package dataset

import "time"

// Game is one row of the denormalized games table. Only the columns the
// pipeline reads are materialized; everything else in the source CSV is
// ignored at load time.
type Game struct {
	AppID                  int64
	Name                   string
	ReleaseDate            string
	Price                  float64
	Discount               float64
	MetacriticScore        float64
	Positive               int64
	Negative               int64
	AveragePlaytimeForever float64

	// Denormalized columns. A value may arrive as a scalar or a list in
	// the raw data; the loader normalizes both into a slice.
	Developers []string
	Publishers []string
	Genres     []string
	Categories []string

	// Tags maps tag name to its vote count for this game.
	Tags map[string]int64
}

// Review is one row of the reviews table, foreign-keyed to a game by AppID.
type Review struct {
	ReviewID                 int64
	AppID                    int64
	AuthorSteamID            int64
	Language                 string
	Review                   string
	TimestampCreated         time.Time
	TimestampUpdated         time.Time
	Recommended              bool
	VotesHelpful             int64
	SteamPurchase            bool
	WrittenDuringEarlyAccess bool

	AuthorNumGamesOwned    int64
	AuthorNumReviews       int64
	AuthorPlaytimeForever  float64
	AuthorPlaytimeAtReview float64
}
