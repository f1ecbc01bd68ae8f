package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Column aliases: the raw reviews export uses "author.steamid" style
// headers, the cleaned one uses underscores. Both are accepted.
var reviewAliases = map[string]string{
	"author.steamid":            "author_steamid",
	"author.num_games_owned":    "author_num_games_owned",
	"author.num_reviews":        "author_num_reviews",
	"author.playtime_forever":   "author_playtime_forever",
	"author.playtime_at_review": "author_playtime_at_review",
}

// LoadGames reads the games CSV, dropping duplicate appids (first
// occurrence wins) and rows without a usable appid.
func LoadGames(path string, log *logger.Logger) ([]Game, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: load games: %w", err)
	}

	games := make([]Game, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	dupes := 0
	for _, row := range rows {
		appid, ok := intField(row, "appid")
		if !ok {
			continue
		}
		if seen[appid] {
			dupes++
			continue
		}
		seen[appid] = true

		games = append(games, Game{
			AppID:                  appid,
			Name:                   strings.TrimSpace(row["name"]),
			ReleaseDate:            strings.TrimSpace(row["release_date"]),
			Price:                  floatField(row, "price"),
			Discount:               floatField(row, "discount"),
			MetacriticScore:        floatField(row, "metacritic_score"),
			Positive:               intFieldOrZero(row, "positive"),
			Negative:               intFieldOrZero(row, "negative"),
			AveragePlaytimeForever: floatField(row, "average_playtime_forever"),
			Developers:             StringList(row["developers"]),
			Publishers:             StringList(row["publishers"]),
			Genres:                 StringList(row["genres"]),
			Categories:             StringList(row["categories"]),
			Tags:                   TagVotes(row["tags"]),
		})
	}

	if log != nil {
		log.Info("games dataset loaded", "rows", len(games), "duplicates_dropped", dupes)
	}
	return games, nil
}

// LoadReviews reads the reviews CSV, deduplicates on review_id, sorts by
// author id and caps at limit (limit <= 0 means no cap), mirroring how the
// source dataset was bounded.
func LoadReviews(path string, limit int, log *logger.Logger) ([]Review, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: load reviews: %w", err)
	}

	reviews := make([]Review, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	dupes := 0
	for _, row := range rows {
		id, ok := intField(row, "review_id")
		if !ok {
			continue
		}
		if seen[id] {
			dupes++
			continue
		}
		seen[id] = true

		reviews = append(reviews, Review{
			ReviewID:                 id,
			AppID:                    intFieldOrZero(row, "app_id"),
			AuthorSteamID:            intFieldOrZero(row, "author_steamid"),
			Language:                 strings.TrimSpace(row["language"]),
			Review:                   row["review"],
			TimestampCreated:         unixField(row, "timestamp_created"),
			TimestampUpdated:         unixField(row, "timestamp_updated"),
			Recommended:              boolField(row, "recommended"),
			VotesHelpful:             intFieldOrZero(row, "votes_helpful"),
			SteamPurchase:            boolField(row, "steam_purchase"),
			WrittenDuringEarlyAccess: boolField(row, "written_during_early_access"),
			AuthorNumGamesOwned:      intFieldOrZero(row, "author_num_games_owned"),
			AuthorNumReviews:         intFieldOrZero(row, "author_num_reviews"),
			AuthorPlaytimeForever:    floatField(row, "author_playtime_forever"),
			AuthorPlaytimeAtReview:   floatField(row, "author_playtime_at_review"),
		})
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].AuthorSteamID < reviews[j].AuthorSteamID
	})
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}

	if log != nil {
		log.Info("reviews dataset loaded", "rows", len(reviews), "duplicates_dropped", dupes)
	}
	return reviews, nil
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		if alias, ok := reviewAliases[h]; ok {
			h = alias
		}
		header[i] = h
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, v := range rec {
			if i < len(header) && header[i] != "" {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func intField(row map[string]string, key string) (int64, bool) {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return 0, false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i, true
	}
	// Some exports render integer columns as floats ("12345.0").
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func intFieldOrZero(row map[string]string, key string) int64 {
	i, _ := intField(row, key)
	return i
}

func floatField(row map[string]string, key string) float64 {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func boolField(row map[string]string, key string) bool {
	switch strings.ToLower(strings.TrimSpace(row[key])) {
	case "true", "1", "t", "yes":
		return true
	}
	return false
}

// unixField parses an epoch-seconds or RFC3339 value. Missing or malformed
// values clamp to the epoch: the zero time's year 1 is outside the DATETIME
// range MySQL accepts, so it must never reach a projection.
func unixField(row map[string]string, key string) time.Time {
	v := strings.TrimSpace(row[key])
	if v != "" {
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC()
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
	}
	return time.Unix(0, 0).UTC()
}
