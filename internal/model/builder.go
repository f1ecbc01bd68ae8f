package model

import (
	"sort"
	"strings"
	"time"

	"github.com/KonSprin/ztbd/internal/dataset"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// DimensionColumn selects which denormalized game column a dimension is
// extracted from.
type DimensionColumn int

const (
	Developers DimensionColumn = iota
	Publishers
	Genres
	Categories
)

func (c DimensionColumn) String() string {
	switch c {
	case Developers:
		return "developers"
	case Publishers:
		return "publishers"
	case Genres:
		return "genres"
	case Categories:
		return "categories"
	}
	return "unknown"
}

func columnValues(g dataset.Game, c DimensionColumn) []string {
	switch c {
	case Developers:
		return g.Developers
	case Publishers:
		return g.Publishers
	case Genres:
		return g.Genres
	case Categories:
		return g.Categories
	}
	return nil
}

// ExtractDimension collects the distinct non-empty values of one column
// across all games, sorts them lexicographically and assigns surrogate ids
// from 1. The returned Lookup is the finalized name->id map; association
// construction must use it rather than re-deriving ids.
func ExtractDimension(games []dataset.Game, col DimensionColumn, log *logger.Logger) ([]Dimension, Lookup) {
	distinct := make(map[string]bool)
	for _, g := range games {
		for _, v := range columnValues(g, col) {
			v = strings.TrimSpace(v)
			if v != "" {
				distinct[v] = true
			}
		}
	}

	names := make([]string, 0, len(distinct))
	for name := range distinct {
		names = append(names, name)
	}
	sort.Strings(names)

	dims := make([]Dimension, len(names))
	lookup := make(Lookup, len(names))
	for i, name := range names {
		id := int64(i + 1)
		dims[i] = Dimension{ID: id, Name: name}
		lookup[name] = id
	}

	if log != nil {
		log.Info("dimension extracted", "column", col.String(), "values", len(dims))
	}
	return dims, lookup
}

// ExtractTags builds the tag dimension: distinct tag names with vote counts
// summed across all games, id-ordered by name.
func ExtractTags(games []dataset.Game, log *logger.Logger) ([]Tag, Lookup) {
	votes := make(map[string]int64)
	for _, g := range games {
		for tag, v := range g.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			votes[tag] += v
		}
	}

	names := make([]string, 0, len(votes))
	for name := range votes {
		names = append(names, name)
	}
	sort.Strings(names)

	tags := make([]Tag, len(names))
	lookup := make(Lookup, len(names))
	for i, name := range names {
		id := int64(i + 1)
		tags[i] = Tag{ID: id, Name: name, TotalVotes: votes[name]}
		lookup[name] = id
	}

	if log != nil {
		log.Info("tags extracted", "values", len(tags))
	}
	return tags, lookup
}

// BuildAssociations emits one row per (game, dimension value) pair for the
// given column. Values missing from the lookup are skipped; the dimension
// table is the source of truth, not the raw column.
func BuildAssociations(games []dataset.Game, col DimensionColumn, lookup Lookup, log *logger.Logger) []GameAssociation {
	var out []GameAssociation
	for _, g := range games {
		for _, v := range columnValues(g, col) {
			id, ok := lookup[strings.TrimSpace(v)]
			if !ok {
				continue
			}
			out = append(out, GameAssociation{GameAppID: g.AppID, DimensionID: id})
		}
	}
	if log != nil {
		log.Info("associations built", "column", col.String(), "rows", len(out))
	}
	return out
}

// BuildTagAssociations is BuildAssociations for the tag map; each row
// carries the per-game vote count. Map iteration order is not stable, so
// tag names are sorted per game to keep the output reproducible.
func BuildTagAssociations(games []dataset.Game, lookup Lookup, log *logger.Logger) []GameTag {
	var out []GameTag
	for _, g := range games {
		if len(g.Tags) == 0 {
			continue
		}
		names := make([]string, 0, len(g.Tags))
		for tag := range g.Tags {
			names = append(names, tag)
		}
		sort.Strings(names)
		for _, tag := range names {
			id, ok := lookup[strings.TrimSpace(tag)]
			if !ok {
				continue
			}
			out = append(out, GameTag{GameAppID: g.AppID, TagID: id, VoteCount: g.Tags[tag]})
		}
	}
	if log != nil {
		log.Info("tag associations built", "rows", len(out))
	}
	return out
}

// BuildUserProfiles groups reviews by author and aggregates with fixed
// reducers: author counters from the first review seen, timestamps min/max,
// recommended sum for positives and count-minus-sum for negatives, mean
// review character length, helpful votes summed.
func BuildUserProfiles(reviews []dataset.Review, log *logger.Logger) []UserProfile {
	type acc struct {
		profile   UserProfile
		total     int64
		lengthSum int64
	}
	byAuthor := make(map[int64]*acc)

	for _, r := range reviews {
		a, ok := byAuthor[r.AuthorSteamID]
		if !ok {
			a = &acc{profile: UserProfile{
				AuthorSteamID:        r.AuthorSteamID,
				NumGamesOwned:        r.AuthorNumGamesOwned,
				NumReviews:           r.AuthorNumReviews,
				TotalPlaytimeMinutes: r.AuthorPlaytimeForever,
				FirstReviewDate:      r.TimestampCreated,
				LastReviewDate:       r.TimestampCreated,
			}}
			byAuthor[r.AuthorSteamID] = a
		}
		a.total++
		a.lengthSum += int64(len([]rune(r.Review)))
		a.profile.HelpfulVotesReceived += r.VotesHelpful
		if r.Recommended {
			a.profile.PositiveReviewCount++
		}
		if r.TimestampCreated.Before(a.profile.FirstReviewDate) {
			a.profile.FirstReviewDate = r.TimestampCreated
		}
		if r.TimestampCreated.After(a.profile.LastReviewDate) {
			a.profile.LastReviewDate = r.TimestampCreated
		}
	}

	ids := make([]int64, 0, len(byAuthor))
	for id := range byAuthor {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]UserProfile, 0, len(ids))
	for _, id := range ids {
		a := byAuthor[id]
		a.profile.NegativeReviewCount = a.total - a.profile.PositiveReviewCount
		a.profile.AvgReviewLength = float64(a.lengthSum) / float64(a.total)
		out = append(out, a.profile)
	}

	if log != nil {
		log.Info("user profiles built", "rows", len(out))
	}
	return out
}

// BuildGameReviewSummaries groups reviews by game. Games without reviews
// get no row.
func BuildGameReviewSummaries(reviews []dataset.Review, log *logger.Logger) []GameReviewSummary {
	type acc struct {
		summary   GameReviewSummary
		playtimes []float64
		helpful   int64
		purchases int64
		languages map[string]int64
	}
	byGame := make(map[int64]*acc)

	for _, r := range reviews {
		a, ok := byGame[r.AppID]
		if !ok {
			a = &acc{
				summary:   GameReviewSummary{GameAppID: r.AppID},
				languages: make(map[string]int64),
			}
			byGame[r.AppID] = a
		}
		a.summary.TotalReviews++
		if r.Recommended {
			a.summary.PositiveReviews++
		} else {
			a.summary.NegativeReviews++
		}
		a.playtimes = append(a.playtimes, r.AuthorPlaytimeAtReview)
		a.helpful += r.VotesHelpful
		if lang := strings.TrimSpace(r.Language); lang != "" {
			a.languages[lang]++
		}
		if r.SteamPurchase {
			a.purchases++
		}
		if r.WrittenDuringEarlyAccess {
			a.summary.EarlyAccessReviewCount++
		}
	}

	ids := make([]int64, 0, len(byGame))
	for id := range byGame {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]GameReviewSummary, 0, len(ids))
	for _, id := range ids {
		a := byGame[id]
		n := float64(a.summary.TotalReviews)
		a.summary.AvgPlaytimeAtReview = mean(a.playtimes)
		a.summary.MedianPlaytimeAtReview = median(a.playtimes)
		a.summary.AvgHelpfulVotes = float64(a.helpful) / n
		a.summary.MostCommonLanguage = firstMode(a.languages)
		a.summary.SteamPurchaseRatio = float64(a.purchases) / n
		out = append(out, a.summary)
	}

	if log != nil {
		log.Info("game review summaries built", "rows", len(out))
	}
	return out
}

// BuildDeveloperStats left-joins the Game x Developer association back to
// the games and aggregates per developer. Only developers with at least one
// game appear.
func BuildDeveloperStats(games []dataset.Game, assocs []GameAssociation, log *logger.Logger) []DeveloperStats {
	byAppID := make(map[int64]dataset.Game, len(games))
	for _, g := range games {
		byAppID[g.AppID] = g
	}

	type acc struct {
		stats       DeveloperStats
		priceSum    float64
		scoreSum    float64
		playtimeSum float64
		joined      int64
		genreKeys   map[string]int64
		genreFirst  map[string]string
	}
	byDev := make(map[int64]*acc)

	for _, as := range assocs {
		a, ok := byDev[as.DimensionID]
		if !ok {
			a = &acc{
				stats:      DeveloperStats{DeveloperID: as.DimensionID},
				genreKeys:  make(map[string]int64),
				genreFirst: make(map[string]string),
			}
			byDev[as.DimensionID] = a
		}
		a.stats.TotalGames++

		g, ok := byAppID[as.GameAppID]
		if !ok {
			continue
		}
		a.joined++
		a.priceSum += g.Price
		a.scoreSum += g.MetacriticScore
		a.playtimeSum += g.AveragePlaytimeForever
		a.stats.TotalPositiveReviews += g.Positive
		a.stats.TotalNegativeReviews += g.Negative
		if len(g.Genres) > 0 {
			key := strings.Join(g.Genres, "\x00")
			a.genreKeys[key]++
			if _, seen := a.genreFirst[key]; !seen {
				a.genreFirst[key] = g.Genres[0]
			}
		}
	}

	ids := make([]int64, 0, len(byDev))
	for id := range byDev {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]DeveloperStats, 0, len(ids))
	for _, id := range ids {
		a := byDev[id]
		if a.joined > 0 {
			n := float64(a.joined)
			a.stats.AvgGamePrice = a.priceSum / n
			a.stats.AvgMetacriticScore = a.scoreSum / n
			a.stats.AvgPlaytime = a.playtimeSum / n
		}
		// The modal value is the full genre list; unwrap to its first
		// element for the stats row.
		if key := firstMode(a.genreKeys); key != nil {
			genre := a.genreFirst[*key]
			a.stats.MostCommonGenre = &genre
		}
		out = append(out, a.stats)
	}

	if log != nil {
		log.Info("developer stats built", "rows", len(out))
	}
	return out
}

// firstMode returns the most frequent key, breaking count ties by taking
// the lexicographically smallest key, or nil when the map is empty.
func firstMode(counts map[string]int64) *string {
	var best string
	var bestN int64 = -1
	for k, n := range counts {
		if n > bestN || (n == bestN && k < best) {
			best, bestN = k, n
		}
	}
	if bestN < 0 {
		return nil
	}
	return &best
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// truncateToDay drops the time-of-day component, keeping UTC.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
