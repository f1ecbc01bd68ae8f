package model

import (
	"testing"
	"time"

	"github.com/KonSprin/ztbd/internal/dataset"
)

func testGames() []dataset.Game {
	return []dataset.Game{
		{
			AppID: 30, Name: "Gamma", Price: 59.99, MetacriticScore: 80,
			Positive: 100, Negative: 20, AveragePlaytimeForever: 300,
			Developers: []string{"Valve"}, Genres: []string{"Action"},
			Categories: []string{"Single-player"},
			Tags:       map[string]int64{"FPS": 500, "Action": 300},
		},
		{
			AppID: 10, Name: "Alpha", Price: 19.99, MetacriticScore: 70,
			Positive: 50, Negative: 10, AveragePlaytimeForever: 120,
			Developers: []string{"Valve", "Indie Co"}, Genres: []string{"RPG", "Action"},
			Categories: []string{"Single-player", "Multi-player"},
			Tags:       map[string]int64{"RPG": 200},
		},
		{
			AppID: 20, Name: "Beta", Price: 0,
			Developers: []string{" Indie Co "}, Genres: []string{"Action"},
		},
	}
}

func TestExtractDimensionDeterministicIDs(t *testing.T) {
	games := testGames()

	first, lookup := ExtractDimension(games, Developers, nil)
	if len(first) != 2 {
		t.Fatalf("expected 2 developers, got %d", len(first))
	}
	// Lexicographic order: Indie Co before Valve.
	if first[0].Name != "Indie Co" || first[0].ID != 1 {
		t.Fatalf("unexpected first developer: %+v", first[0])
	}
	if first[1].Name != "Valve" || first[1].ID != 2 {
		t.Fatalf("unexpected second developer: %+v", first[1])
	}
	if lookup["Valve"] != 2 {
		t.Fatalf("lookup disagrees with dimension table: %v", lookup)
	}

	// Same input, same ids, every time.
	second, _ := ExtractDimension(games, Developers, nil)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ids not reproducible: %+v vs %+v", first[i], second[i])
		}
	}
}

func TestExtractDimensionGenres(t *testing.T) {
	dims, lookup := ExtractDimension(testGames(), Genres, nil)
	if len(dims) != 2 {
		t.Fatalf("expected 2 genres, got %d", len(dims))
	}
	if lookup["Action"] != 1 || lookup["RPG"] != 2 {
		t.Fatalf("unexpected genre ids: %v", lookup)
	}
}

func TestExtractTagsSumsVotes(t *testing.T) {
	tags, lookup := ExtractTags(testGames(), nil)
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	byName := make(map[string]Tag)
	for _, tag := range tags {
		byName[tag.Name] = tag
	}
	if byName["Action"].TotalVotes != 300 || byName["FPS"].TotalVotes != 500 || byName["RPG"].TotalVotes != 200 {
		t.Fatalf("unexpected vote totals: %+v", byName)
	}
	if lookup["Action"] != 1 || lookup["FPS"] != 2 || lookup["RPG"] != 3 {
		t.Fatalf("unexpected tag ids: %v", lookup)
	}
}

func TestBuildAssociationsReferentialIntegrity(t *testing.T) {
	games := testGames()
	dims, lookup := ExtractDimension(games, Genres, nil)
	assocs := BuildAssociations(games, Genres, lookup, nil)

	// 3 games reference Action, 1 references RPG.
	if len(assocs) != 4 {
		t.Fatalf("expected 4 genre associations, got %d", len(assocs))
	}
	valid := make(map[int64]bool, len(dims))
	for _, d := range dims {
		valid[d.ID] = true
	}
	for _, a := range assocs {
		if !valid[a.DimensionID] {
			t.Fatalf("association references unknown dimension id %d", a.DimensionID)
		}
	}
}

func TestBuildAssociationsSkipsUnknownNames(t *testing.T) {
	games := testGames()
	lookup := Lookup{"Action": 1}
	assocs := BuildAssociations(games, Genres, lookup, nil)
	for _, a := range assocs {
		if a.DimensionID != 1 {
			t.Fatalf("unexpected association: %+v", a)
		}
	}
	if len(assocs) != 3 {
		t.Fatalf("expected 3 associations for Action only, got %d", len(assocs))
	}
}

func TestBuildTagAssociationsCarriesVotes(t *testing.T) {
	games := testGames()
	_, lookup := ExtractTags(games, nil)
	assocs := BuildTagAssociations(games, lookup, nil)
	if len(assocs) != 3 {
		t.Fatalf("expected 3 tag associations, got %d", len(assocs))
	}
	for _, a := range assocs {
		if a.GameAppID == 30 && a.TagID == lookup["FPS"] && a.VoteCount != 500 {
			t.Fatalf("vote count lost: %+v", a)
		}
	}
}

func testReviews() []dataset.Review {
	base := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	return []dataset.Review{
		{
			ReviewID: 1, AppID: 10, AuthorSteamID: 100, Language: "english",
			Review: "good", TimestampCreated: base, Recommended: true,
			VotesHelpful: 3, SteamPurchase: true,
			AuthorNumGamesOwned: 40, AuthorNumReviews: 5, AuthorPlaytimeForever: 900,
			AuthorPlaytimeAtReview: 100,
		},
		{
			ReviewID: 2, AppID: 10, AuthorSteamID: 100, Language: "polish",
			Review: "zly", TimestampCreated: base.Add(48 * time.Hour), Recommended: false,
			VotesHelpful: 1, WrittenDuringEarlyAccess: true,
			AuthorNumGamesOwned: 40, AuthorNumReviews: 5, AuthorPlaytimeForever: 900,
			AuthorPlaytimeAtReview: 300,
		},
		{
			ReviewID: 3, AppID: 30, AuthorSteamID: 200, Language: "english",
			Review: "great game", TimestampCreated: base.Add(24 * time.Hour), Recommended: true,
			VotesHelpful: 10, SteamPurchase: true,
			AuthorNumGamesOwned: 10, AuthorNumReviews: 1, AuthorPlaytimeForever: 50,
			AuthorPlaytimeAtReview: 40,
		},
	}
}

func TestBuildUserProfiles(t *testing.T) {
	profiles := BuildUserProfiles(testReviews(), nil)
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	p := profiles[0]
	if p.AuthorSteamID != 100 {
		t.Fatalf("profiles not sorted by author id: %+v", p)
	}
	if p.PositiveReviewCount != 1 || p.NegativeReviewCount != 1 {
		t.Fatalf("unexpected counts: %+v", p)
	}
	if p.HelpfulVotesReceived != 4 {
		t.Fatalf("helpful votes not summed: %+v", p)
	}
	if !p.FirstReviewDate.Before(p.LastReviewDate) {
		t.Fatalf("review date window wrong: %+v", p)
	}
	// "good" is 4 runes, "zly" is 3.
	if p.AvgReviewLength != 3.5 {
		t.Fatalf("unexpected avg review length: %v", p.AvgReviewLength)
	}
}

func TestBuildGameReviewSummaries(t *testing.T) {
	summaries := BuildGameReviewSummaries(testReviews(), nil)
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	s := summaries[0]
	if s.GameAppID != 10 {
		t.Fatalf("summaries not sorted by app id: %+v", s)
	}
	if s.TotalReviews != 2 || s.PositiveReviews != 1 || s.NegativeReviews != 1 {
		t.Fatalf("unexpected review counts: %+v", s)
	}
	if s.AvgHelpfulVotes != 2.0 {
		t.Fatalf("unexpected avg helpful votes: %v", s.AvgHelpfulVotes)
	}
	if s.AvgPlaytimeAtReview != 200 || s.MedianPlaytimeAtReview != 200 {
		t.Fatalf("unexpected playtime stats: %+v", s)
	}
	// english and polish each appear once; the tie breaks lexicographically.
	if s.MostCommonLanguage == nil || *s.MostCommonLanguage != "english" {
		t.Fatalf("unexpected modal language: %v", s.MostCommonLanguage)
	}
	if s.SteamPurchaseRatio != 0.5 {
		t.Fatalf("unexpected purchase ratio: %v", s.SteamPurchaseRatio)
	}
	if s.EarlyAccessReviewCount != 1 {
		t.Fatalf("unexpected early access count: %v", s.EarlyAccessReviewCount)
	}
}

func TestBuildDeveloperStats(t *testing.T) {
	games := testGames()
	_, lookup := ExtractDimension(games, Developers, nil)
	assocs := BuildAssociations(games, Developers, lookup, nil)
	stats := BuildDeveloperStats(games, assocs, nil)

	if len(stats) != 2 {
		t.Fatalf("expected 2 developer stats rows, got %d", len(stats))
	}

	// Indie Co (id 1) developed Alpha and Beta.
	s := stats[0]
	if s.DeveloperID != 1 || s.TotalGames != 2 {
		t.Fatalf("unexpected stats row: %+v", s)
	}
	if s.AvgGamePrice != (19.99+0)/2 {
		t.Fatalf("unexpected avg price: %v", s.AvgGamePrice)
	}
	if s.TotalPositiveReviews != 50 || s.TotalNegativeReviews != 10 {
		t.Fatalf("platform counters not summed: %+v", s)
	}
	if s.MostCommonGenre == nil {
		t.Fatalf("expected a modal genre")
	}

	// Valve (id 2) developed Alpha and Gamma; both genre lists start
	// differently, count ties break lexicographically on the joined key.
	v := stats[1]
	if v.DeveloperID != 2 || v.TotalGames != 2 {
		t.Fatalf("unexpected stats row: %+v", v)
	}
}

func TestFirstMode(t *testing.T) {
	if got := firstMode(map[string]int64{}); got != nil {
		t.Fatalf("expected nil for empty map, got %v", *got)
	}
	got := firstMode(map[string]int64{"b": 2, "a": 2, "c": 1})
	if got == nil || *got != "a" {
		t.Fatalf("tie should break lexicographically, got %v", got)
	}
}

func TestMedian(t *testing.T) {
	if m := median([]float64{3, 1, 2}); m != 2 {
		t.Fatalf("odd median wrong: %v", m)
	}
	if m := median([]float64{4, 1, 3, 2}); m != 2.5 {
		t.Fatalf("even median wrong: %v", m)
	}
	if m := median(nil); m != 0 {
		t.Fatalf("empty median wrong: %v", m)
	}
}
