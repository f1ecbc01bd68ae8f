package model

import (
	"testing"
	"time"

	"github.com/KonSprin/ztbd/internal/dataset"
)

func TestSimulatePriceHistoryWindow(t *testing.T) {
	games := []dataset.Game{
		{AppID: 10, Price: 19.99},
		{AppID: 20, Price: 0}, // free games get no history
	}
	base := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	points := SimulatePriceHistory(games, 2, base, nil)
	if len(points) != 3 {
		t.Fatalf("expected 3 points for months 2..0, got %d", len(points))
	}

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	wantDates := []time.Time{
		day.AddDate(0, 0, -60),
		day.AddDate(0, 0, -30),
		day,
	}
	for i, p := range points {
		if p.GameAppID != 10 {
			t.Fatalf("unexpected game id: %+v", p)
		}
		if !p.RecordedDate.Equal(wantDates[i]) {
			t.Fatalf("point %d: want date %v, got %v", i, wantDates[i], p.RecordedDate)
		}
	}
}

func TestSimulatePriceHistoryBounds(t *testing.T) {
	games := []dataset.Game{{AppID: 440, Price: 19.99}}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	validDiscounts := map[int64]bool{0: true}
	for _, d := range discountChoices {
		validDiscounts[d] = true
	}

	for _, p := range SimulatePriceHistory(games, 12, base, nil) {
		// price = 19.99 * [0.9, 1.1), rounded.
		if p.Price < 17.99 || p.Price > 21.99 {
			t.Fatalf("price out of bounds: %v", p.Price)
		}
		if !validDiscounts[p.DiscountPercent] {
			t.Fatalf("discount not in the fixed set: %v", p.DiscountPercent)
		}
	}
}

func TestSimulatePriceHistoryDeterministic(t *testing.T) {
	games := []dataset.Game{{AppID: 570, Price: 29.99}, {AppID: 730, Price: 14.99}}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := SimulatePriceHistory(games, 6, base, nil)
	second := SimulatePriceHistory(games, 6, base, nil)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
