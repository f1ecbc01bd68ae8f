package model

import (
	"math"
	"math/rand"
	"time"

	"github.com/KonSprin/ztbd/internal/dataset"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Discount percentages the simulation can pick from.
var discountChoices = []int64{10, 15, 20, 25, 33, 50, 75}

const discountProbability = 0.3

// SimulatePriceHistory emits monthsBack+1 synthetic price observations per
// positively priced game, stepping 30 days back from baseDate. Each point
// perturbs the current price by a uniform factor in [0.9, 1.1] and applies
// a discount from the fixed set with probability 0.3.
//
// The generator is seeded with the game's appid, so the series for a given
// game is identical across runs; every backend receives the exact same
// rows because the simulation runs once, before projection.
func SimulatePriceHistory(games []dataset.Game, monthsBack int, baseDate time.Time, log *logger.Logger) []PricePoint {
	base := truncateToDay(baseDate)

	var out []PricePoint
	for _, g := range games {
		if g.Price <= 0 {
			continue
		}
		rng := rand.New(rand.NewSource(g.AppID))
		for month := monthsBack; month >= 0; month-- {
			date := base.AddDate(0, 0, -month*30)

			variation := 0.9 + rng.Float64()*0.2
			price := math.Round(g.Price*variation*100) / 100

			var discount int64
			if rng.Float64() < discountProbability {
				discount = discountChoices[rng.Intn(len(discountChoices))]
			}

			out = append(out, PricePoint{
				GameAppID:       g.AppID,
				Price:           price,
				DiscountPercent: discount,
				RecordedDate:    date,
			})
		}
	}

	if log != nil {
		log.Info("price history simulated", "months_back", monthsBack, "rows", len(out))
	}
	return out
}
