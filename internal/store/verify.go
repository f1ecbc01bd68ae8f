package store

import (
	"context"
	"fmt"

	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// idSampleSize bounds the dimension spot check.
const idSampleSize = 10

// Verify checks every projected table's row count against the canonical
// model on every backend, then spot-checks that the first developer ids
// resolve to the same names everywhere. Mismatches are logged and collected;
// a non-nil error means at least one backend disagrees with the model.
func Verify(ctx context.Context, projectors []Projector, tables []model.Table, log *logger.Logger) error {
	var mismatches int
	for _, p := range projectors {
		for _, t := range tables {
			got, err := p.Count(ctx, t.Name)
			if err != nil {
				return fmt.Errorf("store: verify %s on %s: %w", t.Name, p.Name(), err)
			}
			want := int64(len(t.Rows))
			if got != want {
				mismatches++
				log.Warn("row count mismatch",
					"backend", p.Name(), "table", t.Name, "want", want, "got", got)
				continue
			}
			log.Debug("row count verified", "backend", p.Name(), "table", t.Name, "rows", got)
		}
	}
	mismatches += verifyDimensionIDs(ctx, projectors, tables, log)
	if mismatches > 0 {
		return fmt.Errorf("store: verify: %d checks diverge from the canonical model", mismatches)
	}
	return nil
}

func verifyDimensionIDs(ctx context.Context, projectors []Projector, tables []model.Table, log *logger.Logger) int {
	want := canonicalIDSample(tables, "developers", "developer_id")
	if len(want) == 0 {
		return 0
	}
	var mismatches int
	for _, p := range projectors {
		got, err := p.SampleIDs(ctx, "developers", "developer_id", idSampleSize)
		if err != nil {
			mismatches++
			log.Warn("id spot check failed", "backend", p.Name(), "error", err)
			continue
		}
		for id, name := range want {
			if got[id] != name {
				mismatches++
				log.Warn("dimension id mismatch",
					"backend", p.Name(), "table", "developers",
					"id", id, "want", name, "got", got[id])
			}
		}
	}
	return mismatches
}

func canonicalIDSample(tables []model.Table, name, idColumn string) map[int64]string {
	for _, t := range tables {
		if t.Name != name {
			continue
		}
		out := make(map[int64]string, idSampleSize)
		for i, row := range t.Rows {
			if i >= idSampleSize {
				break
			}
			id, ok := row[idColumn].(int64)
			if !ok {
				continue
			}
			if s, ok := row["name"].(string); ok {
				out[id] = s
			}
		}
		return out
	}
	return nil
}
