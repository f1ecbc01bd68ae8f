package store

import (
	"context"
	"fmt"
	"time"

	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// ProjectAll imports every table into every projector. A failure on one
// backend excludes that backend only; the remaining backends still run.
// Returns the projectors that imported every table.
func ProjectAll(ctx context.Context, projectors []Projector, tables []model.Table, batchSize int, drop bool, log *logger.Logger) []Projector {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}

	var succeeded []Projector
	for _, p := range projectors {
		started := time.Now()
		if err := projectInto(ctx, p, tables, names, batchSize, drop); err != nil {
			log.Error("backend import failed", "backend", p.Name(), "error", err)
			continue
		}
		succeeded = append(succeeded, p)
		log.Info("backend import complete",
			"backend", p.Name(), "tables", len(tables),
			"duration", time.Since(started).String())
	}
	return succeeded
}

func projectInto(ctx context.Context, p Projector, tables []model.Table, names []string, batchSize int, drop bool) error {
	if drop {
		if err := p.Drop(ctx, names); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
	}
	for _, t := range tables {
		if err := p.ProjectTable(ctx, t, batchSize); err != nil {
			return fmt.Errorf("project %s: %w", t.Name, err)
		}
	}
	return nil
}
