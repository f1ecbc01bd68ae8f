package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/KonSprin/ztbd/internal/model"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// fakeProjector fails on one named table and records what it projected.
type fakeProjector struct {
	name      string
	failTable string
	projected []string
	dropped   bool
}

func (f *fakeProjector) Name() string { return f.name }

func (f *fakeProjector) ProjectTable(ctx context.Context, t model.Table, batchSize int) error {
	if t.Name == f.failTable {
		return fmt.Errorf("store: %s: create %s: permission denied", f.name, t.Name)
	}
	f.projected = append(f.projected, t.Name)
	return nil
}

func (f *fakeProjector) Drop(ctx context.Context, names []string) error {
	f.dropped = true
	return nil
}

func (f *fakeProjector) Count(ctx context.Context, name string) (int64, error) {
	return 0, nil
}

func (f *fakeProjector) SampleIDs(ctx context.Context, name, idColumn string, n int) (map[int64]string, error) {
	return nil, nil
}

func (f *fakeProjector) Close(ctx context.Context) error { return nil }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestProjectAllContinuesPastFailedBackend(t *testing.T) {
	tables := []model.Table{
		{Name: "games", PrimaryKey: []string{"appid"}},
		{Name: "reviews", PrimaryKey: []string{"review_id"}},
	}
	bad := &fakeProjector{name: "postgresql", failTable: "reviews"}
	good := &fakeProjector{name: "mongodb"}

	succeeded := ProjectAll(context.Background(), []Projector{bad, good}, tables, 100, false, testLogger(t))

	if len(succeeded) != 1 || succeeded[0].Name() != "mongodb" {
		t.Fatalf("expected only mongodb to succeed, got %d", len(succeeded))
	}
	// The failure on one backend must not stop the next one.
	if len(good.projected) != 2 {
		t.Fatalf("healthy backend did not import every table: %v", good.projected)
	}
}

func TestProjectAllAllBackendsFail(t *testing.T) {
	tables := []model.Table{{Name: "games", PrimaryKey: []string{"appid"}}}
	bad := &fakeProjector{name: "postgresql", failTable: "games"}

	if succeeded := ProjectAll(context.Background(), []Projector{bad}, tables, 100, false, testLogger(t)); len(succeeded) != 0 {
		t.Fatalf("expected no survivors, got %d", len(succeeded))
	}
}

func TestProjectAllDropBeforeImport(t *testing.T) {
	tables := []model.Table{{Name: "games", PrimaryKey: []string{"appid"}}}
	p := &fakeProjector{name: "mysql"}

	ProjectAll(context.Background(), []Projector{p}, tables, 100, true, testLogger(t))
	if !p.dropped {
		t.Fatalf("drop flag not honored")
	}
	if len(p.projected) != 1 {
		t.Fatalf("tables not projected after drop: %v", p.projected)
	}
}
