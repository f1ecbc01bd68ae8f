package bench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

type stubBackend struct {
	name string
	rows []Row
	err  error
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Run(ctx context.Context, c *Case, limit int) ([]Row, error) {
	return s.rows, s.err
}

func (s *stubBackend) Close(ctx context.Context) error { return nil }

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testRunner(t *testing.T, backends ...Backend) *Runner {
	t.Helper()
	cfg := config.Run{Limit: 10, Repeats: 1, QueryTimeout: time.Second, SampleSize: 10, MismatchCap: 5}
	r, err := NewRunner(backends, []*Case{simpleSelectCase()}, cfg, testLog(t))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestRunCaseComparisonSkippedBelowTwoSuccesses(t *testing.T) {
	ok := &stubBackend{name: "postgresql", rows: []Row{{"appid": int64(1)}}}
	broken := &stubBackend{name: "neo4j", err: errors.New("connection refused")}
	r := testRunner(t, ok, broken)

	cr := r.runCase(context.Background(), r.cases[0])

	if cr.Compared {
		t.Fatalf("comparison should not run with a single success")
	}
	// A skipped comparison is a status, never an error or a silent omission.
	if cr.SkipReason != "Insufficient successful results" {
		t.Fatalf("unexpected skip reason: %q", cr.SkipReason)
	}
	if len(cr.Comparisons) != 0 {
		t.Fatalf("no comparisons expected, got %d", len(cr.Comparisons))
	}
}

func TestRunCaseComparesTwoSuccesses(t *testing.T) {
	rows := []Row{{"appid": int64(1), "price": 59.99}}
	a := &stubBackend{name: "postgresql", rows: rows}
	b := &stubBackend{name: "mongodb", rows: rows}
	r := testRunner(t, a, b)

	cr := r.runCase(context.Background(), r.cases[0])

	if !cr.Compared || !cr.AllMatch {
		t.Fatalf("expected a matching comparison: %+v", cr)
	}
	if cr.SkipReason != "" {
		t.Fatalf("skip reason set on a compared case: %q", cr.SkipReason)
	}
	if len(cr.Comparisons) != 1 {
		t.Fatalf("expected one pair, got %d", len(cr.Comparisons))
	}
}

func TestNewRunnerRequiresBackends(t *testing.T) {
	cfg := config.Run{}
	if _, err := NewRunner(nil, Catalog(), cfg, testLog(t)); err == nil {
		t.Fatalf("expected error with zero backends")
	}
}
