package bench

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func readReport(t *testing.T, paths []string, suffix string) []byte {
	t.Helper()
	for _, p := range paths {
		if strings.HasSuffix(p, suffix) {
			raw, err := os.ReadFile(p)
			if err != nil {
				t.Fatalf("read %s: %v", p, err)
			}
			return raw
		}
	}
	t.Fatalf("no %s report in %v", suffix, paths)
	return nil
}

func TestWriteReportsJSONKeepsLastRun(t *testing.T) {
	c := simpleSelectCase()
	results := &Results{
		RunID:    "run-1",
		Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Limit:    100,
		Repeats:  2,
		Backends: []string{"postgresql"},
		Cases: []*CaseResult{{
			Case: c,
			Executions: []Execution{
				{Case: c.Name, Backend: "postgresql", Run: 1, RowCount: 1, DurationMS: 5, Success: true},
				{Case: c.Name, Backend: "postgresql", Run: 2, RowCount: 2, DurationMS: 7, Success: true},
			},
		}},
		Stats: map[string]map[string]*LatencyStats{},
	}

	paths, err := WriteReports(results, t.TempDir(), testLog(t))
	if err != nil {
		t.Fatalf("WriteReports: %v", err)
	}

	var rep jsonReport
	if err := json.Unmarshal(readReport(t, paths, ".json"), &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := rep.Tests[0].Results["postgresql"]
	if got.RowCount != 2 || got.ExecutionTimeMS != 7 {
		t.Fatalf("expected the last run in per-backend results, got %+v", got)
	}
}

func TestWriteReportsSurfaceSkippedComparison(t *testing.T) {
	c := simpleSelectCase()
	results := &Results{
		RunID:    "run-2",
		Started:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Limit:    100,
		Repeats:  1,
		Backends: []string{"postgresql", "neo4j"},
		Cases: []*CaseResult{{
			Case: c,
			Executions: []Execution{
				{Case: c.Name, Backend: "postgresql", Run: 1, RowCount: 3, Success: true},
				{Case: c.Name, Backend: "neo4j", Run: 1, Error: "connection refused"},
			},
			SkipReason: "Insufficient successful results",
		}},
	}

	paths, err := WriteReports(results, t.TempDir(), testLog(t))
	if err != nil {
		t.Fatalf("WriteReports: %v", err)
	}

	var rep jsonReport
	if err := json.Unmarshal(readReport(t, paths, ".json"), &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rep.Comparisons) != 1 {
		t.Fatalf("skipped case missing from comparisons: %+v", rep.Comparisons)
	}
	cmp := rep.Comparisons[0]
	if cmp.ComparisonPossible || cmp.Reason != "Insufficient successful results" {
		t.Fatalf("unexpected comparison status: %+v", cmp)
	}

	md := string(readReport(t, paths, ".md"))
	if !strings.Contains(md, "Comparison skipped:") || !strings.Contains(md, "Insufficient successful results") {
		t.Fatalf("markdown does not surface the skipped comparison:\n%s", md)
	}
}
