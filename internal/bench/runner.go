package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KonSprin/ztbd/internal/config"
	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// Execution is one timed query run, keyed by (case, backend, run).
type Execution struct {
	Case       string    `json:"test_name"`
	Backend    string    `json:"database"`
	Run        int       `json:"run_number"`
	DurationMS float64   `json:"execution_time_ms"`
	RowCount   int       `json:"row_count"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// CaseResult bundles everything recorded for one catalog case. A case that
// was eligible for comparison but lacked enough successful backends carries
// SkipReason instead of Comparisons; that is a status, not an error.
type CaseResult struct {
	Case        *Case
	Executions  []Execution
	Rows        map[string][]Row
	Comparisons []*Comparison
	Compared    bool
	AllMatch    bool
	SkipReason  string
}

// Results is the full output of one orchestrator run.
type Results struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Limit    int
	Repeats  int
	Backends []string
	Cases    []*CaseResult
	Stats    map[string]map[string]*LatencyStats
}

// Runner executes the catalog sequentially: case by case, backend by
// backend, repeats back-to-back. Sequential on purpose; the measured
// latencies are the artifact, and parallel execution would perturb them.
type Runner struct {
	backends []Backend
	cases    []*Case
	cfg      config.Run
	log      *logger.Logger
}

func NewRunner(backends []Backend, cases []*Case, cfg config.Run, log *logger.Logger) (*Runner, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("bench: no backends initialized")
	}
	return &Runner{
		backends: backends,
		cases:    cases,
		cfg:      cfg,
		log:      log.With("service", "Runner"),
	}, nil
}

func (r *Runner) Run(ctx context.Context) (*Results, error) {
	results := &Results{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Limit:   r.cfg.Limit,
		Repeats: r.cfg.Repeats,
	}
	for _, b := range r.backends {
		results.Backends = append(results.Backends, b.Name())
	}
	r.log.Info("benchmark started",
		"run_id", results.RunID, "cases", len(r.cases),
		"backends", results.Backends, "limit", r.cfg.Limit, "repeats", r.cfg.Repeats)

	for _, c := range r.cases {
		cr := r.runCase(ctx, c)
		results.Cases = append(results.Cases, cr)
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("bench: run aborted: %w", err)
		}
	}

	if r.cfg.Repeats > 1 {
		results.Stats = make(map[string]map[string]*LatencyStats, len(results.Cases))
		for _, cr := range results.Cases {
			results.Stats[cr.Case.Name] = r.summarizeCase(cr)
		}
	}

	results.Finished = time.Now().UTC()
	r.log.Info("benchmark finished", "run_id", results.RunID,
		"duration", results.Finished.Sub(results.Started).String())
	return results, nil
}

func (r *Runner) runCase(ctx context.Context, c *Case) *CaseResult {
	cr := &CaseResult{Case: c, Rows: make(map[string][]Row)}

	for _, b := range r.backends {
		for run := 1; run <= r.cfg.Repeats; run++ {
			exec, rows := r.execute(ctx, b, c, run)
			cr.Executions = append(cr.Executions, exec)
			if exec.Success && run == 1 {
				cr.Rows[b.Name()] = rows
			}
		}
	}

	if r.cfg.Repeats == 1 && !r.cfg.SkipComparison {
		r.compareCase(cr)
	}
	return cr
}

func (r *Runner) execute(ctx context.Context, b Backend, c *Case, run int) (Execution, []Row) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
	defer cancel()

	started := time.Now()
	rows, err := b.Run(callCtx, c, r.cfg.Limit)
	elapsed := time.Since(started)

	exec := Execution{
		Case:       c.Name,
		Backend:    b.Name(),
		Run:        run,
		DurationMS: float64(elapsed.Microseconds()) / 1000,
		Timestamp:  started.UTC(),
	}
	if err != nil {
		exec.Error = err.Error()
		r.log.Warn("query failed", "case", c.Name, "backend", b.Name(), "run", run, "error", err)
		return exec, nil
	}

	normalized := make([]Row, len(rows))
	for i, row := range rows {
		normalized[i] = NormalizeRow(row)
	}
	exec.Success = true
	exec.RowCount = len(normalized)
	r.log.Info("query executed",
		"case", c.Name, "backend", b.Name(), "run", run,
		"rows", exec.RowCount, "ms", exec.DurationMS)
	return exec, normalized
}

// compareCase diffs every pair of backends that returned a result. Fewer
// than two successes means comparison is skipped, not failed.
func (r *Runner) compareCase(cr *CaseResult) {
	var succeeded []string
	for _, b := range r.backends {
		if _, ok := cr.Rows[b.Name()]; ok {
			succeeded = append(succeeded, b.Name())
		}
	}
	if len(succeeded) < 2 {
		cr.SkipReason = "Insufficient successful results"
		r.log.Warn("comparison skipped", "case", cr.Case.Name, "successful_backends", len(succeeded))
		return
	}

	cr.Compared = true
	cr.AllMatch = true
	for i := 0; i < len(succeeded); i++ {
		for j := i + 1; j < len(succeeded); j++ {
			cmp := Compare(
				succeeded[i], cr.Rows[succeeded[i]],
				succeeded[j], cr.Rows[succeeded[j]],
				r.cfg.SampleSize, r.cfg.MismatchCap)
			cr.Comparisons = append(cr.Comparisons, cmp)
			if !cmp.Match {
				cr.AllMatch = false
				r.log.Warn("result mismatch",
					"case", cr.Case.Name,
					"reference", cmp.Reference, "candidate", cmp.Candidate,
					"issues", len(cmp.Issues))
			}
		}
	}
	if cr.AllMatch {
		r.log.Info("results consistent", "case", cr.Case.Name, "backends", succeeded)
	}
}

func (r *Runner) summarizeCase(cr *CaseResult) map[string]*LatencyStats {
	byBackend := make(map[string][]Execution)
	for _, e := range cr.Executions {
		byBackend[e.Backend] = append(byBackend[e.Backend], e)
	}
	out := make(map[string]*LatencyStats, len(byBackend))
	for name, execs := range byBackend {
		out[name] = Summarize(execs)
	}
	return out
}
