package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KonSprin/ztbd/internal/platform/logger"
)

// WriteReports emits every report artifact under outputDir: the raw
// execution CSV, a statistics CSV when the run repeated, and JSON plus
// Markdown summaries. Returns the paths written.
func WriteReports(results *Results, outputDir string, log *logger.Logger) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("bench: report dir: %w", err)
	}
	stamp := results.Started.Format("20060102_150405")
	tag := fmt.Sprintf("%d_%s", results.Limit, stamp)

	var paths []string

	rawPath := filepath.Join(outputDir, fmt.Sprintf("raw_results_%s.csv", tag))
	if err := writeRawCSV(rawPath, results); err != nil {
		return nil, err
	}
	paths = append(paths, rawPath)
	log.Info("raw results written", "path", rawPath)

	if results.Repeats > 1 {
		statsPath := filepath.Join(outputDir, fmt.Sprintf("statistics_%s.csv", tag))
		if err := writeStatsCSV(statsPath, results); err != nil {
			return nil, err
		}
		paths = append(paths, statsPath)
		log.Info("statistics written", "path", statsPath)
	}

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("test_results_%s.json", tag))
	if err := writeJSON(jsonPath, results); err != nil {
		return nil, err
	}
	paths = append(paths, jsonPath)
	log.Info("json report written", "path", jsonPath)

	mdPath := filepath.Join(outputDir, fmt.Sprintf("test_results_%s.md", tag))
	if err := writeMarkdown(mdPath, results); err != nil {
		return nil, err
	}
	paths = append(paths, mdPath)
	log.Info("markdown report written", "path", mdPath)

	return paths, nil
}

func writeRawCSV(path string, results *Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: raw csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"test_name", "database", "run_number",
		"execution_time_ms", "row_count", "success", "error", "timestamp",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("bench: raw csv: %w", err)
	}
	for _, cr := range results.Cases {
		for _, e := range cr.Executions {
			record := []string{
				e.Case,
				e.Backend,
				strconv.Itoa(e.Run),
				strconv.FormatFloat(e.DurationMS, 'f', 3, 64),
				strconv.Itoa(e.RowCount),
				strconv.FormatBool(e.Success),
				e.Error,
				e.Timestamp.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("bench: raw csv: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeStatsCSV(path string, results *Results) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: stats csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"test_name", "database",
		"mean_ms", "median_ms", "std_ms", "min_ms", "max_ms",
		"successes", "failures", "success_rate", "avg_row_count",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("bench: stats csv: %w", err)
	}
	for _, cr := range results.Cases {
		byBackend := results.Stats[cr.Case.Name]
		for _, backend := range results.Backends {
			s, ok := byBackend[backend]
			if !ok {
				continue
			}
			record := []string{
				cr.Case.Name,
				backend,
				fmtStat(s.MeanMS),
				fmtStat(s.MedianMS),
				fmtStat(s.StdDevMS),
				fmtStat(s.MinMS),
				fmtStat(s.MaxMS),
				strconv.Itoa(s.Successes),
				strconv.Itoa(s.Failures),
				strconv.FormatFloat(s.SuccessRate, 'f', 3, 64),
				fmtStat(s.MeanRowCount),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("bench: stats csv: %w", err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

func fmtStat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

type jsonReport struct {
	RunID           string                 `json:"run_id"`
	Timestamp       string                 `json:"timestamp"`
	DatabasesTested []string               `json:"databases_tested"`
	TotalTests      int                    `json:"total_tests"`
	Limit           int                    `json:"limit"`
	Repeats         int                    `json:"repeats"`
	Tests           []jsonTest             `json:"tests"`
	Comparisons     []jsonComparison       `json:"comparisons,omitempty"`
}

type jsonTest struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Results     map[string]jsonResult        `json:"results"`
	Statistics  map[string]*LatencyStats     `json:"statistics,omitempty"`
}

type jsonResult struct {
	RowCount        int     `json:"row_count"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
	Success         bool    `json:"success"`
	Error           string  `json:"error,omitempty"`
}

type jsonComparison struct {
	TestName           string   `json:"test_name"`
	ComparisonPossible bool     `json:"comparison_possible"`
	Reason             string   `json:"reason,omitempty"`
	AllMatch           bool     `json:"all_match"`
	Pairs              []string `json:"pairs,omitempty"`
	Issues             []string `json:"issues,omitempty"`
}

func writeJSON(path string, results *Results) error {
	report := jsonReport{
		RunID:           results.RunID,
		Timestamp:       results.Started.Format("20060102_150405"),
		DatabasesTested: results.Backends,
		TotalTests:      len(results.Cases),
		Limit:           results.Limit,
		Repeats:         results.Repeats,
	}

	for _, cr := range results.Cases {
		test := jsonTest{
			Name:        cr.Case.Name,
			Description: cr.Case.Description,
			Results:     make(map[string]jsonResult),
		}
		// Executions are ordered by run per backend; the last run wins.
		for _, e := range cr.Executions {
			test.Results[e.Backend] = jsonResult{
				RowCount:        e.RowCount,
				ExecutionTimeMS: e.DurationMS,
				Success:         e.Success,
				Error:           e.Error,
			}
		}
		if results.Stats != nil {
			test.Statistics = results.Stats[cr.Case.Name]
		}
		report.Tests = append(report.Tests, test)

		switch {
		case cr.Compared:
			jc := jsonComparison{TestName: cr.Case.Name, ComparisonPossible: true, AllMatch: cr.AllMatch}
			for _, cmp := range cr.Comparisons {
				jc.Pairs = append(jc.Pairs, fmt.Sprintf("%s/%s", cmp.Reference, cmp.Candidate))
				jc.Issues = append(jc.Issues, cmp.Issues...)
			}
			report.Comparisons = append(report.Comparisons, jc)
		case cr.SkipReason != "":
			report.Comparisons = append(report.Comparisons, jsonComparison{
				TestName: cr.Case.Name,
				Reason:   cr.SkipReason,
			})
		}
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("bench: json report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("bench: json report: %w", err)
	}
	return nil
}

func writeMarkdown(path string, results *Results) error {
	var b strings.Builder
	b.WriteString("# Database Performance Test Results\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", results.Started.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Databases Tested:** %s\n\n", strings.Join(results.Backends, ", "))
	fmt.Fprintf(&b, "**Total Tests:** %d\n\n", len(results.Cases))
	fmt.Fprintf(&b, "**Result Limit:** %d\n\n", results.Limit)
	fmt.Fprintf(&b, "**Repeats per Test:** %d\n\n", results.Repeats)

	b.WriteString("## Test Results\n\n")
	for _, cr := range results.Cases {
		fmt.Fprintf(&b, "### %s\n\n*%s*\n\n", cr.Case.Name, cr.Case.Description)

		if results.Repeats == 1 {
			b.WriteString("| Database | Rows | Time (ms) | Status |\n")
			b.WriteString("|----------|------|-----------|--------|\n")
			for _, e := range cr.Executions {
				status := "ok"
				if !e.Success {
					status = "failed: " + e.Error
				}
				fmt.Fprintf(&b, "| %s | %d | %.2f | %s |\n", e.Backend, e.RowCount, e.DurationMS, status)
			}
		} else {
			b.WriteString("| Database | Mean (ms) | Std (ms) | Min (ms) | Max (ms) | Success Rate |\n")
			b.WriteString("|----------|-----------|----------|----------|----------|-------------|\n")
			for _, backend := range results.Backends {
				s := results.Stats[cr.Case.Name][backend]
				if s == nil {
					continue
				}
				if s.MeanMS == nil {
					fmt.Fprintf(&b, "| %s | failed | - | - | - | 0%% |\n", backend)
					continue
				}
				fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %.0f%% |\n",
					backend, *s.MeanMS, *s.StdDevMS, *s.MinMS, *s.MaxMS, s.SuccessRate*100)
			}
		}
		b.WriteString("\n")
	}

	var compared bool
	for _, cr := range results.Cases {
		if cr.Compared || cr.SkipReason != "" {
			compared = true
			break
		}
	}
	if compared {
		b.WriteString("## Result Comparisons\n\n")
		for _, cr := range results.Cases {
			if !cr.Compared {
				if cr.SkipReason != "" {
					fmt.Fprintf(&b, "### %s\n\n- **Comparison skipped:** %s\n\n", cr.Case.Name, cr.SkipReason)
				}
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n", cr.Case.Name)
			if cr.AllMatch {
				b.WriteString("- **All backends match:** yes\n\n")
				continue
			}
			b.WriteString("- **All backends match:** no\n")
			for _, cmp := range cr.Comparisons {
				if cmp.Match {
					continue
				}
				fmt.Fprintf(&b, "- **%s vs %s:**\n", cmp.Reference, cmp.Candidate)
				for _, issue := range cmp.Issues {
					fmt.Fprintf(&b, "  - %s\n", issue)
				}
			}
			b.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("bench: markdown report: %w", err)
	}
	return nil
}
