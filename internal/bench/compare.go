package bench

import (
	"fmt"
	"math"
	"sort"
)

const numericTolerance = 0.01

// Comparison is the result of diffing one backend's rows against another's
// for a single case. Rows must already be normalized.
type Comparison struct {
	Reference string
	Candidate string
	Match     bool
	Issues    []string
}

// Compare diffs candidate rows against reference rows. A row-count mismatch
// short-circuits row-level comparison; a field-set mismatch between the
// first rows is reported as a symmetric difference; otherwise the first
// sampleSize rows are compared positionally on the common fields, numeric
// values within an absolute tolerance of 0.01. Value mismatches are
// collected up to mismatchCap, then summarized as "+N more".
func Compare(refName string, ref []Row, candName string, cand []Row, sampleSize, mismatchCap int) *Comparison {
	c := &Comparison{Reference: refName, Candidate: candName, Match: true}

	if len(ref) != len(cand) {
		c.fail(fmt.Sprintf("row count mismatch: %s=%d %s=%d", refName, len(ref), candName, len(cand)))
		return c
	}
	if len(ref) == 0 {
		return c
	}

	missing, extra := fieldDiff(ref[0], cand[0])
	if len(missing) > 0 || len(extra) > 0 {
		c.fail(fmt.Sprintf("field set mismatch: only in %s %v, only in %s %v", refName, missing, candName, extra))
	}
	common := commonFields(ref[0], cand[0])

	sample := sampleSize
	if sample > len(ref) {
		sample = len(ref)
	}

	var mismatches []string
	for i := 0; i < sample; i++ {
		for _, field := range common {
			rv, cv := ref[i][field], cand[i][field]
			if valuesEqual(rv, cv) {
				continue
			}
			mismatches = append(mismatches,
				fmt.Sprintf("row %d field %s: %s=%v %s=%v", i, field, refName, rv, candName, cv))
		}
	}
	if len(mismatches) > 0 {
		capped := mismatches
		if len(capped) > mismatchCap {
			capped = append(capped[:mismatchCap:mismatchCap],
				fmt.Sprintf("+%d more", len(mismatches)-mismatchCap))
		}
		c.Match = false
		c.Issues = append(c.Issues, capped...)
	}
	return c
}

func (c *Comparison) fail(issue string) {
	c.Match = false
	c.Issues = append(c.Issues, issue)
}

func fieldDiff(a, b Row) (onlyA, onlyB []string) {
	for k := range a {
		if _, ok := b[k]; !ok {
			onlyA = append(onlyA, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			onlyB = append(onlyB, k)
		}
	}
	sort.Strings(onlyA)
	sort.Strings(onlyB)
	return onlyA, onlyB
}

func commonFields(a, b Row) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// valuesEqual compares two normalized values; numbers of any kind compare
// within the tolerance, everything else by equality.
func valuesEqual(a, b any) bool {
	af, aNum := asFloat(a)
	bf, bNum := asFloat(b)
	if aNum && bNum {
		return math.Abs(af-bf) <= numericTolerance
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}
