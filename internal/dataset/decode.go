package dataset

import (
	"encoding/json"
	"strconv"
	"strings"
)

// StringList decodes a denormalized column that may hold a JSON list, a
// JSON scalar, a Python-style quoted list, or a bare string. Empty and
// null-ish values decode to nil; malformed entries fall back to treating
// the raw text as a single value.
func StringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if isNullish(raw) {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return dropEmpty(list)
	}
	var scalar string
	if err := json.Unmarshal([]byte(raw), &scalar); err == nil {
		scalar = strings.TrimSpace(scalar)
		if scalar == "" {
			return nil
		}
		return []string{scalar}
	}
	if fixed, ok := requoted(raw); ok {
		if err := json.Unmarshal([]byte(fixed), &list); err == nil {
			return dropEmpty(list)
		}
	}
	return []string{raw}
}

// TagVotes decodes the tag->vote-count map column. Vote counts may arrive
// as numbers or numeric strings; anything unparseable counts as zero.
func TagVotes(raw string) map[string]int64 {
	raw = strings.TrimSpace(raw)
	if isNullish(raw) {
		return nil
	}

	var obj map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		fixed, ok := requoted(raw)
		if !ok {
			return nil
		}
		if err := json.Unmarshal([]byte(fixed), &obj); err != nil {
			return nil
		}
	}
	if len(obj) == 0 {
		return nil
	}
	out := make(map[string]int64, len(obj))
	for tag, votes := range obj {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out[tag] = numberToInt(votes)
	}
	return out
}

func isNullish(raw string) bool {
	switch raw {
	case "", "null", "None", "[]", "{}", "nan", "NaN":
		return true
	}
	return false
}

func dropEmpty(list []string) []string {
	out := list[:0]
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// requoted converts single-quoted Python literals ('RPG', 'Co-op') into
// JSON. Values containing single quotes as apostrophes cannot be recovered
// this way and are rejected.
func requoted(raw string) (string, bool) {
	if !strings.Contains(raw, "'") {
		return "", false
	}
	if strings.Contains(raw, `"`) {
		return "", false
	}
	return strings.ReplaceAll(raw, "'", `"`), true
}

func numberToInt(n json.Number) int64 {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	if i, err := strconv.ParseInt(strings.TrimSpace(n.String()), 10, 64); err == nil {
		return i
	}
	return 0
}
