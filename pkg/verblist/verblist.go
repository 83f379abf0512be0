// Package verblist reads verb list files and plans bulk scrape work.
package verblist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

// LoadVerbs reads a verb list file. Comma or newline separated text and JSON
// (an array, or an object with a "verbs" array) are accepted.
func LoadVerbs(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseVerbs(raw)
}

// ParseVerbs returns the unique, trimmed, lower-cased verbs in raw, sorted.
func ParseVerbs(raw []byte) ([]string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	trimmed := bytes.TrimSpace(raw)

	var items []string
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		var wrapper struct {
			Verbs []string `json:"verbs"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse verb list object: %w", err)
		}
		items = wrapper.Verbs
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse verb list array: %w", err)
		}
	default:
		items = strings.FieldsFunc(string(trimmed), func(r rune) bool {
			return r == ',' || r == '\n' || r == '\r'
		})
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		v := strings.ToLower(strings.TrimSpace(it))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// TaskMatrix expands verbs against the gold standard.
func TaskMatrix(verbs []string) []grammar.Task {
	return grammar.Tasks(verbs, grammar.GoldStandard)
}

// Split separates verbs that pass validation from those that do not.
func Split(verbs []string) (valid, invalid []string) {
	for _, v := range verbs {
		if grammar.ValidVerb(v) {
			valid = append(valid, v)
		} else {
			invalid = append(invalid, v)
		}
	}
	return valid, invalid
}

// Gap is a gold-standard combination with fewer than six stored persons.
type Gap struct {
	Mode    string
	Tense   string
	Have    int
	Missing []string
}

// Coverage reports the gold-standard combinations verb is missing persons for.
// An empty result means the verb is complete.
func Coverage(ctx context.Context, q db.DBExecutor, verb string) ([]Gap, error) {
	var gaps []Gap
	for _, e := range grammar.GoldStandard {
		rows, err := db.ConjugationsFor(ctx, q, verb, e.Mode, e.Tense)
		if err != nil {
			return nil, fmt.Errorf("coverage %s %s/%s: %w", verb, e.Mode, e.Tense, err)
		}
		if len(rows) >= len(grammar.Persons) {
			continue
		}
		have := make(map[string]bool, len(rows))
		for _, r := range rows {
			have[r.Person] = true
		}
		gap := Gap{Mode: e.Mode, Tense: e.Tense, Have: len(rows)}
		for _, p := range grammar.Persons {
			if !have[p] {
				gap.Missing = append(gap.Missing, p)
			}
		}
		gaps = append(gaps, gap)
	}
	return gaps, nil
}
