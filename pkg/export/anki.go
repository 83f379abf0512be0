// Package export renders stored conjugations as Anki import files.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

// BOM is written ahead of downloads so spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

// secondPerson lists the persons dropped by Brazilian-oriented output.
var secondPerson = map[string]bool{"tu": true, "vós": true}

// FilterDialect drops tu and vós when skipTuVos is set. Stored rows are never
// filtered; this applies to output only.
func FilterDialect(rows []db.ConjugationRow, skipTuVos bool) []db.ConjugationRow {
	if !skipTuVos {
		return rows
	}
	out := make([]db.ConjugationRow, 0, len(rows))
	for _, r := range rows {
		if !secondPerson[r.Person] {
			out = append(out, r)
		}
	}
	return out
}

// Record builds the three-column card: infinitive, the forms one per line,
// and the "<Mode> <Tense>" tag.
func Record(infinitive, mode, tense string, rows []db.ConjugationRow, skipTuVos bool) []string {
	rows = FilterDialect(rows, skipTuVos)
	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.Value
	}
	return []string{infinitive, strings.Join(values, "\n"), mode + " " + tense}
}

// VerbCSV renders a single card as CSV.
func VerbCSV(infinitive, mode, tense string, rows []db.ConjugationRow, skipTuVos bool) string {
	var b strings.Builder
	_ = WriteCSV(&b, [][]string{Record(infinitive, mode, tense, rows, skipTuVos)})
	return b.String()
}

// WriteCSV writes records with every field quoted and "\n" line endings.
// encoding/csv only quotes fields that need it, which Anki's importer
// handles inconsistently for multi-line fields.
func WriteCSV(w io.Writer, records [][]string) error {
	for _, rec := range records {
		quoted := make([]string, len(rec))
		for i, f := range rec {
			quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// BatchCSV renders one card per task that has stored rows. It returns the
// number of cards written.
func BatchCSV(ctx context.Context, q db.DBExecutor, w io.Writer, tasks []grammar.Task, skipTuVos bool) (int, error) {
	var records [][]string
	for _, t := range tasks {
		t = t.Normalize()
		rows, err := db.ConjugationsFor(ctx, q, t.Verb, t.Mode, t.Tense)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", t, err)
		}
		if len(rows) == 0 {
			continue
		}
		records = append(records, Record(t.Verb, t.Mode, t.Tense, rows, skipTuVos))
	}
	if err := WriteCSV(w, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Filename picks the download name: custom when given, otherwise
// "<infinitive>_<mode>_<tense>", lower-cased with spaces as underscores.
func Filename(custom, infinitive, mode, tense string) string {
	name := strings.TrimSpace(custom)
	if name == "" {
		name = infinitive + "_" + mode + "_" + tense
	}
	name = strings.TrimSuffix(name, ".csv") + ".csv"
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
