package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an insert rejected by a unique constraint.
	ErrConflict = errors.New("unique constraint conflict")
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

const maxRetries = 3

// createOrGet looks a row up by lookupQuery and inserts it with insertQuery when
// absent. A unique-constraint failure on insert means another writer committed
// the row first; the failed statement is discarded and the lookup repeated.
func createOrGet(ctx context.Context, db DBExecutor, entity, lookupQuery string, lookupArgs []any, insertQuery string, insertArgs []any) (int64, error) {
	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRowContext(ctx, lookupQuery, lookupArgs...).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("lookup %s: %w", entity, err)
		}

		res, err := db.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, fmt.Errorf("insert %s: %w", entity, err)
		}
		return res.LastInsertId()
	}
	return 0, fmt.Errorf("could not create or get %s after %d retries: %w", entity, maxRetries, ErrConflict)
}

// CreateOrGetVerb returns the id of the verb with the given infinitive, inserting it if needed.
func CreateOrGetVerb(ctx context.Context, db DBExecutor, infinitive string) (int64, error) {
	trimmed := strings.TrimSpace(infinitive)
	if trimmed == "" {
		return 0, fmt.Errorf("infinitive must be non-empty")
	}
	return createOrGet(ctx, db, "verb",
		`SELECT id FROM verbs WHERE infinitive = ?`, []any{trimmed},
		`INSERT INTO verbs (infinitive, created_at) VALUES (?, ?)`, []any{trimmed, time.Now().UTC()},
	)
}

// CreateOrGetMode returns the id of the named mode, inserting it if needed.
func CreateOrGetMode(ctx context.Context, db DBExecutor, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("mode name must be non-empty")
	}
	return createOrGet(ctx, db, "mode",
		`SELECT id FROM modes WHERE name = ?`, []any{name},
		`INSERT INTO modes (name) VALUES (?)`, []any{name},
	)
}

// CreateOrGetTense returns the id of the tense keyed by (name, modeID), inserting it if needed.
func CreateOrGetTense(ctx context.Context, db DBExecutor, name string, modeID int64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("tense name must be non-empty")
	}
	if modeID <= 0 {
		return 0, fmt.Errorf("modeID must be positive")
	}
	return createOrGet(ctx, db, "tense",
		`SELECT id FROM tenses WHERE name = ? AND mode_id = ?`, []any{name, modeID},
		`INSERT INTO tenses (name, mode_id) VALUES (?, ?)`, []any{name, modeID},
	)
}

// CreateOrGetPerson returns the id of the named person, inserting it with sortOrder if needed.
// An existing person keeps its original sort order.
func CreateOrGetPerson(ctx context.Context, db DBExecutor, name string, sortOrder int) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("person name must be non-empty")
	}
	return createOrGet(ctx, db, "person",
		`SELECT id FROM persons WHERE name = ?`, []any{name},
		`INSERT INTO persons (name, sort_order) VALUES (?, ?)`, []any{name, sortOrder},
	)
}

// ConjugationExists reports whether a conjugation is stored for the triple.
func ConjugationExists(ctx context.Context, db DBExecutor, verbID, tenseID, personID int64) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM conjugations WHERE verb_id = ? AND tense_id = ? AND person_id = ?`,
		verbID, tenseID, personID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertConjugation stores value for the triple. Existing rows are never
// updated; inserted is false when the triple was already present.
func InsertConjugation(ctx context.Context, db DBExecutor, verbID, tenseID, personID int64, value string) (inserted bool, err error) {
	if verbID <= 0 || tenseID <= 0 || personID <= 0 {
		return false, fmt.Errorf("verbID, tenseID and personID must be positive")
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO conjugations (value, verb_id, tense_id, person_id) VALUES (?, ?, ?, ?)
		 ON CONFLICT (verb_id, tense_id, person_id) DO NOTHING`,
		value, verbID, tenseID, personID,
	)
	if err != nil {
		return false, fmt.Errorf("insert conjugation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetVerbByInfinitive returns the verb row or ErrNotFound.
func GetVerbByInfinitive(ctx context.Context, db DBExecutor, infinitive string) (Verb, error) {
	var v Verb
	err := db.QueryRowContext(ctx,
		`SELECT id, infinitive, created_at FROM verbs WHERE infinitive = ?`,
		strings.TrimSpace(infinitive),
	).Scan(&v.ID, &v.Infinitive, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Verb{}, fmt.Errorf("verb %q: %w", infinitive, ErrNotFound)
	}
	if err != nil {
		return Verb{}, err
	}
	return v, nil
}

const conjugationRowSelect = `SELECT m.name, t.name, p.name, p.sort_order, c.value
	FROM conjugations c
	JOIN tenses t ON t.id = c.tense_id
	JOIN modes m ON m.id = t.mode_id
	JOIN persons p ON p.id = c.person_id`

// ListConjugations returns every conjugation of a verb ordered by mode, tense and person.
func ListConjugations(ctx context.Context, db DBExecutor, verbID int64) ([]ConjugationRow, error) {
	rows, err := db.QueryContext(ctx,
		conjugationRowSelect+` WHERE c.verb_id = ? ORDER BY m.id, t.id, p.sort_order`,
		verbID,
	)
	if err != nil {
		return nil, err
	}
	return scanConjugationRows(rows)
}

// ConjugationsFor returns the stored conjugations of one (verb, mode, tense) ordered by person.
func ConjugationsFor(ctx context.Context, db DBExecutor, infinitive, mode, tense string) ([]ConjugationRow, error) {
	rows, err := db.QueryContext(ctx,
		conjugationRowSelect+`
		JOIN verbs v ON v.id = c.verb_id
		WHERE v.infinitive = ? AND m.name = ? AND t.name = ?
		ORDER BY p.sort_order`,
		strings.TrimSpace(infinitive), mode, tense,
	)
	if err != nil {
		return nil, err
	}
	return scanConjugationRows(rows)
}

func scanConjugationRows(rows *sql.Rows) ([]ConjugationRow, error) {
	defer rows.Close()
	var out []ConjugationRow
	for rows.Next() {
		var r ConjugationRow
		if err := rows.Scan(&r.Mode, &r.Tense, &r.Person, &r.SortOrder, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVerb removes a verb and, by cascade, its conjugations. Modes, tenses
// and persons are shared reference data and are left alone.
func DeleteVerb(ctx context.Context, db DBExecutor, infinitive string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM verbs WHERE infinitive = ?`, strings.TrimSpace(infinitive))
	if err != nil {
		return fmt.Errorf("delete verb: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("verb %q: %w", infinitive, ErrNotFound)
	}
	return nil
}
