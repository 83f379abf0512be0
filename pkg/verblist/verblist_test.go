package verblist

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

func TestLoadVerbsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verbs.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffSer, ir,falar\ncomer,, ir \n"), 0o644))

	verbs, err := LoadVerbs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"comer", "falar", "ir", "ser"}, verbs)
}

func TestParseVerbsJSON(t *testing.T) {
	verbs, err := ParseVerbs([]byte(`["ter", "Haver", "ter"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"haver", "ter"}, verbs)

	verbs, err = ParseVerbs([]byte(`{"verbs": ["pôr"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"pôr"}, verbs)

	_, err = ParseVerbs([]byte(`[1, 2]`))
	assert.Error(t, err)
}

func TestLoadVerbsMissingFile(t *testing.T) {
	_, err := LoadVerbs(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTaskMatrixAndSplit(t *testing.T) {
	tasks := TaskMatrix([]string{"ir"})
	assert.Len(t, tasks, len(grammar.GoldStandard))
	assert.NoError(t, grammar.ValidateTasks(tasks))

	valid, invalid := Split([]string{"ir", "r2d2", "ser"})
	assert.Equal(t, []string{"ir", "ser"}, valid)
	assert.Equal(t, []string{"r2d2"}, invalid)
}

func TestCoverage(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.InitDB(conn))
	ctx := context.Background()

	verbID, err := db.CreateOrGetVerb(ctx, conn, "ir")
	require.NoError(t, err)
	modeID, err := db.CreateOrGetMode(ctx, conn, "Indicativo")
	require.NoError(t, err)
	tenseID, err := db.CreateOrGetTense(ctx, conn, "Presente", modeID)
	require.NoError(t, err)
	for i, p := range grammar.Persons {
		if p == "vós" {
			continue
		}
		pid, err := db.CreateOrGetPerson(ctx, conn, p, i)
		require.NoError(t, err)
		_, err = db.InsertConjugation(ctx, conn, verbID, tenseID, pid, p+" x")
		require.NoError(t, err)
	}

	gaps, err := Coverage(ctx, conn, "ir")
	require.NoError(t, err)
	require.Len(t, gaps, len(grammar.GoldStandard))
	assert.Equal(t, Gap{Mode: "Indicativo", Tense: "Presente", Have: 5, Missing: []string{"vós"}}, gaps[0])
	assert.Equal(t, 0, gaps[1].Have)
	assert.Len(t, gaps[1].Missing, 6)
}
