package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

func falarRows() []db.ConjugationRow {
	values := []string{"eu falo", "tu falas", "ele fala", "nós falamos", "vós falais", "eles falam"}
	rows := make([]db.ConjugationRow, len(values))
	for i, v := range values {
		rows[i] = db.ConjugationRow{Mode: "Indicativo", Tense: "Presente", Person: grammar.Persons[i], SortOrder: i, Value: v}
	}
	return rows
}

func TestVerbCSV(t *testing.T) {
	got := VerbCSV("falar", "Indicativo", "Presente", falarRows(), false)
	want := "\"falar\",\"eu falo\ntu falas\nele fala\nnós falamos\nvós falais\neles falam\",\"Indicativo Presente\"\n"
	assert.Equal(t, want, got)
}

func TestVerbCSVSkipTuVos(t *testing.T) {
	got := VerbCSV("falar", "Indicativo", "Presente", falarRows(), true)
	want := "\"falar\",\"eu falo\nele fala\nnós falamos\neles falam\",\"Indicativo Presente\"\n"
	assert.Equal(t, want, got)
}

func TestFilterDialectLeavesInputAlone(t *testing.T) {
	rows := falarRows()
	filtered := FilterDialect(rows, true)
	assert.Len(t, filtered, 4)
	assert.Len(t, rows, 6)
	assert.Equal(t, "tu", rows[1].Person)
}

func TestWriteCSVEscapesQuotes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, [][]string{{`say "oi"`, ""}}))
	assert.Equal(t, "\"say \"\"oi\"\"\",\"\"\n", buf.String())
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "falar_indicativo_pretérito_perfeito.csv", Filename("", "falar", "Indicativo", "Pretérito Perfeito"))
	assert.Equal(t, "my_deck.csv", Filename(" My Deck ", "falar", "Indicativo", "Presente"))
	assert.Equal(t, "deck.csv", Filename("deck.csv", "falar", "Indicativo", "Presente"))
}

func TestBatchCSVSkipsMissingTasks(t *testing.T) {
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
	for i, v := range []string{"eu vou", "tu vais"} {
		pid, err := db.CreateOrGetPerson(ctx, conn, grammar.Persons[i], i)
		require.NoError(t, err)
		_, err = db.InsertConjugation(ctx, conn, verbID, tenseID, pid, v)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	n, err := BatchCSV(ctx, conn, &buf, []grammar.Task{
		{Verb: "IR", Mode: "Indicativo", Tense: "Presente"},
		{Verb: "ser", Mode: "Indicativo", Tense: "Presente"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "\"ir\",\"eu vou\ntu vais\",\"Indicativo Presente\"\n", buf.String())
}
