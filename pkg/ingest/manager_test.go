package ingest

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/conjugador/pkg/db"
)

type fakeResolver struct {
	resolve func(ctx context.Context, verb, mode, tense string) ([]string, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, verb, mode, tense string) ([]string, error) {
	return f.resolve(ctx, verb, mode, tense)
}

func staticResolver(forms []string) *fakeResolver {
	return &fakeResolver{resolve: func(context.Context, string, string, string) ([]string, error) {
		out := make([]string, len(forms))
		copy(out, forms)
		return out, nil
	}}
}

var comerPresente = []string{"eu como", "tu comes", "ele come", "nós comemos", "vós comeis", "eles comem"}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitDB(conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

// setupFileDB is used where several connections must see the same data.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "conjugador.db"))
	require.NoError(t, err)
	require.NoError(t, db.InitDB(conn))
	t.Cleanup(func() { conn.Close() })
	return conn
}

func count(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func newTestManager(conn *sql.DB, r Resolver) *Manager {
	m := NewManager(conn, r, nil)
	m.JitterMin, m.JitterMax = 0, 0
	return m
}

func TestPersistComer(t *testing.T) {
	conn := setupDB(t)
	m := newTestManager(conn, staticResolver(comerPresente))
	ctx := context.Background()

	require.True(t, m.Persist(ctx, "comer", "Indicativo", "Presente"))

	rows, err := db.ConjugationsFor(ctx, conn, "comer", "Indicativo", "Presente")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	byPerson := map[string]string{}
	for _, r := range rows {
		byPerson[r.Person] = r.Value
	}
	assert.Equal(t, "eu como", byPerson["eu"])
	assert.Equal(t, "vós comeis", byPerson["vós"])
	assert.Equal(t, "eles comem", byPerson["eles/elas/vocês"])
}

func TestPersistIsIdempotent(t *testing.T) {
	conn := setupDB(t)
	m := newTestManager(conn, staticResolver(comerPresente))
	ctx := context.Background()

	require.True(t, m.Persist(ctx, "comer", "Indicativo", "Presente"))
	require.True(t, m.Persist(ctx, "Comer ", "Indicativo", "Presente"))

	assert.Equal(t, 1, count(t, conn, "verbs"))
	assert.Equal(t, 6, count(t, conn, "conjugations"))
	assert.Equal(t, 6, count(t, conn, "persons"))
}

func TestPersistDoesNotOverwrite(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()
	require.True(t, newTestManager(conn, staticResolver(comerPresente)).Persist(ctx, "comer", "Indicativo", "Presente"))

	changed := append([]string{"eu CHANGED"}, comerPresente[1:]...)
	require.True(t, newTestManager(conn, staticResolver(changed)).Persist(ctx, "comer", "Indicativo", "Presente"))

	rows, err := db.ConjugationsFor(ctx, conn, "comer", "Indicativo", "Presente")
	require.NoError(t, err)
	assert.Equal(t, "eu como", rows[0].Value)
}

func TestPersistTotalFailureWritesNothing(t *testing.T) {
	conn := setupDB(t)
	r := &fakeResolver{resolve: func(context.Context, string, string, string) ([]string, error) {
		return nil, errors.New("all sources failed")
	}}
	m := newTestManager(conn, r)

	assert.False(t, m.Persist(context.Background(), "xyzzy", "Indicativo", "Presente"))
	assert.Zero(t, count(t, conn, "verbs"))
	assert.Zero(t, count(t, conn, "modes"))
	assert.Zero(t, count(t, conn, "conjugations"))
}

func TestPersistRollsBackOnStoreError(t *testing.T) {
	conn := setupDB(t)
	m := newTestManager(conn, staticResolver(comerPresente))

	// An empty mode name is rejected after the verb row was written in the tx.
	assert.False(t, m.Persist(context.Background(), "comer", "", "Presente"))
	assert.Zero(t, count(t, conn, "verbs"))
}

func TestPersistRecoversResolverPanic(t *testing.T) {
	conn := setupDB(t)
	r := &fakeResolver{resolve: func(context.Context, string, string, string) ([]string, error) {
		panic("nil node")
	}}
	assert.False(t, newTestManager(conn, r).Persist(context.Background(), "ir", "Indicativo", "Presente"))
}

func TestPersistImperativoOffset(t *testing.T) {
	conn := setupDB(t)
	forms := []string{"come tu", "coma você", "comamos nós", "comei vós", "comam vocês"}
	m := newTestManager(conn, staticResolver(forms))
	ctx := context.Background()

	require.True(t, m.Persist(ctx, "comer", "Imperativo", "Afirmativo"))

	rows, err := db.ConjugationsFor(ctx, conn, "comer", "Imperativo", "Afirmativo")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "tu", rows[0].Person)
	assert.Equal(t, "come tu", rows[0].Value)
	assert.Equal(t, 1, rows[0].SortOrder)
	for _, r := range rows {
		assert.NotEqual(t, "eu", r.Person)
	}
}

func TestPersistConcurrentSameTaskConverges(t *testing.T) {
	conn := setupFileDB(t)
	m := newTestManager(conn, staticResolver(comerPresente))

	const n = 6
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Persist(context.Background(), "comer", "Indicativo", "Presente")
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "caller %d", i)
	}
	assert.Equal(t, 1, count(t, conn, "verbs"))
	assert.Equal(t, 1, count(t, conn, "tenses"))
	assert.Equal(t, 6, count(t, conn, "conjugations"))
}

func TestPersistConcurrentSharesReferenceRows(t *testing.T) {
	conn := setupFileDB(t)
	r := &fakeResolver{resolve: func(_ context.Context, verb, _, _ string) ([]string, error) {
		time.Sleep(time.Millisecond)
		return []string{"eu " + verb, "tu " + verb, "ele " + verb, "nós " + verb, "vós " + verb, "eles " + verb}, nil
	}}
	m := newTestManager(conn, r)

	verbs := []string{"falar", "comer", "partir", "abrir", "beber", "correr"}
	var wg sync.WaitGroup
	for _, v := range verbs {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			assert.True(t, m.Persist(context.Background(), v, "Indicativo", "Presente"))
		}(v)
	}
	wg.Wait()

	assert.Equal(t, len(verbs), count(t, conn, "verbs"))
	assert.Equal(t, 1, count(t, conn, "modes"))
	assert.Equal(t, 1, count(t, conn, "tenses"))
	assert.Equal(t, 6, count(t, conn, "persons"))
	assert.Equal(t, 6*len(verbs), count(t, conn, "conjugations"))
}

func TestJitterBounds(t *testing.T) {
	m := NewManager(nil, nil, nil)
	assert.Equal(t, DefaultWorkers, m.Workers)
	for i := 0; i < 100; i++ {
		d := m.jitter()
		assert.GreaterOrEqual(t, d, DefaultJitterMin)
		assert.Less(t, d, DefaultJitterMax)
	}
	m.JitterMin, m.JitterMax = 0, 0
	assert.Zero(t, m.jitter())
}
