package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv points both sources at a local server that only knows "comer" on
// the primary site, and returns the database path to pass with --db.
func setupEnv(t *testing.T) string {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("..", "..", "..", "pkg", "scrape", "testdata", "primary_comer.html"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verbo-comer/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("API_KEY", "")
	t.Setenv("SCRAPE_PRIMARY_BASE_URL", srv.URL+"/")
	t.Setenv("SCRAPE_BACKUP_BASE_URL", srv.URL+"/pt/")
	t.Setenv("BATCH_JITTER_MIN", "0s")
	t.Setenv("BATCH_JITTER_MAX", "0s")
	t.Setenv("LOG_LEVEL", "error")
	color.NoColor = true
	return filepath.Join(dir, "test.db")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapeShowExport(t *testing.T) {
	dbPath := setupEnv(t)

	out, err := run(t, "scrape", "Comer", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "OK comer")
	assert.Contains(t, out, "eu como")

	out, err = run(t, "show", "comer", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Indicativo")
	assert.Contains(t, out, "eles comem")

	out, err = run(t, "export", "comer", "--skip-tu-vos", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "comer")
	assert.Contains(t, out, "como")
	assert.NotContains(t, out, "comes")
	assert.NotContains(t, out, "\ufeff")

	out, err = run(t, "export", "comer", "-o", ".", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")
	name := strings.TrimSpace(strings.TrimPrefix(out, "wrote "))
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\ufeff")))
}

func TestScrapeFailureReturnsError(t *testing.T) {
	dbPath := setupEnv(t)

	_, err := run(t, "scrape", "partir", "--db", dbPath)
	require.Error(t, err)

	_, err = run(t, "show", "partir", "--db", dbPath)
	assert.Error(t, err)
}

func TestScrapeRejectsInvalidInput(t *testing.T) {
	dbPath := setupEnv(t)

	_, err := run(t, "scrape", "comer", "--mode", "Condicional", "--tense", "Presente", "--db", dbPath)
	assert.Error(t, err)

	_, err = run(t, "scrape", "com3r", "--db", dbPath)
	assert.Error(t, err)
}

func TestExportWithoutDataFails(t *testing.T) {
	dbPath := setupEnv(t)

	_, err := run(t, "export", "comer", "--db", dbPath)
	assert.Error(t, err)
}

func TestBatchJobAndCoverage(t *testing.T) {
	dbPath := setupEnv(t)

	out, err := run(t, "batch", "comer", "x1", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, `skipping invalid verb "x1"`)
	assert.Contains(t, out, "total=9 success=3 failed=6")

	m := regexp.MustCompile(`job ([0-9a-f-]{36})`).FindStringSubmatch(out)
	require.Len(t, m, 2)

	out, err = run(t, "job", m[1], "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "3/9 ok, 6 failed")

	out, err = run(t, "coverage", "comer", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "6 of 9 combinations incomplete")
	assert.Contains(t, out, "Futuro do Presente")
}

func TestBatchFromFile(t *testing.T) {
	dbPath := setupEnv(t)
	list := filepath.Join(t.TempDir(), "verbs.json")
	require.NoError(t, os.WriteFile(list, []byte(`{"verbs": ["comer", "COMER"]}`), 0o644))

	out, err := run(t, "batch", "--file", list, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 verbs, 9 tasks")
}

func TestBatchNeedsVerbs(t *testing.T) {
	dbPath := setupEnv(t)

	_, err := run(t, "batch", "--db", dbPath)
	assert.Error(t, err)
}

func TestJobUnknown(t *testing.T) {
	dbPath := setupEnv(t)

	_, err := run(t, "job", "does-not-exist", "--db", dbPath)
	assert.Error(t, err)
}
