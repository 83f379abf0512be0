// Package api exposes the scraper over a JSON HTTP API.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/export"
	"github.com/japaniel/conjugador/pkg/grammar"
	"github.com/japaniel/conjugador/pkg/ingest"
)

// Ingestor is the persistence surface the handlers drive.
type Ingestor interface {
	Persist(ctx context.Context, verb, mode, tense string) bool
	RunBatch(ctx context.Context, tasks []grammar.Task, jobID string) ingest.Summary
}

// Options configures a Server.
type Options struct {
	APIKey string
	// AuthDisabled serves /api/v1 without the key check.
	AuthDisabled bool
}

// Server routes API requests and owns the batches it starts.
type Server struct {
	db     *sql.DB
	ing    Ingestor
	logger *slog.Logger
	opts   Options

	batches sync.WaitGroup
}

func New(conn *sql.DB, ing Ingestor, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{db: conn, ing: ing, opts: opts, logger: logger.With("component", "api")}
}

// Handler returns the routed handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	guard := RequireAPIKey(s.opts.APIKey)
	if s.opts.AuthDisabled {
		guard = Chain()
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/verbs/{infinitive}", s.getVerb)
	api.HandleFunc("POST /api/v1/scrape", s.scrape)
	api.HandleFunc("POST /api/v1/batch", s.batch)
	api.HandleFunc("GET /api/v1/jobs/{id}", s.getJob)
	api.HandleFunc("GET /api/v1/export/{infinitive}", s.exportVerb)
	api.HandleFunc("POST /api/v1/export", s.exportBatch)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", s.health)
	root.Handle("/api/v1/", guard(api))

	return Chain(Recovery(s.logger), Logger(s.logger))(root)
}

// Wait blocks until every batch started by this server has finished.
func (s *Server) Wait() { s.batches.Wait() }

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type conjugationJSON struct {
	Mode   string `json:"mode"`
	Tense  string `json:"tense"`
	Person string `json:"person"`
	Value  string `json:"value"`
}

type verbResponse struct {
	Infinitive   string            `json:"infinitive"`
	ScrapedAt    string            `json:"scraped_at"`
	Conjugations []conjugationJSON `json:"conjugations"`
}

func (s *Server) getVerb(w http.ResponseWriter, r *http.Request) {
	infinitive := strings.ToLower(r.PathValue("infinitive"))
	verb, err := db.GetVerbByInfinitive(r.Context(), s.db, infinitive)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Verb '"+infinitive+"' not found.")
		return
	}
	if err != nil {
		s.internalError(w, r, "load verb", err)
		return
	}
	rows, err := db.ListConjugations(r.Context(), s.db, verb.ID)
	if err != nil {
		s.internalError(w, r, "list conjugations", err)
		return
	}

	resp := verbResponse{
		Infinitive:   verb.Infinitive,
		ScrapedAt:    verb.CreatedAt.UTC().Format(time.RFC3339),
		Conjugations: make([]conjugationJSON, len(rows)),
	}
	for i, row := range rows {
		resp.Conjugations[i] = conjugationJSON{Mode: row.Mode, Tense: row.Tense, Person: row.Person, Value: row.Value}
	}
	writeJSON(w, http.StatusOK, resp)
}

type scrapeRequest struct {
	Verb  string  `json:"verb"`
	Mode  *string `json:"mode"`
	Tense *string `json:"tense"`
}

func (s *Server) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	task := grammar.Task{Verb: req.Verb, Mode: "Indicativo", Tense: "Presente"}
	if req.Mode != nil {
		task.Mode = *req.Mode
	}
	if req.Tense != nil {
		task.Tense = *req.Tense
	}
	task.Verb = strings.TrimSpace(task.Verb)
	if !grammar.ValidVerb(task.Verb) {
		writeError(w, http.StatusBadRequest, "Invalid verb format: "+task.Verb)
		return
	}
	if !grammar.ValidGrammar(task.Mode, task.Tense) {
		writeError(w, http.StatusBadRequest, "Invalid grammatical selection")
		return
	}
	task = task.Normalize()

	if !s.ing.Persist(r.Context(), task.Verb, task.Mode, task.Tense) {
		writeError(w, http.StatusInternalServerError, "Failed to scrape verb '"+task.Verb+"'")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"status":  "success",
		"message": "Successfully scraped " + task.Verb,
		"verb":    task.Verb,
	})
}

type batchRequest struct {
	Tasks []grammar.Task `json:"tasks"`
}

// decodeTasks reads and validates a {"tasks": [...]} body.
func decodeTasks(r *http.Request) ([]grammar.Task, string) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "Invalid JSON format"
	}
	if req.Tasks == nil {
		return nil, "No tasks list provided"
	}
	for i := range req.Tasks {
		req.Tasks[i].Verb = strings.TrimSpace(req.Tasks[i].Verb)
	}
	if err := grammar.ValidateTasks(req.Tasks); err != nil {
		return nil, "Batch contains invalid data: " + err.Error()
	}
	for i := range req.Tasks {
		req.Tasks[i] = req.Tasks[i].Normalize()
	}
	return req.Tasks, ""
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	tasks, problem := decodeTasks(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	job, err := db.CreateBatchJob(r.Context(), s.db, len(tasks))
	if err != nil {
		s.internalError(w, r, "create batch job", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	s.batches.Add(1)
	go func() {
		defer s.batches.Done()
		sum := s.ing.RunBatch(ctx, tasks, job.ID)
		s.logger.InfoContext(ctx, "batch done", "job_id", job.ID, "success", sum.Success, "failed", sum.Failed)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     job.ID,
		"status_url": "/api/v1/jobs/" + job.ID,
	})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := db.GetBatchJob(r.Context(), s.db, r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "load job", err)
		return
	}
	writeJSON(w, http.StatusOK, job.View())
}

func (s *Server) exportVerb(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	infinitive := strings.ToLower(r.PathValue("infinitive"))
	mode := valueOr(q.Get("mode"), "Indicativo")
	tense := valueOr(q.Get("tense"), "Presente")
	skip := truthy(q.Get("skip_tu_vos"))

	rows, err := db.ConjugationsFor(r.Context(), s.db, infinitive, mode, tense)
	if err != nil {
		s.internalError(w, r, "load conjugations", err)
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "No data available to export.")
		return
	}

	s.logger.InfoContext(r.Context(), "exporting csv", "verb", infinitive, "mode", mode, "tense", tense, "skip_tu_vos", skip)
	body := export.VerbCSV(infinitive, mode, tense, rows, skip)
	writeCSV(w, export.Filename(q.Get("filename"), infinitive, mode, tense), body)
}

func (s *Server) exportBatch(w http.ResponseWriter, r *http.Request) {
	tasks, problem := decodeTasks(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	q := r.URL.Query()

	var b strings.Builder
	n, err := export.BatchCSV(r.Context(), s.db, &b, tasks, truthy(q.Get("skip_tu_vos")))
	if err != nil {
		s.internalError(w, r, "batch export", err)
		return
	}
	if n == 0 {
		writeError(w, http.StatusNotFound, "No data available to export.")
		return
	}
	writeCSV(w, export.Filename(valueOr(q.Get("filename"), "batch_export"), "", "", ""), b.String())
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.ErrorContext(r.Context(), op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeCSV(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.BOM + body))
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func truthy(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
