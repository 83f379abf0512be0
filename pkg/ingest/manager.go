// Package ingest turns scraped conjugation tables into stored rows, one task
// at a time or as a bounded-concurrency batch.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

var tracer = otel.Tracer("conjugador/ingest")

const (
	DefaultWorkers   = 3
	DefaultJitterMin = 300 * time.Millisecond
	DefaultJitterMax = time.Second
)

// Resolver yields the ordered forms of one (verb, mode, tense).
type Resolver interface {
	Resolve(ctx context.Context, verb, mode, tense string) ([]string, error)
}

// Manager persists scraped conjugations. Fields may be adjusted after
// NewManager and before first use.
type Manager struct {
	DB       *sql.DB
	Resolver Resolver
	Logger   *slog.Logger

	// Workers bounds batch concurrency.
	Workers int
	// Each batch task sleeps a uniform random delay in [JitterMin, JitterMax)
	// before it runs. Zero JitterMax disables the delay.
	JitterMin time.Duration
	JitterMax time.Duration

	// OnProgress is called after each batch task with the number finished so
	// far. It may be called from several goroutines at once.
	OnProgress func(done, total int)

	// PoolFactory allows injecting a custom worker pool (useful for testing)
	PoolFactory func(workers, queue int) WorkerPoolInterface

	// Now stamps job completion; defaults to time.Now.
	Now func() time.Time
}

func NewManager(conn *sql.DB, resolver Resolver, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		DB:        conn,
		Resolver:  resolver,
		Logger:    logger.With("component", "ingest"),
		Workers:   DefaultWorkers,
		JitterMin: DefaultJitterMin,
		JitterMax: DefaultJitterMax,
	}
}

// Persist scrapes verb/mode/tense and stores every form not already present,
// in a single transaction. It reports false on any failure, in which case
// nothing was written.
func (m *Manager) Persist(ctx context.Context, verb, mode, tense string) (ok bool) {
	verb = strings.ToLower(strings.TrimSpace(verb))
	log := m.Logger.With("verb", verb, "mode", mode, "tense", tense)

	ctx, span := tracer.Start(ctx, "ingest.Persist")
	defer span.End()
	span.SetAttributes(
		attribute.String("verb", verb),
		attribute.String("mode", mode),
		attribute.String("tense", tense),
	)

	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "persist panicked", "panic", r)
			span.SetStatus(codes.Error, fmt.Sprint(r))
			ok = false
		}
	}()

	forms, err := m.Resolver.Resolve(ctx, verb, mode, tense)
	if err != nil {
		log.ErrorContext(ctx, "no source returned conjugations", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false
	}

	inserted, err := m.store(ctx, verb, mode, tense, grammar.MapPersons(forms, mode))
	if err != nil {
		log.ErrorContext(ctx, "persist failed, rolled back", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false
	}

	span.SetAttributes(attribute.Int("inserted", inserted))
	log.InfoContext(ctx, "persisted conjugations", "forms", len(forms), "inserted", inserted)
	return true
}

func (m *Manager) store(ctx context.Context, verb, mode, tense string, pairs []grammar.PersonForm) (int, error) {
	inserted := 0
	err := db.RunInTx(ctx, m.DB, func(ctx context.Context, tx *sql.Tx) error {
		inserted = 0
		verbID, err := db.CreateOrGetVerb(ctx, tx, verb)
		if err != nil {
			return err
		}
		modeID, err := db.CreateOrGetMode(ctx, tx, mode)
		if err != nil {
			return err
		}
		tenseID, err := db.CreateOrGetTense(ctx, tx, tense, modeID)
		if err != nil {
			return err
		}

		for _, pf := range pairs {
			personID, err := db.CreateOrGetPerson(ctx, tx, pf.Person(), pf.Index)
			if err != nil {
				return err
			}
			exists, err := db.ConjugationExists(ctx, tx, verbID, tenseID, personID)
			if err != nil {
				return fmt.Errorf("check conjugation %s: %w", pf.Person(), err)
			}
			if exists {
				continue
			}
			added, err := db.InsertConjugation(ctx, tx, verbID, tenseID, personID, pf.Value)
			if err != nil {
				return err
			}
			if added {
				inserted++
			}
		}
		return nil
	})
	return inserted, err
}

func (m *Manager) jitter() time.Duration {
	lo, hi := m.JitterMin, m.JitterMax
	if hi <= 0 || hi < lo {
		return 0
	}
	if hi == lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
