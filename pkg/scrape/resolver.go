package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("conjugador/scrape")

// Resolver tries each source in order and returns the first non-empty
// result. There are no retries within a source and nothing is cached.
type Resolver struct {
	sources []Source
	logger  *slog.Logger
}

func NewResolver(logger *slog.Logger, sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		logger:  loggerOrDiscard(logger).With("component", "resolver"),
	}
}

// NewDefaultResolver wires the primary then backup adapters, each with its
// own client built from the matching config.
func NewDefaultResolver(primary, backup Config, logger *slog.Logger) *Resolver {
	return NewResolver(logger,
		NewPrimary(NewClient(primary), primary.BaseURL, logger),
		NewBackup(NewClient(backup), backup.BaseURL, logger),
	)
}

// Resolve returns the forms for verb/mode/tense. On total failure the error
// wraps ErrAllSourcesFailed and each source's error.
func (r *Resolver) Resolve(ctx context.Context, verb, mode, tense string) ([]string, error) {
	var errs []error
	for _, src := range r.sources {
		forms, err := r.try(ctx, src, verb, mode, tense)
		if err == nil {
			return forms, nil
		}
		errs = append(errs, err)
		r.logger.WarnContext(ctx, "source failed, trying next", "source", src.Name(), "verb", verb, "err", err)
	}
	return nil, fmt.Errorf("%s %s/%s: %w", verb, mode, tense, errors.Join(append([]error{ErrAllSourcesFailed}, errs...)...))
}

func (r *Resolver) try(ctx context.Context, src Source, verb, mode, tense string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "scrape."+src.Name(), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("verb", verb),
		attribute.String("mode", mode),
		attribute.String("tense", tense),
	)

	forms, err := src.Fetch(ctx, verb, mode, tense)
	if err == nil && len(forms) == 0 {
		err = notFound(src.Name(), "empty result")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("forms", len(forms)))
	return forms, nil
}
