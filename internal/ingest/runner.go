package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mentalhealthdb/mhdb/internal/metrics"
	"github.com/mentalhealthdb/mhdb/internal/telemetry"
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
)

// Runner executes passes in order against one store
type Runner struct {
	Passes   []Pass
	Resolver *rdf.Resolver
	Language string
	Logger   zerolog.Logger
	// Metrics is optional
	Metrics *metrics.Metrics
}

// NewRunner creates a runner for the given passes
func NewRunner(passes []Pass, resolver *rdf.Resolver, logger zerolog.Logger) *Runner {
	return &Runner{
		Passes:   passes,
		Resolver: resolver,
		Language: rdf.DefaultLanguage,
		Logger:   logger,
	}
}

// Run executes every pass. The first failing pass stops the run and is
// returned as a *PassError.
func (r *Runner) Run(ctx context.Context, books map[string]*sheet.Workbook, store *graph.Store) error {
	tracer := telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "ingest.run")
	defer span.End()

	for _, p := range r.Passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runPass(ctx, tracer, p, books, store); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pass failed")
			return err
		}
	}

	span.SetAttributes(
		attribute.Int("mhdb.triples", store.Len()),
		attribute.Int("mhdb.subjects", store.SubjectCount()),
	)
	if r.Metrics != nil {
		r.Metrics.StoreTriples.Set(float64(store.Len()))
		r.Metrics.StoreSubjects.Set(float64(store.SubjectCount()))
		r.Metrics.RecordUnknownPrefixes(r.Resolver.Unknown())
	}
	return nil
}

func (r *Runner) runPass(ctx context.Context, tracer trace.Tracer, p Pass, books map[string]*sheet.Workbook, store *graph.Store) error {
	ctx, span := tracer.Start(ctx, "pass."+p.Name, trace.WithAttributes(attribute.String("mhdb.pass", p.Name)))
	defer span.End()

	logger := r.Logger.With().Str("pass", p.Name).Logger()
	logger.Info().Strs("workbooks", p.Workbooks).Msg("pass started")

	env := &Env{
		Books:    books,
		Store:    store,
		Resolver: r.Resolver,
		Language: r.Language,
		Links:    graph.NewLinkSet(),
		Counter:  graph.NewCounter(),
		Logger:   logger,
	}

	before := store.Stats()
	start := time.Now()
	err := p.Run(ctx, env)
	elapsed := time.Since(start)
	after := store.Stats()

	added := after.Inserted - before.Inserted
	duplicates := after.Duplicates - before.Duplicates
	dropped := after.Dropped - before.Dropped

	if r.Metrics != nil {
		r.Metrics.PassDuration.WithLabelValues(p.Name).Observe(elapsed.Seconds())
		r.Metrics.TriplesAdded.WithLabelValues(p.Name).Add(float64(added))
		r.Metrics.Duplicates.WithLabelValues(p.Name).Add(float64(duplicates))
		r.Metrics.Dropped.WithLabelValues(p.Name).Add(float64(dropped))
	}
	span.SetAttributes(
		attribute.Int64("mhdb.triples_added", added),
		attribute.Int64("mhdb.triples_dropped", dropped),
	)

	if err != nil {
		perr := newPassError(p.Name, err)
		if r.Metrics != nil {
			r.Metrics.PassFailures.WithLabelValues(p.Name).Inc()
		}
		span.RecordError(perr)
		span.SetStatus(codes.Error, perr.Error())
		logger.Error().Err(perr).Dur("duration", elapsed).Msg("pass failed")
		return perr
	}

	logger.Info().
		Int64("added", added).
		Int64("duplicates", duplicates).
		Int64("dropped", dropped).
		Int("links", env.Links.Len()).
		Dur("duration", elapsed).
		Msg("pass finished")
	return nil
}
