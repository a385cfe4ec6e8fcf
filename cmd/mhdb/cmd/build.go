package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/internal/config"
	"github.com/mentalhealthdb/mhdb/internal/export"
	"github.com/mentalhealthdb/mhdb/internal/fsutil"
	"github.com/mentalhealthdb/mhdb/internal/ingest"
	"github.com/mentalhealthdb/mhdb/internal/metrics"
	"github.com/mentalhealthdb/mhdb/internal/snapshot"
	"github.com/mentalhealthdb/mhdb/internal/telemetry"
	"github.com/mentalhealthdb/mhdb/internal/watch"
	"github.com/mentalhealthdb/mhdb/pkg/graph"
	"github.com/mentalhealthdb/mhdb/pkg/rdf"
	"github.com/mentalhealthdb/mhdb/pkg/sheet"
	"github.com/mentalhealthdb/mhdb/pkg/turtle"
)

type buildOptions struct {
	watch  bool
	output string
	passes []string
}

func newBuildCommand(g *globalOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the knowledge graph from the workbooks",
		Long: `Run the ingestion passes over the configured workbooks and write the
Turtle document. The document is parsed back before it is written, and
nothing is written when any pass fails.

Examples:
  # Build with the default configuration
  mhdb build

  # Build only two passes into a custom file
  mhdb build --passes states,sensors -o partial.ttl

  # Rebuild whenever a workbook changes
  mhdb build --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			if opts.output != "" {
				cfg.Output.Turtle = opts.output
			}
			if len(opts.passes) > 0 {
				cfg.Passes = opts.passes
			}
			return runBuild(cmd.Context(), cfg, logger, opts.watch)
		},
	}

	cmd.Flags().BoolVar(&opts.watch, "watch", false, "rebuild whenever an input workbook changes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Turtle output path (default from config)")
	cmd.Flags().StringSliceVar(&opts.passes, "passes", nil, "passes to run (default: all)")
	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, logger zerolog.Logger, watchMode bool) error {
	shutdown, err := telemetry.InitTracing(ctx, cfg.Tracing, Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	b, err := newBuilder(cfg, logger)
	if err != nil {
		return err
	}

	if !watchMode {
		_, err := b.build(ctx)
		return err
	}

	if _, err := b.build(ctx); err != nil {
		logger.Error().Err(err).Msg("build failed")
	}
	w := watch.New(b.inputs(), func(ctx context.Context, _ []string) {
		if _, err := b.build(ctx); err != nil {
			logger.Error().Err(err).Msg("build failed")
		}
	}, logger)
	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// builder runs complete builds for one configuration
type builder struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	passes  []ingest.Pass
	paths   map[string]string
}

// buildResult summarizes a finished build
type buildResult struct {
	RunID    string
	Triples  int
	Subjects int
	Bytes    int
}

func newBuilder(cfg *config.Config, logger zerolog.Logger) (*builder, error) {
	passes, err := ingest.Select(cfg.Passes)
	if err != nil {
		return nil, err
	}

	configured := cfg.WorkbookPaths()
	paths := make(map[string]string)
	for _, name := range ingest.Workbooks(passes) {
		path, ok := configured[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s is not configured", ingest.ErrMissingWorkbook, name)
		}
		paths[name] = path
	}

	return &builder{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		passes:  passes,
		paths:   paths,
	}, nil
}

// inputs lists the workbook paths the build reads
func (b *builder) inputs() []string {
	out := make([]string, 0, len(b.paths))
	for _, path := range b.paths {
		out = append(out, path)
	}
	return out
}

func (b *builder) build(ctx context.Context) (buildResult, error) {
	runID := uuid.NewString()
	logger := b.logger.With().Str("run_id", runID).Logger()
	b.metrics.BuildInfo.Reset()
	b.metrics.BuildInfo.WithLabelValues(Version, runID).Set(1)
	start := time.Now()

	ns, err := b.cfg.BuildNamespaces()
	if err != nil {
		return buildResult{}, err
	}

	books, err := sheet.LoadAll(ctx, b.paths)
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to load workbooks: %w", err)
	}
	logger.Info().Int("workbooks", len(books)).Msg("workbooks loaded")

	store, err := b.seed(logger)
	if err != nil {
		return buildResult{}, err
	}

	runner := ingest.NewRunner(b.passes, rdf.NewResolver(ns, logger), logger)
	runner.Language = b.cfg.Ontology.Language
	runner.Metrics = b.metrics
	if err := runner.Run(ctx, books, store); err != nil {
		return buildResult{}, err
	}

	doc := turtle.Document(b.cfg.Metadata(), ns, store)
	parsed, err := turtle.Validate(doc)
	if err != nil {
		return buildResult{}, fmt.Errorf("generated document is not valid turtle: %w", err)
	}
	if err := fsutil.WriteFileAtomic(b.cfg.Output.Turtle, []byte(doc)); err != nil {
		return buildResult{}, fmt.Errorf("failed to write %s: %w", b.cfg.Output.Turtle, err)
	}
	b.metrics.DocumentBytes.Set(float64(len(doc)))

	targets := export.Targets{
		NTriples: b.cfg.Output.NTriples,
		JSONLD:   b.cfg.Output.JSONLD,
		SQLite:   b.cfg.Output.SQLite,
	}
	if err := export.All(ctx, doc, ns, targets, logger); err != nil {
		return buildResult{}, err
	}

	if err := b.save(store, runID, logger); err != nil {
		return buildResult{}, err
	}

	if b.cfg.Output.Metrics != "" {
		if err := b.metrics.WriteTextfile(b.cfg.Output.Metrics); err != nil {
			return buildResult{}, fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	res := buildResult{
		RunID:    runID,
		Triples:  store.Len(),
		Subjects: store.SubjectCount(),
		Bytes:    len(doc),
	}
	logger.Info().
		Str("path", b.cfg.Output.Turtle).
		Int("triples", res.Triples).
		Int("parsed_triples", parsed).
		Int("subjects", res.Subjects).
		Int("bytes", res.Bytes).
		Dur("duration", time.Since(start)).
		Msg("build finished")
	return res, nil
}

// seed returns the store the passes merge into, holding the previous
// snapshot when seeding is enabled
func (b *builder) seed(logger zerolog.Logger) (*graph.Store, error) {
	store := graph.New()
	if !b.cfg.Snapshot.Seed || b.cfg.Snapshot.Dir == "" {
		return store, nil
	}

	snap, err := snapshot.Open(b.cfg.Snapshot.Dir, logger)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	prev, meta, err := snap.Load()
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		logger.Info().Msg("no snapshot to seed from")
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("from_run", meta.RunID).Int("triples", meta.Triples).Msg("seeded from snapshot")
	return store.Union(prev), nil
}

func (b *builder) save(store *graph.Store, runID string, logger zerolog.Logger) error {
	if b.cfg.Snapshot.Dir == "" {
		return nil
	}
	snap, err := snapshot.Open(b.cfg.Snapshot.Dir, logger)
	if err != nil {
		return err
	}
	defer snap.Close()

	names := make([]string, 0, len(b.passes))
	for _, p := range b.passes {
		names = append(names, p.Name)
	}
	return snap.WithMetrics(b.metrics).Save(store, snapshot.Metadata{
		RunID:   runID,
		Version: Version,
		Passes:  names,
	})
}
