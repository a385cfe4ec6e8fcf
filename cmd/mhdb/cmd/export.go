package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/internal/export"
	"github.com/mentalhealthdb/mhdb/internal/fsutil"
	"github.com/mentalhealthdb/mhdb/internal/snapshot"
	"github.com/mentalhealthdb/mhdb/pkg/turtle"
)

type exportOptions struct {
	dir      string
	turtle   string
	ntriples string
	jsonld   string
	sqlite   string
}

func newExportCommand(g *globalOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the last snapshot without reading the workbooks",
		Long: `Load the statements saved by the last successful build and write
them again. Paths not given as flags come from the output section of the
configuration.

Examples:
  # Re-export JSON-LD from the snapshot
  mhdb export --jsonld mhdb.jsonld

  # Export from a specific snapshot directory
  mhdb export --snapshot-dir ./snapshots --ntriples mhdb.nt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			dir := firstNonEmpty(opts.dir, cfg.Snapshot.Dir)
			if dir == "" {
				return errors.New("no snapshot directory configured")
			}
			ns, err := cfg.BuildNamespaces()
			if err != nil {
				return err
			}

			snap, err := snapshot.Open(dir, logger)
			if err != nil {
				return err
			}
			defer snap.Close()

			store, meta, err := snap.Load()
			if err != nil {
				return fmt.Errorf("failed to load snapshot from %s: %w", dir, err)
			}
			doc := turtle.Document(cfg.Metadata(), ns, store)

			out := cmd.OutOrStdout()
			if path := firstNonEmpty(opts.turtle, cfg.Output.Turtle); path != "" {
				if err := fsutil.WriteFileAtomic(path, []byte(doc)); err != nil {
					return err
				}
				fmt.Fprintf(out, "turtle -> %s\n", path)
			}

			targets := export.Targets{
				NTriples: firstNonEmpty(opts.ntriples, cfg.Output.NTriples),
				JSONLD:   firstNonEmpty(opts.jsonld, cfg.Output.JSONLD),
				SQLite:   firstNonEmpty(opts.sqlite, cfg.Output.SQLite),
			}
			if err := export.All(cmd.Context(), doc, ns, targets, logger); err != nil {
				return err
			}
			fmt.Fprintf(out, "exported run %s (%d triples)\n", meta.RunID, meta.Triples)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dir, "snapshot-dir", "", "snapshot directory (default from config)")
	cmd.Flags().StringVar(&opts.turtle, "turtle", "", "Turtle output path")
	cmd.Flags().StringVar(&opts.ntriples, "ntriples", "", "N-Triples output path")
	cmd.Flags().StringVar(&opts.jsonld, "jsonld", "", "JSON-LD output path")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "SQLite output path")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
