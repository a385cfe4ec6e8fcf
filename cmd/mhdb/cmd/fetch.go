package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentalhealthdb/mhdb/internal/fetch"
	"github.com/mentalhealthdb/mhdb/internal/metrics"
)

func newFetchCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [workbook...]",
		Short: "Download the workbooks from Google Sheets",
		Long: `Download every configured workbook that has a sheet_id as xlsx and
store it at its configured path. Downloads are retried, rate limited and
written atomically, so a failed download leaves the previous file intact.

Examples:
  # Download every workbook with a sheet id
  mhdb fetch

  # Download one workbook
  mhdb fetch disorders`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}

			targets := fetch.Targets(cfg)
			if len(args) > 0 {
				targets, err = selectTargets(targets, args)
				if err != nil {
					return err
				}
			}
			if len(targets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no workbooks with a sheet_id configured")
				return nil
			}

			client := fetch.FromConfig(cfg.Fetch, logger, metrics.New())
			if err := client.FetchAll(cmd.Context(), targets, cfg.Fetch.Concurrency); err != nil {
				return err
			}
			for _, t := range targets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", t.Name, t.Path)
			}
			return nil
		},
	}
}

func selectTargets(targets []fetch.Target, names []string) ([]fetch.Target, error) {
	byName := make(map[string]fetch.Target, len(targets))
	for _, t := range targets {
		byName[t.Name] = t
	}
	out := make([]fetch.Target, 0, len(names))
	for _, name := range names {
		t, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("workbook %s has no sheet_id configured", name)
		}
		out = append(out, t)
	}
	return out, nil
}
