package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"questionindex/internal/config"
	"questionindex/internal/history"
	"questionindex/internal/indexer"
	"questionindex/internal/logging"
	"questionindex/internal/preflight"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOut bool
	var envFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index CHANGED_FILES into question stores",
		Long: "Read CHANGED_FILES (newline-separated paths) and GITHUB_REPOSITORY from the\n" +
			"environment, build a record for every <problem>/images/<label>/<file> image,\n" +
			"and append new records to <problem>/<label>.json in the workspace.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := preflight.FirstFailure(preflight.RunAll(cfg)); err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another questionindex run holds the lock at " + cfg.LockPath())
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn("failed to release run lock", logging.Error(err))
				}
			}()

			env, err := config.LoadEnvironment(envFile)
			if err != nil {
				return err
			}

			opts := []indexer.Option{indexer.WithDryRun(dryRun)}
			if cfg.History.Enabled && !dryRun {
				ledger, err := history.Open(cmd.Context(), cfg.HistoryPath())
				if err != nil {
					return fmt.Errorf("open history: %w", err)
				}
				defer ledger.Close()
				opts = append(opts, indexer.WithRecorder(ledger))
			}

			ix, err := indexer.New(cfg, logger, opts...)
			if err != nil {
				return err
			}
			summary, err := ix.Run(cmd.Context(), indexer.Input{
				ChangedFiles: env.ChangedFileList(),
				Repository:   env.Repository,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd, summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing stores")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from a dotenv file before reading the environment")
	return cmd
}

func printSummary(out io.Writer, summary *indexer.Summary) {
	fmt.Fprintf(out, "Considered %d path(s): %d added, %d duplicate(s), %d skipped\n",
		summary.Considered, summary.Added, summary.Duplicates, summary.Skipped())
	verb := "Wrote"
	if summary.DryRun {
		verb = "Would write"
	}
	for _, st := range summary.Stores {
		switch {
		case summary.DryRun && st.Records > 0, st.Written:
			fmt.Fprintf(out, "%s %s (%d records, %d new)\n", verb, st.Path, st.Records, st.Added)
		default:
			fmt.Fprintf(out, "Skipped empty store %s\n", st.Path)
		}
		if st.Recovered {
			fmt.Fprintf(out, "  %s held invalid JSON and was rebuilt\n", st.Path)
		}
	}
	if len(summary.Stores) == 0 {
		fmt.Fprintln(out, "No stores touched")
	}
}
