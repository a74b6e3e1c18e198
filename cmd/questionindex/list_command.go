package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"questionindex/internal/config"
	"questionindex/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list <store.json>",
		Short: "Show the records in a question store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve store path: %w", err)
			}
			st, err := store.Load(path, logger)
			if err != nil {
				return err
			}
			records := st.Records()

			if jsonOut {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Store is empty")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for i, rec := range records {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					rec.QuestionLevel,
					rec.QuestionCategory,
					rec.QuestionURL,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Level", "Category", "URL"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")
	return cmd
}
