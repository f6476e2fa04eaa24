package cmd

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/iwat/iostream/internal/domain"
	"github.com/spf13/cobra"
)

func historyCmd(appBuilder *AppBuilder) *cobra.Command {
	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long:  "List recorded runs",
		Args:  cobra.NoArgs,
		RunE: closeOnError(appBuilder, func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			runs, err := appBuilder.App().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), runs)
			return nil
		}),
	}
	historyCmd.Flags().IntVar(&limit, "limit", 10, "Number of runs to list")

	historyCmd.AddCommand(historyPruneCmd(appBuilder))

	return historyCmd
}

func historyPruneCmd(appBuilder *AppBuilder) *cobra.Command {
	var keep int
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old runs",
		Long:  "Delete all recorded runs except the newest ones",
		Args:  cobra.NoArgs,
		RunE: closeOnError(appBuilder, func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			deleted, err := appBuilder.App().Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d run(s)\n", deleted)
			return nil
		}),
	}
	pruneCmd.Flags().IntVar(&keep, "keep", 10, "Number of newest runs to keep")

	return pruneCmd
}

func printHistory(w io.Writer, runs []*domain.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	for _, run := range runs {
		status := "ok"
		if failed := run.Failed(); failed > 0 {
			status = fmt.Sprintf("%d failed", failed)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", run.ID, humanize.Time(run.StartedAt), status)
		for _, result := range run.Results {
			if !result.OK() {
				fmt.Fprintf(w, "  %-5s %s: %s\n", result.Stage, result.Path, result.Error)
				continue
			}
			fmt.Fprintf(w, "  %-5s %s: %s\n", result.Stage, result.Path, humanize.Bytes(uint64(result.Bytes)))
		}
	}
}
