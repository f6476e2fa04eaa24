package cmd

import (
	"fmt"

	"github.com/iwat/iostream/internal/domain"
	"github.com/spf13/cobra"
)

func runCmd(appBuilder *AppBuilder) *cobra.Command {
	var stages domain.StageList
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the stages in sequence",
		Long: "Run the stages in sequence. A failing stage is logged and the remaining stages still run;\n" +
			"the command always succeeds.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			appBuilder.App().Run(cmd.Context(), stages...)
			return nil
		},
	}
	runCmd.Flags().Var(&stages, "stages", "Comma separated stages to run ["+domain.KnownStages()+"]")

	return runCmd
}

var stageDescriptions = map[domain.Stage]string{
	domain.StageWrite: "Write the payload to the output file",
	domain.StageRead:  "Print the input file byte by byte",
	domain.StageCopy:  "Append the input file to the output file",
	domain.StageLines: "Print the output file line by line",
}

func stageCmd(appBuilder *AppBuilder, stage domain.Stage) *cobra.Command {
	return &cobra.Command{
		Use:   stage.String(),
		Short: stageDescriptions[stage],
		Long:  stageDescriptions[stage],
		Args:  cobra.NoArgs,
		RunE: closeOnError(appBuilder, func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			run := appBuilder.App().Run(cmd.Context(), stage)
			if run.Failed() > 0 {
				return fmt.Errorf("%s stage failed", stage)
			}
			return nil
		}),
	}
}
