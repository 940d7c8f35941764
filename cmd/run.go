package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: extract, transform, load, validate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p := pipeline.New(cfg)
		zap.L().Info("starting run", zap.String("run_id", p.RunID()))

		report, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		printReport(report)
		if !report.Passed() {
			return eris.Errorf("validation failed: %d check(s) failing", len(report.Failing()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
