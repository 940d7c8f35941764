package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/warehouse-cli/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean, conform, and build the dimensional model from raw data",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)
		if _, err := p.Transform(cmd.Context()); err != nil {
			return eris.Wrap(err, "transform")
		}

		zap.L().Info("quality log written",
			zap.String("run_id", p.RunID()),
			zap.Int("entries", len(p.Quality().Entries())),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}
