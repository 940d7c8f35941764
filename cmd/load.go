package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/warehouse-cli/internal/pipeline"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the staged model into the warehouse outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)
		if err := p.Load(cmd.Context()); err != nil {
			return eris.Wrap(err, "load")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
