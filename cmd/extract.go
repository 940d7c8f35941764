package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/warehouse-cli/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract both sources to the raw stage boundary",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)
		if err := p.Extract(cmd.Context()); err != nil {
			return eris.Wrap(err, "extract")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
