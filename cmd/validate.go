package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/warehouse-cli/internal/pipeline"
	"github.com/sells-group/warehouse-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the validation checks against the loaded warehouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(cfg)
		report, err := p.Validate(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "validate")
		}

		printReport(report)
		if !report.Passed() {
			return eris.Errorf("validation failed: %d check(s) failing", len(report.Failing()))
		}
		return nil
	},
}

// printReport renders the check results as a table on stdout.
func printReport(report *validate.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tOFFENDING\tDETAIL")
	for _, c := range report.Checks {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Name, c.Status, c.Offending, c.Detail)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
