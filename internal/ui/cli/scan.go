package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"pyscript/internal/core/app"
	"pyscript/internal/shared/util"
	"pyscript/internal/ui/report"
)

func newScanCommand(s *session) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "scan INPUT",
		Short: "Report which imports of a script the browser runtime can satisfy.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{fmt.Errorf("accepts exactly one input file, received %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return usageError{err}
			}
			a, err := app.New(s.cfg)
			if err != nil {
				return err
			}
			r, err := a.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				return report.Write(s.stdout, f, r)
			}
			var buf bytes.Buffer
			if err := report.Write(&buf, f, r); err != nil {
				return err
			}
			return util.WriteFileWithDirs(output, buf.Bytes(), 0o644)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "Report format: text, json, markdown or sarif")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")
	return cmd
}
