package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type generateOptions struct {
	input  string
	output string
	json   bool
}

func (c *cli) newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a research record as a PDF report",
		Long: `Render a research record as a PDF report and print the path it was written to.

Without -o the file is named after the destination
("Tokyo, Japan" -> travel_report_Tokyo_Japan.pdf) and placed in the output
directory. When -o names an existing directory the default name is used
inside it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Research record file (JSON or YAML), - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output PDF path or directory")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the full result as JSON")

	return cmd
}

func (c *cli) runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	payload, err := c.readInput(cmd, opts.input)
	if err != nil {
		return err
	}

	result, err := c.app.ReportService.Generate(cmd.Context(), payload, opts.output)
	if err != nil {
		return err
	}

	if opts.json {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(c.stdout, string(out))
		return nil
	}

	fmt.Fprintln(c.stdout, result.Path)
	return nil
}
