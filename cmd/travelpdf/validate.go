package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ternarybob/travelpdf/internal/models"
	"github.com/ternarybob/travelpdf/internal/services/report"
)

type validateOptions struct {
	input string
	json  bool
}

func (c *cli) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a research record without rendering it",
		Long: `Decode and validate a research record and list the sections its report
would contain. No images are fetched and nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Research record file (JSON or YAML), - for stdin")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the validation result as JSON")

	return cmd
}

func (c *cli) runValidate(cmd *cobra.Command, opts *validateOptions) error {
	payload, err := c.readInput(cmd, opts.input)
	if err != nil {
		return err
	}

	result := c.app.Parser.Validate(payload)

	if opts.json {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(c.stdout, string(out))
	}

	if !result.Valid {
		return result.Err
	}
	if opts.json {
		return nil
	}

	record := result.Record
	fmt.Fprintf(c.stdout, "✓ %s\n", result.Message)
	fmt.Fprintf(c.stdout, "  Format: %s\n", result.Format)
	fmt.Fprintf(c.stdout, "  Attractions: %d\n", len(record.Attractions))
	fmt.Fprintf(c.stdout, "  Logistics entries: %d\n", len(record.LogisticsEntries()))
	fmt.Fprintf(c.stdout, "  Itinerary days: %d\n", len(record.Itinerary))
	fmt.Fprintf(c.stdout, "  Tips: %d\n", len(record.Tips))

	blocks := report.Plan(record, c.app.Normalizer.PlainText)
	fmt.Fprintf(c.stdout, "\nSections:\n")
	for _, b := range blocks {
		if b.Kind == models.BlockSectionHeading {
			fmt.Fprintf(c.stdout, "  - %s\n", b.Text)
		}
	}
	fmt.Fprintf(c.stdout, "  Images referenced: %d\n", len(report.ImageURLs(blocks)))

	return nil
}
