package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	text bool
	json bool
}

func (c *cli) newInspectCmd() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show metadata of a PDF report",
		Long: `Validate a PDF with pdfcpu and print its version, page count and size.
With --text the text drawn on each page is printed as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.text, "text", false, "Print the text of every page")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print metadata as JSON")

	return cmd
}

func (c *cli) runInspect(cmd *cobra.Command, path string, opts *inspectOptions) error {
	inspector := c.app.Inspector

	meta, err := inspector.InspectFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	if opts.json {
		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		fmt.Fprintln(c.stdout, string(out))
	} else {
		fmt.Fprintf(c.stdout, "File: %s\n", path)
		fmt.Fprintf(c.stdout, "  PDF version: %s\n", meta.Version)
		fmt.Fprintf(c.stdout, "  Pages: %d\n", meta.PageCount)
		fmt.Fprintf(c.stdout, "  Size: %d bytes\n", meta.FileSize)
		fmt.Fprintf(c.stdout, "  Encrypted: %t\n", meta.IsEncrypted)
	}

	if !opts.text {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	pages, err := inspector.PageText(cmd.Context(), data)
	if err != nil {
		return err
	}
	for i, text := range pages {
		fmt.Fprintf(c.stdout, "\n--- Page %d ---\n", i+1)
		fmt.Fprintln(c.stdout, strings.TrimSpace(text))
	}
	return nil
}
