package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/travelpdf/internal/app"
	"github.com/ternarybob/travelpdf/internal/common"
)

// cli is the travelpdf command tree plus the state resolved before a
// subcommand runs.
type cli struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	// Persistent flags
	configFiles []string
	logLevel    string
	outputDir   string
	quiet       bool

	// Resolved in setup
	config *common.Config
	logger arbor.ILogger
	app    *app.App
}

func newCLI() *cli {
	c := &cli{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	c.root = &cobra.Command{
		Use:   "travelpdf",
		Short: "Render travel research records as PDF reports",
		Long: `travelpdf turns a structured travel research record (JSON or YAML) into a
paginated PDF report with a title, overview, attractions, practical
information, a day-by-day itinerary and tips.

Examples:
  # Render a record, writing next to the configured output directory
  travelpdf generate -i tokyo.json

  # Read the record from stdin and choose the output file
  cat tokyo.yaml | travelpdf generate -i - -o tokyo.pdf

  # Check a record without rendering it
  travelpdf validate -i tokyo.json

  # Show page count and metadata of a generated report
  travelpdf inspect travel_report_Tokyo.pdf`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				_ = c.app.Close()
			}
		},
	}

	flags := c.root.PersistentFlags()
	flags.StringArrayVarP(&c.configFiles, "config", "c", nil, "Configuration file path (repeatable, later files override earlier ones)")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&c.outputDir, "output-dir", "", "Directory for reports written without -o (overrides config)")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "Suppress the banner and informational logging")

	c.root.AddCommand(
		c.newVersionCmd(),
		c.newGenerateCmd(),
		c.newValidateCmd(),
		c.newInspectCmd(),
	)

	return c
}

// withOutput sets custom output writers.
func (c *cli) withOutput(stdout, stderr io.Writer) *cli {
	c.stdout = stdout
	c.stderr = stderr
	c.root.SetOut(stdout)
	c.root.SetErr(stderr)
	return c
}

func (c *cli) execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return c.root.ExecuteContext(ctx)
}

func (c *cli) executeWithArgs(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	return c.execute(ctx)
}

// setup resolves configuration for every subcommand except version.
//
// Startup sequence (REQUIRED ORDER):
// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
// 2. Apply CLI overrides (highest priority)
// 3. Initialize logger
// 4. Print banner
// 5. Wire services
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	if len(c.configFiles) == 0 {
		if _, err := os.Stat("travelpdf.toml"); err == nil {
			c.configFiles = append(c.configFiles, "travelpdf.toml")
		}
	}

	config, err := common.LoadFromFiles(c.configFiles...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, c.logLevel, c.outputDir)
	c.config = config

	if c.quiet {
		c.logger = common.NewQuietLogger()
	} else {
		c.logger = common.InitLogger(config)
		common.PrintBanner(config, c.logger)
	}

	c.logger.Debug().
		Strs("config_files", c.configFiles).
		Str("command", cmd.Name()).
		Msg("Configuration loaded")

	application, err := app.New(config, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	c.app = application

	return nil
}

// readInput reads a payload from path, or from stdin when path is "-".
func (c *cli) readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required (-i flag, use - for stdin)")
	}
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return data, nil
}
