package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/bioquery/internal/config"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// app carries flag values and the state built before a command runs.
type app struct {
	configPath string
	output     string
	noLLM      bool
	provider   string
	model      string
	timeout    time.Duration
	toolkit    string

	stdin  io.Reader
	cfg    *config.Config
	logger *slog.Logger
	bridge io.Closer
}

// Execute builds the command tree and runs it with signal handling.
func Execute(ctx context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{stdin: os.Stdin}
	defer a.teardown()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "bioquery",
		Short: "Ask questions about DNA and protein sequences in plain English",
		Long: `bioquery extracts sequences from a free-text query, works out which
analysis was asked for (with a local language model when one is reachable,
keyword rules otherwise) and runs it.

  bioquery query "translate ATGGCGAATTACGTAGCT"
  bioquery query --no-llm "find ORFs in the brca1 fragment"
  cat reads.fasta | bioquery query "gc content with window 20"`,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to config file (default: ./bioquery.yaml or $XDG_CONFIG_HOME/bioquery/bioquery.yaml)")
	flags.StringVarP(&a.output, "output", "o", FormatText, "Output format (text|json)")
	flags.BoolVar(&a.noLLM, "no-llm", false, "Skip the language model and use keyword rules only")
	flags.StringVar(&a.provider, "provider", "", "Reasoning provider (ollama|openai|none)")
	flags.StringVar(&a.model, "model", "", "Model name for the reasoning provider")
	flags.DurationVar(&a.timeout, "timeout", 0, "Bound on the language model parse (e.g. 5s)")
	flags.StringVar(&a.toolkit, "toolkit", "", "Analysis backend (native|emboss)")

	root.AddCommand(
		newQueryCmd(a),
		newOperationsCmd(a),
		newEnzymesCmd(a),
		newExamplesCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and starts logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.output != FormatText && a.output != FormatJSON {
		return fmt.Errorf("invalid --output %q: must be text or json", a.output)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider.Name = a.provider
	}
	if flags.Changed("model") {
		cfg.Provider.Model = a.model
	}
	if flags.Changed("timeout") {
		cfg.Parser.Timeout = a.timeout
	}
	if flags.Changed("toolkit") {
		cfg.Toolkit.Name = a.toolkit
	}
	if a.noLLM {
		cfg.Provider.Name = config.ProviderNone
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log)
	a.bridge = bridgeSignals(a.logger)
	return nil
}

func (a *app) teardown() {
	if a.bridge != nil {
		a.bridge.Close()
		a.bridge = nil
	}
}
