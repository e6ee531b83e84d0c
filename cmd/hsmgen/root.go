package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/cli"
	"github.com/aretw0/hsmgen/internal/config"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "hsmgen",
	Short: "hsmgen extracts hierarchical state machines from PlantUML diagrams",
	Long: `hsmgen scans text for @startuml ... @enduml blocks, builds a hierarchical
state machine model for each one and renders it as YAML, JSON, Mermaid or
code through templates.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Commands receive a context cancelled on SIGINT or SIGTERM.
func Execute() {
	ctx := cli.NewSignalContext(context.Background())
	defer ctx.Cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (default .hsmgen.yaml when present)")
	fs.Bool("debug", false, "Enable debug logging on stderr")
	fs.String("unterminated", "", "Diagram without @enduml: drop, emit or fail")
	fs.String("duplicate-init", "", "Repeated initial transition: last, first or error")
	fs.String("hierarchy", "", "State ownership: tolerant or strict")
	fs.StringSlice("line-prefix", nil, "Comment leader stripped before each line (repeatable)")
}

// loadConfig reads the config file and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("unterminated") {
		cfg.Parser.Unterminated, _ = flags.GetString("unterminated")
	}
	if flags.Changed("duplicate-init") {
		cfg.Parser.DuplicateInit, _ = flags.GetString("duplicate-init")
	}
	if flags.Changed("hierarchy") {
		cfg.Parser.Hierarchy, _ = flags.GetString("hierarchy")
	}
	if flags.Changed("line-prefix") {
		cfg.Parser.LinePrefixes, _ = flags.GetStringSlice("line-prefix")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is what most commands need: configuration, logger and a ready generator.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   []hsmgen.Option
	gen    *hsmgen.Generator
	close  func() error
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, err
	}

	cache, closer, err := cli.NewCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	opts, err := cli.GeneratorOptions(cfg, logger, cache)
	if err != nil {
		closer()
		return nil, err
	}

	return &env{cfg: cfg, logger: logger, opts: opts, gen: hsmgen.New(opts...), close: closer}, nil
}

// mustSetup is setup for commands that cannot continue without it.
func mustSetup(cmd *cobra.Command) *env {
	e, err := setup(cmd)
	if err != nil {
		fmt.Printf("Error initializing hsmgen: %v\n", err)
		os.Exit(1)
	}
	return e
}

// parseInput parses the file named by args[0], or stdin for "-" or no argument.
func parseInput(ctx context.Context, gen *hsmgen.Generator, args []string) (*domain.ParseResult, error) {
	if len(args) == 0 || args[0] == "-" {
		return gen.Parse(ctx, os.Stdin, "stdin")
	}
	return gen.ParseFile(ctx, args[0])
}
