package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hsmgen/internal/cli"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [path]",
	Short: "Generate artifacts for every diagram under a path",
	Long: `Discovers diagram files under path (default: current directory), extracts
every model in parallel and writes the configured formats and templates.
Artifacts go to --out, or to a generated/ directory beside each input.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()

		p, err := newPipeline(cmd, e)
		if err != nil {
			fmt.Printf("Error initializing generator: %v\n", err)
			os.Exit(1)
		}

		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		report, err := p.Run(cmd.Context(), root)
		if err != nil {
			fmt.Printf("Error generating: %v\n", err)
			os.Exit(1)
		}
		report.Print(os.Stdout)
		fmt.Printf("%d diagram(s) from %d file(s), %d artifact(s) written\n",
			report.Diagrams(), len(report.Files), report.Written())

		if n := report.Failed(); n > 0 {
			fmt.Printf("Error: %d file(s) failed\n", n)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addPipelineFlags(generateCmd)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out", "o", "", "Output directory (default: generated/ beside each input)")
	cmd.Flags().StringP("templates", "t", "", "Directory of NAME.EXT.tmpl templates")
	cmd.Flags().StringSliceP("format", "f", nil, "Output formats: yaml, json, mermaid, cpp")
	cmd.Flags().String("suffix", "", "Suffix appended to template output names")
	cmd.Flags().IntP("workers", "w", 0, "Files processed in parallel (default: GOMAXPROCS)")
}

// newPipeline builds the generation pipeline from the config and the pipeline flags.
func newPipeline(cmd *cobra.Command, e *env) (*cli.Pipeline, error) {
	cfg := e.cfg
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("templates") {
		cfg.TemplateDir, _ = flags.GetString("templates")
	}
	if flags.Changed("format") {
		cfg.Formats, _ = flags.GetStringSlice("format")
	}
	if flags.Changed("suffix") {
		cfg.Suffix, _ = flags.GetString("suffix")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}

	formats, err := cfg.GeneratorFormats()
	if err != nil {
		return nil, err
	}
	renderer, err := generator.New(generator.Options{
		Formats:     formats,
		TemplateDir: cfg.TemplateDir,
		Suffix:      cfg.Suffix,
	})
	if err != nil {
		return nil, err
	}

	return &cli.Pipeline{
		Parser:     e.gen,
		Renderer:   renderer,
		Extensions: cfg.Extensions,
		OutDir:     cfg.OutputDir,
		Workers:    cfg.Workers,
		Logger:     e.logger,
	}, nil
}
