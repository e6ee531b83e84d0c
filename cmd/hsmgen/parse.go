package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Print the extracted models",
	Long:  `Parses a file (or stdin) and prints every diagram model with its diagnostics as YAML or JSON.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()

		name, _ := cmd.Flags().GetString("format")
		format, err := generator.ParseFormat(name)
		if err != nil || (format != generator.FormatYAML && format != generator.FormatJSON) {
			fmt.Printf("Error: unsupported format %q (want yaml or json)\n", name)
			os.Exit(1)
		}

		res, err := parseInput(cmd.Context(), e.gen, args)
		if err != nil {
			fmt.Printf("Error parsing input: %v\n", err)
			os.Exit(1)
		}

		data, err := generator.EncodeResult(res, format)
		if err != nil {
			fmt.Printf("Error encoding result: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
}
