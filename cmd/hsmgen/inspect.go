package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hsmgen/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file|-]",
	Short: "Summarize the extracted models",
	Long:  `Prints states, transitions, actions and vocabularies of every diagram as a rendered Markdown report.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()

		res, err := parseInput(cmd.Context(), e.gen, args)
		if err != nil {
			fmt.Printf("Error parsing input: %v\n", err)
			os.Exit(1)
		}

		if err := tui.Print(os.Stdout, tui.ResultSummary(res)); err != nil {
			fmt.Printf("Error rendering summary: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
