package main

import (
	"fmt"
	"os"

	"github.com/aretw0/hsmgen/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [file|-]",
	Short: "Export the state machine visualization",
	Long:  `Parses a file (or stdin) and outputs a Mermaid stateDiagram-v2 for each diagram.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()

		res, err := parseInput(cmd.Context(), e.gen, args)
		if err != nil {
			fmt.Printf("Error parsing input: %v\n", err)
			os.Exit(1)
		}

		name, _ := cmd.Flags().GetString("diagram")
		highlight, _ := cmd.Flags().GetString("highlight")

		found := false
		for _, d := range res.Diagrams {
			if name != "" && d.Name != name {
				continue
			}
			var overlay *graph.GraphOverlay
			if highlight != "" {
				overlay = &graph.GraphOverlay{CurrentState: highlight}
			}
			if found {
				fmt.Println()
			}
			fmt.Print(graph.GenerateMermaid(d, overlay))
			found = true
		}
		if name != "" && !found {
			fmt.Printf("Error: diagram %q not found\n", name)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("diagram", "", "Only render the diagram with this name")
	graphCmd.Flags().String("highlight", "", "State to highlight as current")
}
