package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/cli"
	"github.com/aretw0/hsmgen/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Regenerate artifacts whenever a diagram changes",
	Long:  `Runs generate once, then watches path and regenerates every changed diagram file until interrupted.`,
	Args:  cobra.MaximumNArgs(1),
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
		debounce, _ := cmd.Flags().GetDuration("debounce")

		tui.PrintBanner(os.Stdout, strings.TrimSpace(hsmgen.Version))
		fmt.Printf(">>> Watching '%s'.\n", root)

		err = p.Watch(cmd.Context(), root, debounce, func(r *cli.Report) {
			r.Print(os.Stdout)
			fmt.Println(">>> Waiting for changes...")
		})
		if err != nil {
			fmt.Printf("Error watching: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addPipelineFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", cli.DefaultDebounce, "Quiet period before regenerating")
}
