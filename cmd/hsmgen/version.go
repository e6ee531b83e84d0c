package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsmgen"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hsmgen",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hsmgen version %s\n", strings.TrimSpace(hsmgen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
