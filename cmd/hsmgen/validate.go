package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/aretw0/hsmgen/internal/validator"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check diagrams for structural errors",
	Long: `Parses every diagram file under path (default: current directory) and reports
fatal structural errors, diagnostics and model warnings (unreachable states,
composites without an initial transition). Exits 1 when any file has a fatal
error, or with --strict when any diagnostic or warning is reported.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		e := mustSetup(cmd)
		defer e.close()
		strict, _ := cmd.Flags().GetBool("strict")

		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		if err := runValidate(cmd, e, root, strict); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All diagrams are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Treat diagnostics and lint warnings as failures")
}

func runValidate(cmd *cobra.Command, e *env, root string, strict bool) error {
	paths, err := file.Discover(root, e.cfg.Extensions)
	if err != nil {
		return err
	}

	var errs []error
	diagrams, diagnostics, warnings := 0, 0, 0
	for _, path := range paths {
		res, err := e.gen.ParseFile(cmd.Context(), path)
		if err != nil {
			var perr *domain.ParseError
			if !errors.As(err, &perr) {
				return err
			}
			fmt.Printf("FAIL %v\n", perr)
			errs = append(errs, perr)
			continue
		}
		diagrams += len(res.Diagrams)
		diagnostics += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			fmt.Printf("WARN %s\n", d)
		}
		for _, f := range validator.ValidateResult(res) {
			fmt.Printf("LINT %s: %s\n", path, f)
			warnings++
		}
	}

	fmt.Printf("%d file(s), %d diagram(s), %d diagnostic(s), %d warning(s)\n", len(paths), diagrams, diagnostics, warnings)
	if len(errs) > 0 {
		return fmt.Errorf("%d file(s) with fatal errors", len(errs))
	}
	if strict && diagnostics+warnings > 0 {
		return fmt.Errorf("%d diagnostic(s) and %d warning(s) in strict mode", diagnostics, warnings)
	}
	return nil
}
