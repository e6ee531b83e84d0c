package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/internal/logging"
	"github.com/aretw0/hsmgen/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Pipeline discovers input files, extracts their diagrams and writes the
// rendered artifacts. Files are processed in parallel and independently:
// a fatal error in one file does not stop the others.
type Pipeline struct {
	Parser   *hsmgen.Generator
	Renderer *generator.Generator

	// Extensions selects the files a directory walk picks up.
	Extensions []string
	// OutDir receives every artifact. Empty means generated/ beside each input.
	OutDir  string
	Workers int
	Logger  *slog.Logger
}

// FileReport is the outcome for one input file.
type FileReport struct {
	Path        string
	Diagrams    []string
	Diagnostics []domain.Diagnostic
	Written     []string
	// Skipped is set when the file has no @startuml marker.
	Skipped bool
	Err     error
}

// Report collects the file reports in discovery order.
type Report struct {
	Files []FileReport
}

// Failed counts the files that ended with an error.
func (r *Report) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Written counts the artifacts written across all files.
func (r *Report) Written() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Written)
	}
	return n
}

// Diagrams counts the diagrams extracted across all files.
func (r *Report) Diagrams() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Diagrams)
	}
	return n
}

// Print writes one line per file and per diagnostic.
func (r *Report) Print(w io.Writer) {
	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(w, "FAIL %s: %v\n", f.Path, f.Err)
		case f.Skipped:
			fmt.Fprintf(w, "skip %s (no diagram)\n", f.Path)
		default:
			fmt.Fprintf(w, "ok   %s: %d diagram(s), %d file(s) written\n", f.Path, len(f.Diagrams), len(f.Written))
		}
		for _, d := range f.Diagnostics {
			fmt.Fprintf(w, "     %s\n", d)
		}
	}
}

// Run processes every file under root (or root itself when it is a file).
// The returned error covers discovery and cancellation only; per-file
// failures are in the report.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	paths, err := file.Discover(root, p.Extensions)
	if err != nil {
		return nil, err
	}
	return p.RunFiles(ctx, paths)
}

// RunFiles processes the given files.
func (p *Pipeline) RunFiles(ctx context.Context, paths []string) (*Report, error) {
	logger := p.logger()
	report := &Report{Files: make([]FileReport, len(paths))}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Files[i] = p.processFile(gctx, path)
			if err := report.Files[i].Err; err != nil {
				logger.Error("generation failed", "path", path, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) processFile(ctx context.Context, path string) FileReport {
	fr := FileReport{Path: path}

	ok, err := file.ContainsDiagram(path)
	if err != nil {
		fr.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return fr
	}
	if !ok {
		fr.Skipped = true
		return fr
	}

	res, err := p.Parser.ParseFile(ctx, path)
	if err != nil {
		fr.Err = err
		return fr
	}
	fr.Diagnostics = res.Diagnostics

	dir := p.OutDir
	if dir == "" {
		dir = generator.OutputDir(path)
	}
	for _, d := range res.Diagrams {
		fr.Diagrams = append(fr.Diagrams, d.Name)
		written, err := p.Renderer.Write(dir, d, path)
		fr.Written = append(fr.Written, written...)
		if err != nil {
			fr.Err = fmt.Errorf("failed to write %s: %w", d.Name, err)
			return fr
		}
	}
	p.logger().Debug("file processed", "path", path, "diagrams", len(fr.Diagrams), "written", len(fr.Written))
	return fr
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return logging.NewNop()
	}
	return p.Logger
}
