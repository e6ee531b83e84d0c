// Package generator turns finalized diagrams into output files: model dumps
// in data formats and arbitrary text rendered from templates.
package generator

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/aretw0/hsmgen/internal/adapters/file"
	"github.com/aretw0/hsmgen/pkg/domain"
)

const templateExt = ".tmpl"

//go:embed templates
var builtin embed.FS

// Options configures a Generator.
type Options struct {
	Formats []Format
	// TemplateDir holds user templates: every NAME.EXT.tmpl renders to <diagram><Suffix>.EXT.
	TemplateDir string
	// Suffix is appended to the diagram name of template outputs. Default "_HSM".
	Suffix string
}

// Artifact is one rendered output file.
type Artifact struct {
	Name string
	Data []byte
}

// TemplateData is the value templates execute against.
// Fields and methods of the diagram are reachable directly (.Name, .States, .Children).
type TemplateData struct {
	*domain.Diagram
	Source string
	Suffix string
	Guard  string
}

type namedTemplate struct {
	ext  string
	tmpl *template.Template
}

// Generator renders diagrams. It is immutable and safe for concurrent use.
type Generator struct {
	formats   []Format
	templates []namedTemplate
	suffix    string
}

// New loads the requested templates and validates the formats.
func New(opts Options) (*Generator, error) {
	g := &Generator{suffix: opts.Suffix}
	if g.suffix == "" {
		g.suffix = "_HSM"
	}

	seen := map[string]string{}
	add := func(ts []namedTemplate, origin string) error {
		for _, t := range ts {
			if prev, dup := seen[t.ext]; dup {
				return fmt.Errorf("templates %s and %s both produce %s files", prev, origin, t.ext)
			}
			seen[t.ext] = origin
			g.templates = append(g.templates, t)
		}
		return nil
	}

	for _, f := range opts.Formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return nil, err
		}
		if f == FormatCPP {
			ts, err := loadTemplates(builtin, "templates/cpp")
			if err != nil {
				return nil, err
			}
			if err := add(ts, "builtin cpp"); err != nil {
				return nil, err
			}
			continue
		}
		g.formats = append(g.formats, f)
	}

	if opts.TemplateDir != "" {
		ts, err := loadTemplates(os.DirFS(opts.TemplateDir), ".")
		if err != nil {
			return nil, fmt.Errorf("failed to load templates from %s: %w", opts.TemplateDir, err)
		}
		if len(ts) == 0 {
			return nil, fmt.Errorf("no *%s files in %s", templateExt, opts.TemplateDir)
		}
		if err := add(ts, opts.TemplateDir); err != nil {
			return nil, err
		}
	}

	if len(g.formats) == 0 && len(g.templates) == 0 {
		return nil, fmt.Errorf("nothing to generate: no formats and no templates")
	}
	return g, nil
}

func loadTemplates(fsys fs.FS, dir string) ([]namedTemplate, error) {
	paths, err := fs.Glob(fsys, pathJoin(dir, "*"+templateExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	out := make([]namedTemplate, 0, len(paths))
	for _, p := range paths {
		base := strings.TrimSuffix(filepath.Base(p), templateExt)
		ext := filepath.Ext(base)
		if ext == "" {
			return nil, fmt.Errorf("template %s: name must look like NAME.EXT%s", p, templateExt)
		}
		t, err := template.New(filepath.Base(p)).Funcs(funcMap).ParseFS(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", p, err)
		}
		out = append(out, namedTemplate{ext: ext, tmpl: t})
	}
	return out, nil
}

func pathJoin(dir, name string) string {
	if dir == "." {
		return name
	}
	return dir + "/" + name
}

// Render produces every artifact for one diagram, formats first, then templates.
func (g *Generator) Render(d *domain.Diagram, source string) ([]Artifact, error) {
	var arts []Artifact

	for _, f := range g.formats {
		data, err := Encode(d, f)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s as %s: %w", d.Name, f, err)
		}
		arts = append(arts, Artifact{Name: d.Name + extension(f), Data: data})
	}

	td := TemplateData{
		Diagram: d,
		Source:  source,
		Suffix:  g.suffix,
		Guard:   guard(d.Name + g.suffix),
	}
	for _, t := range g.templates {
		var buf bytes.Buffer
		if err := t.tmpl.Execute(&buf, td); err != nil {
			return nil, fmt.Errorf("failed to render %s for %s: %w", t.tmpl.Name(), d.Name, err)
		}
		arts = append(arts, Artifact{Name: d.Name + g.suffix + t.ext, Data: buf.Bytes()})
	}

	return arts, nil
}

// Write renders d and writes the artifacts into dir atomically.
// It returns the written paths.
func (g *Generator) Write(dir string, d *domain.Diagram, source string) ([]string, error) {
	arts, err := g.Render(d, source)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(arts))
	for _, a := range arts {
		p := filepath.Join(dir, a.Name)
		if err := file.WriteAtomic(p, a.Data, 0644); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// OutputDir is the default destination for an input file: generated/ beside it.
func OutputDir(input string) string {
	return filepath.Join(filepath.Dir(input), "generated")
}

func guard(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	sb.WriteString("_HPP")
	return sb.String()
}
