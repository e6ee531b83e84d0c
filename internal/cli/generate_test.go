package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hsmgen"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const machine = `@startuml machine
[*] --> Idle
Idle --> Busy : start
Busy --> Idle : done / notify
@enduml
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newPipeline(t *testing.T, formats ...generator.Format) *Pipeline {
	t.Helper()
	if len(formats) == 0 {
		formats = []generator.Format{generator.FormatYAML}
	}
	r, err := generator.New(generator.Options{Formats: formats})
	require.NoError(t, err)
	return &Pipeline{
		Parser:   hsmgen.New(),
		Renderer: r,
		Workers:  2,
	}
}

func TestPipeline_Run(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.puml"), machine)
	writeFile(t, filepath.Join(root, "sub", "b.puml"), "@startuml other\n[*] --> X\n@enduml\n")
	writeFile(t, filepath.Join(root, "empty.puml"), "just notes\n")
	writeFile(t, filepath.Join(root, "broken.puml"), "@startuml\n}\n@enduml\n")
	writeFile(t, filepath.Join(root, "readme.md"), machine)

	report, err := newPipeline(t).Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Files, 4)

	byPath := map[string]FileReport{}
	for _, f := range report.Files {
		byPath[f.Path] = f
	}

	a := byPath[filepath.Join(root, "a.puml")]
	require.NoError(t, a.Err)
	assert.Equal(t, []string{"machine"}, a.Diagrams)
	assert.Equal(t, []string{filepath.Join(root, "generated", "machine.yaml")}, a.Written)
	assert.FileExists(t, filepath.Join(root, "generated", "machine.yaml"))

	b := byPath[filepath.Join(root, "sub", "b.puml")]
	require.NoError(t, b.Err)
	assert.FileExists(t, filepath.Join(root, "sub", "generated", "other.yaml"))

	assert.True(t, byPath[filepath.Join(root, "empty.puml")].Skipped)

	broken := byPath[filepath.Join(root, "broken.puml")]
	assert.ErrorIs(t, broken.Err, domain.ErrUnbalancedComposite)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 2, report.Diagrams())
	assert.Equal(t, 2, report.Written())
}

func TestPipeline_OutDirAndFormats(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(root, "a.puml"), machine)

	p := newPipeline(t, generator.FormatJSON, generator.FormatMermaid)
	p.OutDir = out

	report, err := p.Run(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	require.NoError(t, report.Files[0].Err)

	assert.FileExists(t, filepath.Join(out, "machine.json"))
	data, err := os.ReadFile(filepath.Join(out, "machine.mmd"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Busy --> Idle : done / notify")
	assert.NoDirExists(t, filepath.Join(root, "generated"))
}

func TestPipeline_SingleFileAnyExtension(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "machine.hpp")
	writeFile(t, src, "// @startuml machine\n// [*] --> Idle\n// @enduml\n")

	p := newPipeline(t)
	p.Parser = hsmgen.New(hsmgen.WithLinePrefixes("//"))

	report, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, []string{"machine"}, report.Files[0].Diagrams)
}

func TestPipeline_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.puml"), machine)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(t).Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Print(t *testing.T) {
	r := &Report{Files: []FileReport{
		{Path: "a.puml", Diagrams: []string{"m"}, Written: []string{"m.yaml"}},
		{Path: "b.puml", Skipped: true},
		{Path: "c.puml", Err: domain.ErrNestedDiagram},
		{Path: "d.puml", Diagnostics: []domain.Diagnostic{{Kind: domain.DiagnosticUnparsedLine, Source: "d.puml", Line: 3, Text: "???"}}},
	}}

	var buf bytes.Buffer
	r.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "ok   a.puml: 1 diagram(s), 1 file(s) written")
	assert.Contains(t, out, "skip b.puml")
	assert.Contains(t, out, "FAIL c.puml")
	assert.Contains(t, out, "d.puml:3")
}
