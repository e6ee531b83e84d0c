package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(t *testing.T, configYAML string) *cobra.Command {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hsmgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))

	cmd := &cobra.Command{Use: "test"}
	cmd.SetContext(context.Background())
	addGlobalFlags(cmd.Flags())
	addPipelineFlags(cmd)
	require.NoError(t, cmd.Flags().Set("config", path))
	return cmd
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	cmd := newTestCommand(t, "parser:\n  unterminated: emit\n  hierarchy: strict\n")
	require.NoError(t, cmd.Flags().Set("unterminated", "fail"))
	require.NoError(t, cmd.Flags().Set("line-prefix", "//"))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, string(domain.UnterminatedFail), cfg.Parser.Unterminated)
	assert.Equal(t, string(domain.HierarchyStrict), cfg.Parser.Hierarchy)
	assert.Equal(t, []string{"//"}, cfg.Parser.LinePrefixes)
}

func TestLoadConfig_RejectsBadFlag(t *testing.T) {
	cmd := newTestCommand(t, "")
	require.NoError(t, cmd.Flags().Set("duplicate-init", "random"))

	_, err := loadConfig(cmd)
	assert.Error(t, err)
}

func TestNewPipeline_Flags(t *testing.T) {
	cmd := newTestCommand(t, "formats: [yaml]\nworkers: 3\n")
	out := t.TempDir()
	require.NoError(t, cmd.Flags().Set("out", out))
	require.NoError(t, cmd.Flags().Set("format", "json,mermaid"))

	e, err := setup(cmd)
	require.NoError(t, err)
	defer e.close()

	p, err := newPipeline(cmd, e)
	require.NoError(t, err)
	assert.Equal(t, out, p.OutDir)
	assert.Equal(t, 3, p.Workers)

	require.NoError(t, os.WriteFile(filepath.Join(out, "m.puml"), []byte("@startuml m\n[*] --> A\n@enduml\n"), 0644))
	report, err := p.Run(cmd.Context(), filepath.Join(out, "m.puml"))
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.FileExists(t, filepath.Join(out, "m.json"))
	assert.FileExists(t, filepath.Join(out, "m.mmd"))
	assert.NoFileExists(t, filepath.Join(out, "m.yaml"))
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.puml"), []byte("@startuml\n[*] --> A\n???\n@enduml\n"), 0644))

	cmd := newTestCommand(t, "")
	e, err := setup(cmd)
	require.NoError(t, err)
	defer e.close()

	assert.NoError(t, runValidate(cmd, e, dir, false))
	assert.Error(t, runValidate(cmd, e, dir, true))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.puml"), []byte("@startuml\n}\n@enduml\n"), 0644))
	assert.Error(t, runValidate(cmd, e, dir, false))
}
