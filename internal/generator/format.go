package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/hsmgen/internal/presentation/graph"
	"github.com/aretw0/hsmgen/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format names a built-in output.
type Format string

const (
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	// FormatCPP renders the bundled C++ header/source templates.
	FormatCPP Format = "cpp"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatYAML, FormatJSON, FormatMermaid, FormatCPP}

// ParseFormat validates a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want yaml, json, mermaid or cpp)", s)
}

// Encode serializes one diagram in a data format.
func Encode(d *domain.Diagram, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatJSON:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatMermaid:
		return []byte(graph.GenerateMermaid(d, nil)), nil
	}
	return nil, fmt.Errorf("format %q is not a data format", f)
}

// EncodeResult serializes a whole parse result (diagrams and diagnostics).
func EncodeResult(r *domain.ParseResult, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(r)
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatMermaid:
		var sb strings.Builder
		for i, d := range r.Diagrams {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(graph.GenerateMermaid(d, nil))
		}
		return []byte(sb.String()), nil
	}
	return nil, fmt.Errorf("format %q cannot encode a parse result", f)
}

func extension(f Format) string {
	if f == FormatMermaid {
		return ".mmd"
	}
	return "." + string(f)
}
