package compiler

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

const maxLineSize = 1 << 20

// Parser scans text for @startuml … @enduml blocks and builds one model per block.
// A Parser holds only its options; every call to Parse is independent.
type Parser struct {
	opts Options
}

// NewParser creates a new parser instance.
func NewParser(opts ...Option) *Parser {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{opts: o}
}

// Options returns the effective options.
func (p *Parser) Options() Options {
	return p.opts
}

// Parse reads r line by line. Text outside diagram markers is ignored, so the
// notation may be embedded in any other file format. A fatal structural error
// aborts the whole input and is returned as a *domain.ParseError.
func (p *Parser) Parse(r io.Reader, source string) (*domain.ParseResult, error) {
	s := newScan(p.opts, source)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := s.feed(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", displaySource(source), err)
	}
	return s.finish()
}

// ParseString parses an in-memory document.
func (p *Parser) ParseString(text, source string) (*domain.ParseResult, error) {
	return p.Parse(strings.NewReader(text), source)
}

// ParseLines parses an already split sequence of lines.
func (p *Parser) ParseLines(lines []string, source string) (*domain.ParseResult, error) {
	s := newScan(p.opts, source)
	for _, l := range lines {
		if err := s.feed(l); err != nil {
			return nil, err
		}
	}
	return s.finish()
}

// scan is the fold state threaded through one input.
type scan struct {
	opts   Options
	source string
	line   int
	starts int

	active    *builder
	startLine int
	result    *domain.ParseResult
}

func newScan(opts Options, source string) *scan {
	return &scan{
		opts:   opts,
		source: source,
		result: &domain.ParseResult{
			Source:   source,
			Diagrams: []*domain.Diagram{},
		},
	}
}

func (s *scan) feed(raw string) error {
	s.line++
	text := s.strip(raw)
	line := Classify(text)

	if s.active == nil {
		if l, ok := line.(StartLine); ok {
			s.start(l)
		}
		return nil
	}

	var err error
	switch l := line.(type) {
	case StartLine:
		err = domain.ErrNestedDiagram
	case EndLine:
		s.end()
	case TransitionLine:
		target := l.Target
		err = s.active.addTransition(domain.Transition{
			Source:    l.Source,
			Target:    &target,
			Event:     l.Event,
			Condition: l.Condition,
			Action:    l.Action,
		})
	case InitLine:
		err = s.active.addInit(l.Target)
	case StateLine:
		if l.Composite {
			err = s.active.open(l.Name)
		} else {
			err = s.active.registerState(l.Name)
		}
	case CloseLine:
		err = s.active.close()
	case StateActionLine:
		err = s.active.addStateAction(l.State, l.Phase, l.Action)
	case InnerEventLine:
		err = s.active.addTransition(domain.Transition{
			Source:    l.State,
			Event:     l.Event,
			Condition: l.Condition,
			Action:    l.Action,
		})
	case UnknownLine:
		s.diagnose(domain.DiagnosticUnparsedLine, s.line, text)
	case BlankLine:
	}

	if err != nil {
		return &domain.ParseError{Source: s.source, Line: s.line, Text: text, Err: err}
	}
	return nil
}

// strip trims whitespace and at most one configured comment leader.
func (s *scan) strip(raw string) string {
	text := strings.TrimSpace(raw)
	for _, prefix := range s.opts.LinePrefixes {
		if prefix != "" && strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(text[len(prefix):])
		}
	}
	return text
}

func (s *scan) start(l StartLine) {
	s.starts++
	name := fmt.Sprintf("diagram_%d", s.starts)
	if l.Title != nil {
		name = *l.Title
	}
	s.active = newBuilder(name, s.opts)
	s.startLine = s.line
}

func (s *scan) end() {
	if open := s.active.openComposites(); open > 0 {
		s.diagnose(domain.DiagnosticUnclosedComposite, s.line,
			fmt.Sprintf("%d composite(s) still open in %s, innermost %q", open, s.active.name, s.active.top()))
	}
	s.result.Diagrams = append(s.result.Diagrams, s.active.finalize())
	s.active = nil
}

func (s *scan) finish() (*domain.ParseResult, error) {
	if s.active == nil {
		return s.result, nil
	}

	switch s.opts.Unterminated {
	case domain.UnterminatedEmit:
		s.end()
	case domain.UnterminatedFail:
		return nil, &domain.ParseError{
			Source: s.source,
			Line:   s.startLine,
			Text:   s.active.name,
			Err:    domain.ErrUnterminatedDiagram,
		}
	default:
		s.diagnose(domain.DiagnosticUnterminatedDiagram, s.startLine,
			fmt.Sprintf("diagram %s dropped: no @enduml before end of input", s.active.name))
		s.active = nil
	}
	return s.result, nil
}

func (s *scan) diagnose(kind domain.DiagnosticKind, line int, text string) {
	s.result.Diagnostics = append(s.result.Diagnostics, domain.Diagnostic{
		Kind:   kind,
		Source: s.source,
		Line:   line,
		Text:   text,
	})
}

func displaySource(source string) string {
	if source == "" {
		return "input"
	}
	return source
}
