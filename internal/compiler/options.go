package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsmgen/pkg/domain"
)

// Options tunes the policies left open by the notation.
type Options struct {
	Unterminated  domain.UnterminatedPolicy
	DuplicateInit domain.InitPolicy
	Hierarchy     domain.HierarchyPolicy

	// LinePrefixes are comment leaders stripped from trimmed lines before
	// classification, e.g. "//" for diagrams embedded in line comments.
	LinePrefixes []string
}

// Option defines a functional option for configuring the Parser.
type Option func(*Options)

// DefaultOptions reproduces the reference behaviour: drop unterminated
// diagrams, last initial transition wins, tolerant reparenting.
func DefaultOptions() Options {
	return Options{
		Unterminated:  domain.UnterminatedDrop,
		DuplicateInit: domain.InitLastWins,
		Hierarchy:     domain.HierarchyTolerant,
	}
}

// WithUnterminated sets what happens when input ends inside a diagram.
func WithUnterminated(p domain.UnterminatedPolicy) Option {
	return func(o *Options) {
		o.Unterminated = p
	}
}

// WithDuplicateInit sets how repeated initial transitions resolve.
func WithDuplicateInit(p domain.InitPolicy) Option {
	return func(o *Options) {
		o.DuplicateInit = p
	}
}

// WithHierarchy sets the state ownership policy.
func WithHierarchy(p domain.HierarchyPolicy) Option {
	return func(o *Options) {
		o.Hierarchy = p
	}
}

// WithLinePrefixes sets the comment leaders stripped before classification.
func WithLinePrefixes(prefixes ...string) Option {
	return func(o *Options) {
		o.LinePrefixes = append([]string(nil), prefixes...)
	}
}

// Fingerprint identifies the options in cache keys.
func (o Options) Fingerprint() string {
	return fmt.Sprintf("u=%s;i=%s;h=%s;p=%s", o.Unterminated, o.DuplicateInit, o.Hierarchy, strings.Join(o.LinePrefixes, "\x1f"))
}
