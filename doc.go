/*
Package hsmgen extracts hierarchical state machine models from PlantUML state
diagrams embedded in arbitrary text.

Any file may carry diagrams: a dedicated .puml file, a C++ header with the
diagram in a block comment, or a Markdown document. Everything outside
@startuml … @enduml markers is ignored. Each diagram becomes a domain.Diagram:
the state tree, depth levels, leaf flags, initial states, per-state event
tables, entry/exit actions and the sorted event, action and condition
vocabularies a code generator needs.

# Usage

	gen := hsmgen.New(hsmgen.WithHierarchy(domain.HierarchyStrict))

	res, err := gen.ParseFile(ctx, "door.hpp")
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			log.Fatalf("line %d: %v", perr.Line, perr.Err)
		}
		log.Fatal(err)
	}

	for _, d := range res.Diagrams {
		fmt.Println(d.Name, d.States)
	}

# Caching

With WithCache, results are keyed by a SHA-256 of the input text and the parser
policies. A hit skips parsing entirely; diagnostics are only reported on a miss.
*/
package hsmgen
