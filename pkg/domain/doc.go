/*
Package domain contains the structural model produced by the hsmgen compiler.

It defines the per-diagram record handed to code-generation collaborators: the
state tree rooted at the "Top" sentinel, depth and leaf classification, initial
transitions, transition tables and entry/exit action lists. This package is kept
pure and free of I/O so that adapters (caches, HTTP, MCP, templates) can depend
on it without pulling in the parser.

# Key Entities

  - Diagram: The finalized model of one @startuml … @enduml block.
  - Transition: An event handled by a state, with optional target, condition and action.
  - Diagnostic: A non-fatal observation made while parsing (e.g. an unparsed line).
  - ParseError: A fatal structural error carrying the offending position.
*/
package domain
