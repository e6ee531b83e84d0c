/*
Package ports defines the driven ports (interfaces) of the diagram extractor.

These interfaces decouple the parser facade from external implementations, so
parsed models can be cached in memory, on disk, or in Redis without the core
knowing which.

# Key Interfaces

  - ModelCache: Stores finalized diagrams keyed by a content hash.
*/
package ports
