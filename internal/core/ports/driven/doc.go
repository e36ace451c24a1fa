// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the embedding backend, the vector index and
// the corpus store. The retrieval engine depends on these interfaces only;
// concrete adapters live under internal/adapters/driven.
package driven
