// Package driving provides interfaces exposed to entry points
// (primary/inbound ports): the CLI and the interactive session consume the
// retrieval engine and the index builder through these interfaces.
package driving
