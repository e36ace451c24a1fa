// Package vectorindex provides pure-Go inner-product similarity indexes.
//
// Two kinds are available: Flat performs exact exhaustive search, IVF
// performs approximate search over a trained partitioning of the vector
// space. Both store vectors in insertion order; a vector's ordinal position
// is its 0-based insertion slot and is the permanent binding to chunk
// records. Vectors are expected to be L2-normalized by the caller so that
// inner product equals cosine similarity.
//
// Indexes persist to a single opaque binary artifact. Save writes to a temp
// file in the target directory and renames it into place, so a concurrent
// reader never sees a partial file. Load detects the index kind from the
// artifact header.
package vectorindex
