// Package native manages byte blocks allocated outside the Go heap.
//
// An Arena is the lifetime context for a set of blocks. Blocks are freed
// when the Arena is released, or earlier through Arena.Free. Each block is
// freed exactly once. Releasing an Arena twice, or touching a block after
// it was freed, is a programming error and panics.
//
// On Unix systems blocks at or above the mmap threshold are anonymous
// private mappings. Smaller blocks, and every block on other systems, live
// on the Go heap.
package native
