// Package keycodec maps variable-length hierarchical keys (ordered
// sequences of 1 to 4 string segments) onto a fixed-width encoded form
// suitable as a composite primary key, and back.
//
// The encoding pads short keys with empty-string slots in a contiguous
// suffix. Because the padding marker is the empty string, a logical key
// ending in an empty segment collapses to its shorter form on decode.
// All functions are pure and side-effect free.
package keycodec
