// Package naming allocates non-colliding output paths.
//
// A desired path that is free is used unchanged. Otherwise the first free
// "stem (N).ext" variant with N starting at 2 is chosen. [Allocate] consults
// only the filesystem; [Allocator] additionally remembers paths handed out
// earlier in the same run so that a preview, which writes nothing, still
// reports the names an apply run would produce.
package naming
