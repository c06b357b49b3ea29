// Package cache provides a small generic LRU cache.
//
// The native backend keeps compiled SPIR-V keyed by a hash of the WGSL
// source, so a shader reload only recompiles the files that changed.
//
//	c := cache.New[cache.Key, []uint32](32)
//	words, err := c.GetOrCreate(cache.KeyOf(src), func() ([]uint32, error) {
//	    return compile(src)
//	})
//
// Cache is safe for concurrent use and must not be copied.
package cache
