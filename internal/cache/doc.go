// Package cache provides a bounded LRU cache for GPU objects that are
// expensive to recreate, such as uploaded atlas textures.
//
// Evicted values are handed to an eviction callback so the owner can
// release the resources they hold:
//
//	c := cache.New[*monotext.Atlas, *texture](8, func(_ *monotext.Atlas, t *texture) {
//	    t.destroy(device)
//	})
//	c.Put(atlas, tex)
//
// Cache is not safe for concurrent use; the owner serializes access.
package cache
