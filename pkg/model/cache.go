package model

// Cached returns the value memoized under name, computing and storing it on
// the first call. Presence of the entry decides a hit, so zero results such
// as 0, "" or false are cached like any other.
//
// An entry stored with a different type than T is treated as a miss and
// replaced.
func Cached[T any](e *Entity, name string, compute func() T) T {
	if v, ok := e.cache[name]; ok {
		if typed, ok := v.(T); ok {
			e.logger.Debug("cache hit", "entity_id", e.id, "name", name)
			return typed
		}
	}

	e.logger.Debug("cache miss", "entity_id", e.id, "name", name)
	v := compute()
	e.cache[name] = v
	return v
}

// IsCached reports whether name currently has a cache entry.
func (e *Entity) IsCached(name string) bool {
	_, ok := e.cache[name]
	return ok
}

// ClearCached removes the named cache entries, or every entry when called
// without names. Attributes are never touched.
func (e *Entity) ClearCached(names ...string) {
	if len(names) == 0 {
		clear(e.cache)
		e.logger.Debug("cache cleared", "entity_id", e.id)
		return
	}
	for _, name := range names {
		delete(e.cache, name)
	}
	e.logger.Debug("cache entries cleared", "entity_id", e.id, "names", names)
}
