package model

import (
	"slices"

	"github.com/roach88/modelkit/pkg/value"
)

// Match selects entities whose attribute Key currently deep-equals Value.
type Match struct {
	Key   string
	Value value.Value
}

// RemoveOptions holds the criteria for Collection.Remove. Any combination
// may be set; unset criteria are skipped.
type RemoveOptions[T Model] struct {
	// Index removes the entity at that position, if in range.
	Index *int

	// Match removes every entity matching the key/value pair.
	Match *Match

	// Items removes each listed entity by reference, first occurrence.
	Items []T
}

// Index returns a pointer to i, for RemoveOptions.Index.
func Index(i int) *int {
	return &i
}

// Remove applies the criteria in the order index, match, items. Each
// criterion sees the collection already shrunk by the previous ones. It
// returns the removed entities in removal order, or nil if nothing matched.
func (c *Collection[T]) Remove(opts RemoveOptions[T]) []T {
	var removed []T

	if opts.Index != nil {
		if m, ok := c.removeAt(*opts.Index); ok {
			removed = append(removed, m)
		}
	}

	if opts.Match != nil {
		removed = append(removed, c.removeMatching(*opts.Match)...)
	}

	if len(opts.Items) > 0 {
		removed = append(removed, c.removeItems(opts.Items)...)
	}

	if len(removed) == 0 {
		return nil
	}
	c.logger.Debug("entities removed",
		"removed", len(removed),
		"count", len(c.items))
	return removed
}

// RemoveAt removes the entity at index. It returns false for any index
// outside [0, Count()).
func (c *Collection[T]) RemoveAt(index int) (T, bool) {
	removed := c.Remove(RemoveOptions[T]{Index: &index})
	if len(removed) == 0 {
		var zero T
		return zero, false
	}
	return removed[0], true
}

// RemoveWhere removes every entity whose key attribute deep-equals v.
func (c *Collection[T]) RemoveWhere(key string, v value.Value) []T {
	return c.Remove(RemoveOptions[T]{Match: &Match{Key: key, Value: v}})
}

// RemoveItems removes each of items by reference.
func (c *Collection[T]) RemoveItems(items ...T) []T {
	return c.Remove(RemoveOptions[T]{Items: items})
}

func (c *Collection[T]) removeAt(index int) (T, bool) {
	if index < 0 || index >= len(c.items) {
		var zero T
		return zero, false
	}
	m := c.items[index]
	c.items = slices.Delete(c.items, index, index+1)
	return m, true
}

func (c *Collection[T]) removeMatching(match Match) []T {
	var removed []T
	kept := c.items[:0]
	for _, item := range c.items {
		got, ok := item.Base().Lookup(match.Key)
		if ok && value.Equal(got, match.Value) {
			removed = append(removed, item)
			continue
		}
		kept = append(kept, item)
	}
	clear(c.items[len(kept):])
	c.items = kept
	return removed
}

func (c *Collection[T]) removeItems(items []T) []T {
	var removed []T
	for _, item := range items {
		if m, ok := c.removeAt(c.IndexOf(item)); ok {
			removed = append(removed, m)
		}
	}
	return removed
}
