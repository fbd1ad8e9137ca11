package changes

import (
	"slices"
	"sync"
)

// Changelog is the lazily grown, append-only list of changelog items.
// Total is -1 until the first page has been loaded.
type Changelog struct {
	mu    sync.RWMutex
	total int
	items []ChangelogItem
}

func NewChangelog() *Changelog {
	return &Changelog{total: -1}
}

func (c *Changelog) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total
}

func (c *Changelog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a copy of the loaded items in server order.
func (c *Changelog) Items() []ChangelogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Changelog) Item(i int) (ChangelogItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.items) {
		return ChangelogItem{}, false
	}
	return c.items[i], true
}

// HasMore reports whether another page should be requested.
func (c *Changelog) HasMore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasMore()
}

func (c *Changelog) hasMore() bool {
	return c.total < 0 || len(c.items) < c.total
}

func (c *Changelog) snapshot() (total, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total, len(c.items)
}

// appendPage adds a page fetched when the list had expectedLen items. It returns false,
// leaving the list untouched, if the list grew in the meantime. Items beyond total are dropped
// so that len(items) <= total always holds.
func (c *Changelog) appendPage(expectedLen, total int, page []ChangelogItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) != expectedLen {
		return false
	}
	if total < len(c.items) {
		total = len(c.items)
	}
	if room := total - len(c.items); len(page) > room {
		page = page[:room]
	}
	c.total = total
	c.items = append(c.items, page...)
	return true
}
