package prices

import "sync"

// SymbolCache remembers which Coinlore id serves each symbol, first write
// wins. It is injected wherever it is needed rather than living in a
// package-level variable, so tests stay isolated and users never share
// unintended state.
type SymbolCache struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewSymbolCache() *SymbolCache {
	return &SymbolCache{ids: make(map[string]string)}
}

// Record stores the id for a symbol unless one is already known.
func (c *SymbolCache) Record(symbol, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[symbol]; !ok {
		c.ids[symbol] = id
	}
}

// Lookup returns the cached id for a symbol.
func (c *SymbolCache) Lookup(symbol string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[symbol]
	return id, ok
}

// Len reports how many symbols are cached.
func (c *SymbolCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}
