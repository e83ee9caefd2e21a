package aggregate

import "sort"

// Count is a key and its number of occurrences.
type Count struct {
	Name  string
	Count int
}

// Counter counts occurrences of string keys and remembers the order in
// which keys were first seen.
type Counter struct {
	index  map[string]int
	counts []Count
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Add records one occurrence of name.
func (c *Counter) Add(name string) {
	if i, ok := c.index[name]; ok {
		c.counts[i].Count++
		return
	}
	c.index[name] = len(c.counts)
	c.counts = append(c.counts, Count{Name: name, Count: 1})
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.counts)
}

// Names returns the distinct keys in first-seen order.
func (c *Counter) Names() []string {
	out := make([]string, len(c.counts))
	for i, e := range c.counts {
		out[i] = e.Name
	}
	return out
}

// Ranked returns the counts sorted by descending count. Equal counts keep
// first-seen order; there is no secondary key.
func (c *Counter) Ranked() []Count {
	out := make([]Count, len(c.counts))
	copy(out, c.counts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
