package content

import "sort"

// Counter counts keys and remembers the order they were first seen, so
// MostCommon breaks ties by first insertion.
type Counter[K comparable] struct {
	counts map[K]int
	order  []K
}

func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

func (c *Counter[K]) Add(k K) {
	c.AddN(k, 1)
}

func (c *Counter[K]) AddN(k K, n int) {
	if _, ok := c.counts[k]; !ok {
		c.order = append(c.order, k)
	}
	c.counts[k] += n
}

func (c *Counter[K]) Count(k K) int {
	return c.counts[k]
}

// Len is the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.order)
}

// Entry is a key with its count.
type Entry[K comparable] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// MostCommon returns the n highest counts, all of them when n < 0.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	out := make([]Entry[K], len(c.order))
	for i, k := range c.order {
		out[i] = Entry[K]{Key: k, Count: c.counts[k]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
