// Package index implements the hash indexes the planner uses to avoid
// full table scans for equality filters.
package index

import (
	"encoding/json"
	"hash/fnv"
)

// Built maps a hash of the key-column values to the ordinals of the rows
// carrying those values. Collisions are possible; callers re-check matched
// rows against the original predicate.
type Built struct {
	entries map[uint64][]int
}

// Build constructs an index over rows. keyPos holds the positions of the
// key columns within each row, in index column order.
func Build(rows [][]any, keyPos []int) *Built {
	entries := make(map[uint64][]int)
	for i, row := range rows {
		key := make([]any, len(keyPos))
		for k, pos := range keyPos {
			if pos >= 0 && pos < len(row) {
				key[k] = row[pos]
			}
		}
		h := Hash(key)
		entries[h] = append(entries[h], i)
	}
	return &Built{entries: entries}
}

// Lookup returns the ordinals of rows whose key columns hash like values.
// The result is in table order and may be empty.
func (b *Built) Lookup(values []any) []int {
	return b.entries[Hash(values)]
}

// Len reports the number of distinct hashed keys.
func (b *Built) Len() int {
	return len(b.entries)
}

// Hash produces a stable hash of a key-value tuple via its canonical JSON
// encoding. Unrepresentable values hash as null.
func Hash(values []any) uint64 {
	h := fnv.New64a()
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			data = []byte("null")
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return h.Sum64()
}
