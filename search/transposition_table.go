package search

import (
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// Rough per-entry cost for sizing: a FEN key plus the entry struct
// and map overhead.
const estimatedEntrySize = 128

const (
	defaultMemoryFraction = 0.05
	minTableCapacity      = 1 << 16
)

type tableEntry struct {
	depth int
	score int
}

// TranspositionTable caches search scores keyed by the canonical FEN
// of a position. An entry satisfies a lookup only if it was searched
// at least as deep as the caller requires; replacement is
// depth-preferred (a shallower result never overwrites a deeper one)
// and the table is bounded, evicting oldest entries first.
//
// The table is owned by one game session and is only touched while
// the board lock is held, so it carries no lock of its own.
type TranspositionTable struct {
	table    map[string]tableEntry
	queue    []string
	head     int
	capacity int

	created   uint64
	lookups   uint64
	hits      uint64
	evictions uint64
}

// NewTranspositionTable returns a table bounded to capacity entries.
// A capacity of zero or less derives a bound from a fraction of
// system memory.
func NewTranspositionTable(capacity int) *TranspositionTable {
	if capacity <= 0 {
		derived := int(defaultMemoryFraction * float64(memory.TotalMemory()) / estimatedEntrySize)
		capacity = max(derived, minTableCapacity)
	}
	t := &TranspositionTable{capacity: capacity}
	t.Reset()
	log.Debug().Int("capacity", t.capacity).Msg("transposition-table-created")
	return t
}

// Lookup returns the cached score for key if an entry exists that was
// stored at depth >= minDepth. A shallower entry is a miss, never an
// error.
func (t *TranspositionTable) Lookup(key string, minDepth int) (int, bool) {
	t.lookups++
	entry, ok := t.table[key]
	if !ok || entry.depth < minDepth {
		return 0, false
	}
	t.hits++
	return entry.score, true
}

// Store records a (depth, score) pair for key, keeping the deeper of
// the existing and the new entry.
func (t *TranspositionTable) Store(key string, depth, score int) {
	if existing, ok := t.table[key]; ok {
		if existing.depth > depth {
			return
		}
		t.table[key] = tableEntry{depth: depth, score: score}
		t.created++
		return
	}
	if len(t.table) >= t.capacity {
		t.evictOldest()
	}
	t.table[key] = tableEntry{depth: depth, score: score}
	t.queue = append(t.queue, key)
	t.created++
}

func (t *TranspositionTable) evictOldest() {
	for t.head < len(t.queue) {
		key := t.queue[t.head]
		t.head++
		if _, ok := t.table[key]; ok {
			delete(t.table, key)
			t.evictions++
			break
		}
	}
	// Drop the dead prefix once it dominates, so the queue stays
	// proportional to the live entries rather than to total stores.
	if t.head > len(t.queue)/2 {
		t.queue = append([]string(nil), t.queue[t.head:]...)
		t.head = 0
	}
}

// Len returns the number of live entries.
func (t *TranspositionTable) Len() int {
	return len(t.table)
}

// Reset clears the table; called alongside a game reset.
func (t *TranspositionTable) Reset() {
	if t.table != nil {
		log.Debug().
			Uint64("created", t.created).
			Uint64("lookups", t.lookups).
			Uint64("hits", t.hits).
			Uint64("evictions", t.evictions).
			Msg("transposition-table-reset")
	}
	t.table = make(map[string]tableEntry)
	t.queue = nil
	t.head = 0
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.evictions = 0
}
