package search

import (
	"fmt"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestLookupRespectsMinDepth(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(16)
	table.Store("pos", 3, 42)

	score, ok := table.Lookup("pos", 3)
	is.True(ok)
	is.Equal(score, 42)

	score, ok = table.Lookup("pos", 2)
	is.True(ok)
	is.Equal(score, 42)

	// A deeper requirement than the stored depth is a miss.
	_, ok = table.Lookup("pos", 4)
	is.True(!ok)

	_, ok = table.Lookup("unknown", 0)
	is.True(!ok)
}

func TestDepthPreferredReplacement(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(16)

	table.Store("pos", 3, 42)
	// A shallower result must not displace the deeper one.
	table.Store("pos", 1, 99)
	score, ok := table.Lookup("pos", 3)
	is.True(ok)
	is.Equal(score, 42)

	// Equal or deeper results do replace.
	table.Store("pos", 3, 7)
	score, _ = table.Lookup("pos", 3)
	is.Equal(score, 7)
	table.Store("pos", 5, -3)
	score, ok = table.Lookup("pos", 5)
	is.True(ok)
	is.Equal(score, -3)
	is.Equal(table.Len(), 1)
}

func TestBoundedEviction(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(2)

	table.Store("a", 1, 1)
	table.Store("b", 1, 2)
	table.Store("c", 1, 3)
	is.Equal(table.Len(), 2)

	// Oldest entry went first.
	_, ok := table.Lookup("a", 0)
	is.True(!ok)
	_, ok = table.Lookup("b", 0)
	is.True(ok)
	_, ok = table.Lookup("c", 0)
	is.True(ok)
}

func TestEvictionKeepsBound(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(8)
	for i := 0; i < 100; i++ {
		table.Store(fmt.Sprintf("pos-%d", i), 1, i)
	}
	is.Equal(table.Len(), 8)
	score, ok := table.Lookup("pos-99", 1)
	is.True(ok)
	is.Equal(score, 99)
}

func TestEvictionQueueStaysBounded(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(8)
	for i := 0; i < 100000; i++ {
		table.Store(fmt.Sprintf("pos-%d", i), 1, i)
	}
	is.Equal(table.Len(), 8)
	// The queue tracks insertion order for eviction; it must stay
	// proportional to the capacity, not to the number of stores.
	is.True(len(table.queue) <= 2*8+1)
	is.True(table.head <= len(table.queue))

	score, ok := table.Lookup("pos-99999", 1)
	is.True(ok)
	is.Equal(score, 99999)
}

func TestReset(t *testing.T) {
	is := is.New(t)
	table := NewTranspositionTable(16)
	table.Store("pos", 2, 42)
	table.Reset()
	is.Equal(table.Len(), 0)
	_, ok := table.Lookup("pos", 0)
	is.True(!ok)
}
