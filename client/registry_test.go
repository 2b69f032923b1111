package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionAddIsIdempotent(t *testing.T) {
	collection := NewCollection[*Slice]()

	added := 0
	collection.Added.Subscribe(func(_ *Slice) {
		added++
	})

	first := newSlice("0")
	assert.True(t, collection.Add(first))
	assert.False(t, collection.Add(newSlice("0")))

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, collection.Count())

	entity, ok := collection.FindByID("0")
	require.True(t, ok)
	assert.Same(t, first, entity)
}

func TestCollectionRemoveUnknownIsSilent(t *testing.T) {
	collection := NewCollection[*Slice]()

	removed := 0
	collection.Removed.Subscribe(func(_ *Slice) {
		removed++
	})

	_, found := collection.Remove("0")
	assert.False(t, found)
	assert.Equal(t, 0, removed)

	collection.Add(newSlice("0"))
	_, found = collection.Remove("0")
	assert.True(t, found)
	_, found = collection.Remove("0")
	assert.False(t, found)
	assert.Equal(t, 1, removed)
}

func TestCollectionAllIsASnapshot(t *testing.T) {
	collection := NewCollection[*Slice]()
	collection.Add(newSlice("0"))
	collection.Add(newSlice("1"))

	snapshot := collection.All()
	collection.Remove("0")

	require.Len(t, snapshot, 2)
	assert.Equal(t, "0", snapshot[0].EntityID())
	assert.Equal(t, "1", snapshot[1].EntityID())
	assert.Equal(t, 1, collection.Count())
}

func TestAwaitByID(t *testing.T) {
	collection := NewCollection[*Slice]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		collection.Add(newSlice("0"))
	}()

	entity, ok := collection.AwaitByID("0", time.Second)
	require.True(t, ok)
	assert.Equal(t, "0", entity.EntityID())
}

func TestAwaitByIDTimeout(t *testing.T) {
	collection := NewCollection[*Slice]()

	start := time.Now()
	_, ok := collection.AwaitByID("0", 20*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestAwaitByIDFindsExisting(t *testing.T) {
	collection := NewCollection[*Slice]()
	collection.Add(newSlice("0"))

	_, ok := collection.AwaitByID("0", time.Second)
	assert.True(t, ok)
}

func TestClearEmitsRemovals(t *testing.T) {
	collection := NewCollection[*Slice]()
	collection.Add(newSlice("0"))
	collection.Add(newSlice("1"))

	var removed []string
	collection.Removed.Subscribe(func(s *Slice) {
		removed = append(removed, s.EntityID())
	})

	collection.clear()
	assert.ElementsMatch(t, []string{"0", "1"}, removed)
	assert.Equal(t, 0, collection.Count())
}
