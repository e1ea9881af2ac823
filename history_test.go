package daylog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryPush(t *testing.T) {
	t.Run("evicts oldest past capacity", func(t *testing.T) {
		h := NewHistory(3)
		for _, line := range []string{"a", "b", "c", "d"} {
			h.Push(line)
		}
		assert.Equal(t, []string{"d", "c", "b"}, h.Snapshot())
		assert.Equal(t, 3, h.Len())
		assert.Equal(t, 3, h.Cap())
	})

	t.Run("partially filled", func(t *testing.T) {
		h := NewHistory(5)
		h.Push("a")
		h.Push("b")
		assert.Equal(t, []string{"b", "a"}, h.Snapshot())
	})

	t.Run("empty", func(t *testing.T) {
		h := NewHistory(2)
		assert.Empty(t, h.Snapshot())
	})

	t.Run("bounded after many wraps", func(t *testing.T) {
		h := NewHistory(4)
		for i := 0; i < 103; i++ {
			h.Push(fmt.Sprint(i))
		}
		assert.Equal(t, []string{"102", "101", "100", "99"}, h.Snapshot())
	})

	t.Run("non-positive capacity uses default", func(t *testing.T) {
		h := NewHistory(0)
		assert.Equal(t, int(DefaultConfig().MaxLines), h.Cap())
	})
}

func TestHistorySnapshotIsCopy(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")

	snap := h.Snapshot()
	snap[0] = "mutated"

	assert.Equal(t, []string{"a"}, h.Snapshot())
}

func TestHistoryResize(t *testing.T) {
	t.Run("shrink keeps newest", func(t *testing.T) {
		h := NewHistory(5)
		for _, line := range []string{"a", "b", "c", "d", "e", "f"} {
			h.Push(line)
		}
		h.Resize(2)
		assert.Equal(t, []string{"f", "e"}, h.Snapshot())

		h.Push("g")
		assert.Equal(t, []string{"g", "f"}, h.Snapshot())
	})

	t.Run("grow keeps everything", func(t *testing.T) {
		h := NewHistory(2)
		for _, line := range []string{"a", "b", "c"} {
			h.Push(line)
		}
		h.Resize(4)
		assert.Equal(t, []string{"c", "b"}, h.Snapshot())

		h.Push("d")
		h.Push("e")
		h.Push("f")
		assert.Equal(t, []string{"f", "e", "d", "c"}, h.Snapshot())
	})

	t.Run("invalid size ignored", func(t *testing.T) {
		h := NewHistory(2)
		h.Resize(-1)
		assert.Equal(t, 2, h.Cap())
	})
}

func TestHistoryConcurrentReaders(t *testing.T) {
	h := NewHistory(10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.Push(fmt.Sprint(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				assert.LessOrEqual(t, len(h.Snapshot()), 10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "999", h.Snapshot()[0])
}
