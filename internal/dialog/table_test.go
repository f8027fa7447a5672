package dialog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableApply(t *testing.T) {
	table := NewTable[int]()

	table.Apply("a", func(cur int, ok bool) (int, bool) {
		assert.False(t, ok)
		return 1, true
	})
	got, ok := table.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, got)

	table.Apply("a", func(cur int, ok bool) (int, bool) { return 0, false })
	_, ok = table.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}

func TestTableApplyIsSerialized(t *testing.T) {
	table := NewTable[int]()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.Apply("a", func(cur int, ok bool) (int, bool) { return cur + 1, true })
		}()
	}
	wg.Wait()

	got, _ := table.Get("a")
	assert.Equal(t, 100, got)
}

func TestTableDelete(t *testing.T) {
	table := NewTable[string]()
	table.Put("a", "x")
	assert.True(t, table.Delete("a"))
	assert.False(t, table.Delete("a"))
}
