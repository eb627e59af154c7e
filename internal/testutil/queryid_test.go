package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedQueryIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedQueryIDGenerator("q-123")

	assert.Equal(t, "q-123", gen.Generate())
	assert.Equal(t, "q-123", gen.Generate())
}

func TestFixedQueryIDGenerator_EmptyDefault(t *testing.T) {
	gen := NewFixedQueryIDGenerator("")
	assert.Equal(t, "test-query-default", gen.Generate())
}

func TestFixedQueryIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedQueryIDGenerator("thread-safe")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "thread-safe", gen.Generate())
			}
		}()
	}
	wg.Wait()
}
