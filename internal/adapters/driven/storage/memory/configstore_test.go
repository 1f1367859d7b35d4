package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	s := NewConfigStore(map[string]any{"owner": "anna", "ingest.workers": int64(2)})

	assert.Equal(t, "anna", s.GetString("owner"))
	assert.Equal(t, 2, s.GetInt("ingest.workers"))
	assert.Equal(t, []string{"ingest.workers", "owner"}, s.Keys())
	assert.Empty(t, s.Path())
}

func TestConfigStore_Getters(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("s", "x"))
	require.NoError(t, s.Set("f", 3.0))
	require.NoError(t, s.Set("b", true))
	require.NoError(t, s.Set("l", []any{"a", 1, "b"}))

	assert.Equal(t, "x", s.GetString("s"))
	assert.Equal(t, 3, s.GetInt("f"))
	assert.True(t, s.GetBool("b"))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("l"))

	assert.Equal(t, "", s.GetString("b"))
	assert.Equal(t, 0, s.GetInt("s"))
	assert.False(t, s.GetBool("missing"))
	assert.Nil(t, s.GetStringSlice("s"))
}

func TestConfigStore_Unset(t *testing.T) {
	s := NewConfigStore(map[string]any{"k": "v"})
	require.NoError(t, s.Unset("k"))

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	s := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Set("n", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.GetInt("n")
		}()
	}
	wg.Wait()

	_, ok := s.Get("n")
	assert.True(t, ok)
}
