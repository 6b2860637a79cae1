package ledger

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "processed_urls.log"))
	set, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestRecordAndContains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bronze", "processed_urls.log")
	l := New(path)

	require.NoError(t, l.Record("https://a.example/1", false))
	require.NoError(t, l.Record("https://a.example/1", false))
	require.NoError(t, l.Record("https://a.example/2", false))

	ok, err := l.Contains("https://a.example/1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Contains("https://a.example/3")
	require.NoError(t, err)
	assert.False(t, ok)

	set, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, set, 2)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example/1\nhttps://a.example/1\nhttps://a.example/2\n", string(raw))
}

func TestRecordDryRunWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_urls.log")
	l := New(path)

	require.NoError(t, l.Record("https://a.example/1", true))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_urls.log")
	require.NoError(t, os.WriteFile(path, []byte("https://a.example/1\n\n  \nhttps://a.example/2\n"), 0o644))

	set, err := New(path).Load()
	require.NoError(t, err)
	assert.Len(t, set, 2)
}

func TestConcurrentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_urls.log")
	l := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, l.Record("https://a.example/"+string(rune('a'+i)), false))
		}(i)
	}
	wg.Wait()

	set, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, set, 20)
}
