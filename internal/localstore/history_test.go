package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, h *History, terms ...string) {
	t.Helper()
	for _, term := range terms {
		require.NoError(t, h.Record(term))
	}
}

func TestHistoryMoveToFrontAtCap(t *testing.T) {
	h := NewHistory(NewMemoryStorage())
	// 逆序写入，得到 ["x","y","z","w","v"]
	record(t, h, "v", "w", "z", "y", "x")
	require.Equal(t, []string{"x", "y", "z", "w", "v"}, h.List())

	record(t, h, "z")
	assert.Equal(t, []string{"z", "x", "y", "w", "v"}, h.List())

	record(t, h, "x")
	assert.Equal(t, []string{"x", "z", "y", "w", "v"}, h.List())
	assert.Len(t, h.List(), MaxHistory)
}

func TestHistoryExistingFrontTermIsStable(t *testing.T) {
	h := NewHistory(NewMemoryStorage())
	record(t, h, "v", "w", "z", "y", "x", "x")
	assert.Equal(t, []string{"x", "y", "z", "w", "v"}, h.List())
}

func TestHistoryDropsOldestBeyondCap(t *testing.T) {
	h := NewHistory(NewMemoryStorage())
	record(t, h, "1", "2", "3", "4", "5", "6")
	assert.Equal(t, []string{"6", "5", "4", "3", "2"}, h.List())
}

func TestHistoryIgnoresBlankAndTrims(t *testing.T) {
	h := NewHistory(NewMemoryStorage())
	record(t, h, "  ", "ジブリ ", " ジブリ")
	assert.Equal(t, []string{"ジブリ"}, h.List())
}

func TestHistoryKeepsInnerSpacing(t *testing.T) {
	h := NewHistory(NewMemoryStorage())
	record(t, h, "Spider  Man", "Spider Man")
	assert.Equal(t, []string{"Spider Man", "Spider  Man"}, h.List())
}

func TestHistoryClearAndMalformed(t *testing.T) {
	store := NewMemoryStorage()
	h := NewHistory(store)
	record(t, h, "a")

	require.NoError(t, h.Clear())
	_, ok := store.Get(HistoryKey)
	assert.False(t, ok)
	assert.Empty(t, h.List())

	_ = store.Set(HistoryKey, `["a",`)
	assert.Empty(t, h.List())
	record(t, h, "b")
	assert.Equal(t, []string{"b"}, h.List())
}
