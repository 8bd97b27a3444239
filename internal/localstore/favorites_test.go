package localstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinema/internal/model"
)

func strPtr(s string) *string { return &s }

// fixedClock 每次调用前进 1 秒
func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newFavorites() (*Favorites, *MemoryStorage) {
	store := NewMemoryStorage()
	f := NewFavorites(store)
	f.now = fixedClock(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	return f, store
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	f, _ := newFavorites()

	require.NoError(t, f.Follow(550, model.MediaMovie, "ファイト・クラブ", strPtr("/p.jpg")))
	assert.True(t, f.IsFollowed(550, model.MediaMovie))
	assert.False(t, f.IsFollowed(550, model.MediaTV))

	items := f.List()
	require.Len(t, items, 1)
	assert.Equal(t, "ファイト・クラブ", items[0].Title)
	assert.Equal(t, "/p.jpg", *items[0].PosterPath)
	assert.NotZero(t, items[0].FollowedAt)

	require.NoError(t, f.Unfollow(550, model.MediaMovie))
	assert.False(t, f.IsFollowed(550, model.MediaMovie))
	assert.Empty(t, f.List())
}

func TestFollowAppendsDuplicatesLiterally(t *testing.T) {
	f, _ := newFavorites()

	require.NoError(t, f.Follow(1, model.MediaTV, "A", nil))
	require.NoError(t, f.Follow(1, model.MediaTV, "A", nil))
	assert.Len(t, f.List(), 2)

	require.NoError(t, f.Unfollow(1, model.MediaTV))
	assert.Empty(t, f.List())
}

func TestUnfollowKeepsOtherMediaType(t *testing.T) {
	f, _ := newFavorites()
	require.NoError(t, f.Follow(1, model.MediaMovie, "movie", nil))
	require.NoError(t, f.Follow(1, model.MediaTV, "tv", nil))

	require.NoError(t, f.Unfollow(1, model.MediaMovie))

	items := f.List()
	require.Len(t, items, 1)
	assert.Equal(t, model.MediaTV, items[0].MediaType)
}

func TestToggleNeverDuplicates(t *testing.T) {
	f, _ := newFavorites()

	followed, err := f.Toggle(7, model.MediaMovie, "七人の侍", nil)
	require.NoError(t, err)
	assert.True(t, followed)
	assert.Len(t, f.List(), 1)

	followed, err = f.Toggle(7, model.MediaMovie, "七人の侍", nil)
	require.NoError(t, err)
	assert.False(t, followed)
	assert.Empty(t, f.List())

	for range 3 {
		_, err = f.Toggle(7, model.MediaMovie, "七人の侍", nil)
		require.NoError(t, err)
	}
	assert.Len(t, f.List(), 1)
}

func TestListMalformedData(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage": "{not json",
		"object":  `{"id":1}`,
		"null":    "null",
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			store := NewMemoryStorage()
			_ = store.Set(FollowedKey, raw)
			f := NewFavorites(store)

			items := f.List()
			assert.NotNil(t, items)
			assert.Empty(t, items)
			assert.False(t, f.IsFollowed(1, model.MediaMovie))
		})
	}
}

func TestMutationRewritesWholeCollection(t *testing.T) {
	f, store := newFavorites()
	_ = store.Set(FollowedKey, "{broken")

	require.NoError(t, f.Follow(3, model.MediaMovie, "x", nil))

	raw, ok := store.Get(FollowedKey)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":3,"mediaType":"movie","title":"x","posterPath":null,"followedAt":1711929601000}]`, raw)
}

func TestSortByFollowedAtDesc(t *testing.T) {
	f, _ := newFavorites()
	require.NoError(t, f.Follow(1, model.MediaMovie, "first", nil))
	require.NoError(t, f.Follow(2, model.MediaTV, "second", nil))
	require.NoError(t, f.Follow(3, model.MediaMovie, "third", nil))

	items := f.List()
	sorted := SortByFollowedAtDesc(items)

	assert.Equal(t, []int{3, 2, 1}, []int{sorted[0].ID, sorted[1].ID, sorted[2].ID})
	assert.Equal(t, 1, items[0].ID)
}

type failingStorage struct{ *MemoryStorage }

func (failingStorage) Set(string, string) error { return errors.New("quota exceeded") }

func TestFollowPropagatesStorageError(t *testing.T) {
	f := NewFavorites(failingStorage{NewMemoryStorage()})
	assert.Error(t, f.Follow(1, model.MediaMovie, "x", nil))
	assert.Empty(t, f.List())
}
