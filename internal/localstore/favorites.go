package localstore

import (
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/user/cinema/internal/model"
)

// FollowedKey 关注列表的存储键
const FollowedKey = "followed-items"

// Favorites 关注列表，每次修改都整体重写
type Favorites struct {
	store Storage
	now   func() time.Time
}

// NewFavorites 创建关注列表
func NewFavorites(store Storage) *Favorites {
	return &Favorites{store: store, now: time.Now}
}

// List 读取关注列表，数据缺失或损坏时返回空列表
func (f *Favorites) List() []model.FollowedItem {
	raw, ok := f.store.Get(FollowedKey)
	if !ok || raw == "" {
		return []model.FollowedItem{}
	}
	var items []model.FollowedItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []model.FollowedItem{}
	}
	return items
}

// IsFollowed 是否已关注
func (f *Favorites) IsFollowed(id int, mediaType model.MediaType) bool {
	for _, it := range f.List() {
		if it.Matches(id, mediaType) {
			return true
		}
	}
	return false
}

// Follow 追加一条关注记录。不检查重复，由调用方先判断 IsFollowed
func (f *Favorites) Follow(id int, mediaType model.MediaType, title string, posterPath *string) error {
	items := append(f.List(), model.FollowedItem{
		ID:         id,
		MediaType:  mediaType,
		Title:      title,
		PosterPath: posterPath,
		FollowedAt: f.now().UnixMilli(),
	})
	return f.save(items)
}

// Unfollow 删除所有匹配的记录
func (f *Favorites) Unfollow(id int, mediaType model.MediaType) error {
	items := f.List()
	kept := items[:0]
	for _, it := range items {
		if !it.Matches(id, mediaType) {
			kept = append(kept, it)
		}
	}
	return f.save(kept)
}

// Toggle 已关注则取消，否则关注；返回操作后的状态
func (f *Favorites) Toggle(id int, mediaType model.MediaType, title string, posterPath *string) (bool, error) {
	if f.IsFollowed(id, mediaType) {
		return false, f.Unfollow(id, mediaType)
	}
	return true, f.Follow(id, mediaType, title, posterPath)
}

func (f *Favorites) save(items []model.FollowedItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return f.store.Set(FollowedKey, string(data))
}

// SortByFollowedAtDesc 按关注时间倒序（最近关注的在前），返回新切片
func SortByFollowedAtDesc(items []model.FollowedItem) []model.FollowedItem {
	sorted := append([]model.FollowedItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FollowedAt > sorted[j].FollowedAt
	})
	return sorted
}
