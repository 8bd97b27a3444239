package model

import "time"

// FollowedItem 浏览器本地保存的关注作品
type FollowedItem struct {
	ID         int       `json:"id"`
	MediaType  MediaType `json:"mediaType"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"posterPath"`
	FollowedAt int64     `json:"followedAt"` // Unix 毫秒
}

// FollowedTime 关注时间
func (f FollowedItem) FollowedTime() time.Time {
	return time.UnixMilli(f.FollowedAt)
}

// Matches 是否为同一作品
func (f FollowedItem) Matches(id int, mediaType MediaType) bool {
	return f.ID == id && f.MediaType == mediaType
}
