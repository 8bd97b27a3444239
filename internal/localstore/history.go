package localstore

import (
	"strings"

	"github.com/goccy/go-json"
)

const (
	// HistoryKey 搜索历史的存储键
	HistoryKey = "search-history"
	// MaxHistory 最多保留的搜索词
	MaxHistory = 5
)

// History 最近搜索，最新的在前，去重
type History struct {
	store Storage
}

// NewHistory 创建搜索历史
func NewHistory(store Storage) *History {
	return &History{store: store}
}

// List 读取搜索历史，数据损坏时返回空列表
func (h *History) List() []string {
	raw, ok := h.store.Get(HistoryKey)
	if !ok || raw == "" {
		return []string{}
	}
	var terms []string
	if err := json.Unmarshal([]byte(raw), &terms); err != nil || terms == nil {
		return []string{}
	}
	return terms
}

// Record 记录搜索词：已存在则移到最前，超出上限时丢弃最旧的
func (h *History) Record(term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	terms := []string{term}
	for _, t := range h.List() {
		if t != term {
			terms = append(terms, t)
		}
	}
	if len(terms) > MaxHistory {
		terms = terms[:MaxHistory]
	}
	data, err := json.Marshal(terms)
	if err != nil {
		return err
	}
	return h.store.Set(HistoryKey, string(data))
}

// Clear 清空搜索历史
func (h *History) Clear() error {
	return h.store.Remove(HistoryKey)
}
