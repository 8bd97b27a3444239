package utils

import (
	"fmt"
	"strings"
)

// NormalizeSearchTerm 清理搜索词：去除首尾空白并合并多余空格
func NormalizeSearchTerm(term string) string {
	return strings.Join(strings.Fields(term), " ")
}

// ImageURL 拼接 TMDB 图片地址，path 为空返回空串
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + size + path
}

// FormatRuntime 片长（分钟）格式化为 "2時間 5分"
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d分", m)
	case m == 0:
		return fmt.Sprintf("%d時間", h)
	default:
		return fmt.Sprintf("%d時間 %d分", h, m)
	}
}
