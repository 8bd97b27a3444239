package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CleanupService 定时清理过期缓存
type CleanupService struct {
	search   *SearchService
	interval time.Duration
	logger   *zap.Logger
}

// NewCleanupService 创建清理服务
func NewCleanupService(search *SearchService, interval time.Duration, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		search:   search,
		interval: interval,
		logger:   logger.With(zap.String("component", "cleanup")),
	}
}

// Start 启动定时清理任务，ctx 取消后退出
func (s *CleanupService) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCleanup()
			}
		}
	}()
}

func (s *CleanupService) runCleanup() int {
	removed := s.search.PurgeExpired()
	if removed > 0 {
		s.logger.Info("已清理过期搜索缓存",
			zap.Int("removed", removed),
			zap.Int("remaining", s.search.CachedQueries()),
		)
	}
	return removed
}
