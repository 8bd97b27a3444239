package service

import (
	"context"
	"time"

	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const searchCacheSize = 1000

// SearchService 站内搜索：调用 TMDB 综合搜索，只保留电影和剧集
type SearchService struct {
	client   *TMDBClient
	language string
	cache    *utils.SearchCache[[]model.CatalogItem]
	sf       singleflight.Group
	logger   *zap.Logger
}

// NewSearchService 创建搜索服务
func NewSearchService(client *TMDBClient, cfg *config.Config, logger *zap.Logger) *SearchService {
	return &SearchService{
		client:   client,
		language: cfg.TMDBLanguage,
		cache:    utils.NewSearchCache[[]model.CatalogItem](searchCacheSize, cfg.CacheTTL),
		logger:   logger.With(zap.String("component", "search")),
	}
}

// Search 搜索作品，关键词为空或上游失败时返回空列表（失败结果不缓存）
func (s *SearchService) Search(ctx context.Context, query string) []model.CatalogItem {
	query = utils.NormalizeSearchTerm(query)
	if query == "" {
		return []model.CatalogItem{}
	}

	if cached, ok := s.cache.Get(query); ok {
		return cached
	}

	shared := context.WithoutCancel(ctx)
	val, err, _ := s.sf.Do(query, func() (interface{}, error) {
		start := time.Now()
		resp, err := s.client.SearchMulti(shared, query, s.language)
		if err != nil {
			return nil, err
		}
		items := FilterCatalog(resp.Results)
		s.cache.Set(query, items)
		s.logger.Debug("搜索完成",
			zap.String("query", query),
			zap.Int("raw", len(resp.Results)),
			zap.Int("kept", len(items)),
			zap.Duration("took", time.Since(start)),
		)
		return items, nil
	})
	items, _ := val.([]model.CatalogItem)
	return orEmpty(s.logger, items, err, []model.CatalogItem{})
}

// PurgeExpired 清理过期的搜索缓存
func (s *SearchService) PurgeExpired() int {
	return s.cache.PurgeExpired()
}

// CachedQueries 缓存中的搜索词数量
func (s *SearchService) CachedQueries() int {
	return s.cache.Len()
}

// FilterCatalog 只保留电影和剧集，排除人物等其他类型
func FilterCatalog(items []model.CatalogItem) []model.CatalogItem {
	filtered := make([]model.CatalogItem, 0, len(items))
	for _, it := range items {
		if it.MediaType.IsCatalog() {
			filtered = append(filtered, it)
		}
	}
	return filtered
}
