package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxTotalPages TMDB 分页上限
const MaxTotalPages = 500

// Listing 一个逻辑列表（接口路径 + 过滤参数）
type Listing struct {
	Path      string
	Params    url.Values
	MediaType model.MediaType // 上游结果不带 media_type 时补上
}

// Key 列表标识，用于日志
func (l Listing) Key() string {
	if len(l.Params) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Params.Encode()
}

// Trending 本周趋势电影
func Trending() Listing {
	return Listing{Path: "/trending/movie/week", MediaType: model.MediaMovie}
}

// Popular 热门电影
func Popular() Listing {
	return Listing{Path: "/movie/popular", MediaType: model.MediaMovie}
}

// TopRated 高分电影
func TopRated() Listing {
	return Listing{Path: "/movie/top_rated", MediaType: model.MediaMovie}
}

// Upcoming 即将上映
func Upcoming() Listing {
	return Listing{Path: "/movie/upcoming", MediaType: model.MediaMovie}
}

// DiscoverByGenre 按类型发现电影，originalLanguage 非空时限定原始语言
func DiscoverByGenre(genreID int, originalLanguage string) Listing {
	params := url.Values{}
	params.Set("with_genres", strconv.Itoa(genreID))
	params.Set("sort_by", "popularity.desc")
	if originalLanguage != "" {
		params.Set("with_original_language", originalLanguage)
	}
	return Listing{Path: "/discover/movie", Params: params, MediaType: model.MediaMovie}
}

// Recommendations 作品推荐
func Recommendations(mediaType model.MediaType, id int) Listing {
	return Listing{Path: fmt.Sprintf("/%s/%d/recommendations", mediaType, id), MediaType: mediaType}
}

// ListingPage 单页结果
type ListingPage struct {
	Items      []model.CatalogItem
	Page       int
	TotalPages int
}

// Aggregator 多页并发拉取
type Aggregator struct {
	client   *TMDBClient
	language string
	logger   *zap.Logger
}

// NewAggregator 创建聚合器
func NewAggregator(client *TMDBClient, cfg *config.Config, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		client:   client,
		language: cfg.TMDBLanguage,
		logger:   logger.With(zap.String("component", "aggregator")),
	}
}

// FetchListing 并发请求第 1..pageCount 页并按页码顺序展开。
// 单页失败按空页处理；不做去重，由调用方使用 Deduper。
func (a *Aggregator) FetchListing(ctx context.Context, l Listing, pageCount int) []model.CatalogItem {
	if pageCount <= 0 {
		return []model.CatalogItem{}
	}

	pages := make([][]model.CatalogItem, pageCount)
	var g errgroup.Group
	for i := range pageCount {
		g.Go(func() error {
			pages[i] = a.fetchPage(ctx, l, i+1).Items
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, p := range pages {
		total += len(p)
	}
	items := make([]model.CatalogItem, 0, total)
	for _, p := range pages {
		items = append(items, p...)
	}
	return items
}

// FetchListingPage 只请求一页，同时返回总页数（不超过 MaxTotalPages）
func (a *Aggregator) FetchListingPage(ctx context.Context, l Listing, page int) ListingPage {
	page = min(max(page, 1), MaxTotalPages)
	return a.fetchPage(ctx, l, page)
}

func (a *Aggregator) fetchPage(ctx context.Context, l Listing, page int) ListingPage {
	params := url.Values{}
	for k, vs := range l.Params {
		params[k] = vs
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	resp, err := a.client.List(ctx, l.Path, a.language, params)
	resp = orEmpty(a.logger, resp, err, ListResponse{})

	// 响应可能来自缓存，复制后再补 media_type
	items := append([]model.CatalogItem{}, resp.Results...)
	if l.MediaType != "" {
		for i := range items {
			if items[i].MediaType == "" {
				items[i].MediaType = l.MediaType
			}
		}
	}
	return ListingPage{
		Items:      items,
		Page:       page,
		TotalPages: min(resp.TotalPages, MaxTotalPages),
	}
}

// Deduper 调用方去重：按 ID 保留首次出现，保持原有顺序
type Deduper struct {
	seen map[int]struct{}
}

// NewDeduper 创建去重器
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[int]struct{})}
}

// Clone 复制已见集合，用于在另一组列表中排除这些 ID
func (d *Deduper) Clone() *Deduper {
	c := NewDeduper()
	for id := range d.seen {
		c.seen[id] = struct{}{}
	}
	return c
}

// Filter 过滤已见过的作品并记录新作品
func (d *Deduper) Filter(items []model.CatalogItem) []model.CatalogItem {
	out := make([]model.CatalogItem, 0, len(items))
	for _, it := range items {
		if _, ok := d.seen[it.ID]; ok {
			continue
		}
		d.seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Len 已见过的 ID 数量
func (d *Deduper) Len() int {
	return len(d.seen)
}

// Dedupe 单个列表去重
func Dedupe(items []model.CatalogItem) []model.CatalogItem {
	return NewDeduper().Filter(items)
}
