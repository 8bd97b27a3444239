package service

import (
	"context"

	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/model"
	"go.uber.org/zap"
)

const (
	detailAppend = "videos,credits"
	personAppend = "combined_credits"
)

// CatalogService 详情获取：主语言请求，简介为空时用备用语言补全
type CatalogService struct {
	client   *TMDBClient
	primary  string
	fallback string
	region   string
	imgLangs string
	logger   *zap.Logger
}

// NewCatalogService 创建详情服务
func NewCatalogService(client *TMDBClient, cfg *config.Config, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		client:   client,
		primary:  cfg.TMDBLanguage,
		fallback: cfg.TMDBFallbackLanguage,
		region:   cfg.WatchRegion,
		imgLangs: imageLanguages(cfg.TMDBLanguage, cfg.TMDBFallbackLanguage),
		logger:   logger.With(zap.String("component", "catalog")),
	}
}

// FetchDetail 获取电影/剧集详情，最多请求上游两次。
// 主请求失败或返回未找到时直接返回空哨兵（ID 为 0），不再请求备用语言。
func (s *CatalogService) FetchDetail(ctx context.Context, id int, mediaType model.MediaType) model.DetailRecord {
	d, err := s.client.Detail(ctx, mediaType, id, s.primary, detailAppend)
	detail := orEmpty(s.logger, d, err, model.DetailRecord{})
	if detail.IsEmpty() {
		return detail
	}
	detail.MediaType = mediaType

	// 剧集使用 name 而不是 title
	if mediaType == model.MediaTV && detail.Title == "" && detail.Name != "" {
		detail.Title = detail.Name
	}

	if detail.Overview == "" {
		fb, err := s.client.Detail(ctx, mediaType, id, s.fallback, "")
		if err != nil {
			s.logger.Info("备用语言简介获取失败，保留主语言结果",
				zap.Int("id", id), zap.String("media_type", string(mediaType)), zap.Error(err))
		} else if fb.Overview != "" {
			detail.Overview = fb.Overview
		}
	}
	return detail
}

// FetchPerson 获取人物详情，简介为空时用备用语言补全
func (s *CatalogService) FetchPerson(ctx context.Context, id int) model.PersonDetail {
	p, err := s.client.Person(ctx, id, s.primary, personAppend)
	person := orEmpty(s.logger, p, err, model.PersonDetail{})
	if person.IsEmpty() {
		return person
	}

	if person.Biography == "" {
		fb, err := s.client.Person(ctx, id, s.fallback, "")
		if err != nil {
			s.logger.Info("备用语言人物简介获取失败", zap.Int("id", id), zap.Error(err))
		} else if fb.Biography != "" {
			person.Biography = fb.Biography
		}
	}
	return person
}

// FetchImages 获取剧照与海报，失败返回空集合
func (s *CatalogService) FetchImages(ctx context.Context, id int, mediaType model.MediaType) model.ImageSet {
	set, err := s.client.Images(ctx, mediaType, id, s.imgLangs)
	return orEmpty(s.logger, set, err, model.ImageSet{})
}

// FetchWatchProviders 获取配置地区的播放平台，没有数据时返回 nil
func (s *CatalogService) FetchWatchProviders(ctx context.Context, id int, mediaType model.MediaType) *model.WatchProviders {
	all, err := s.client.WatchProviders(ctx, mediaType, id)
	all = orEmpty(s.logger, all, err, nil)
	wp, ok := all[s.region]
	if !ok {
		return nil
	}
	return &wp
}

// imageLanguages 图片语言过滤：主语言、备用语言与无文字图片
func imageLanguages(primary, fallback string) string {
	lang := func(locale string) string {
		if len(locale) >= 2 {
			return locale[:2]
		}
		return locale
	}
	p, f := lang(primary), lang(fallback)
	if p == f {
		return p + ",null"
	}
	return p + "," + f + ",null"
}
