package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoAPIKey 未配置 TMDB API Key
var ErrNoAPIKey = errors.New("未配置 TMDB API Key")

// FetchError 上游请求失败（网络错误、非 2xx 状态码、解析失败）
type FetchError struct {
	Endpoint string
	Status   int // 0 表示没有拿到 HTTP 响应
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("TMDB %s: 状态码 %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("TMDB %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ListResponse 列表接口响应
type ListResponse struct {
	Page         int                 `json:"page"`
	Results      []model.CatalogItem `json:"results"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
}

type watchProvidersResponse struct {
	Results map[string]model.WatchProviders `json:"results"`
}

// TMDBOptions 客户端参数
type TMDBOptions struct {
	BaseURL    string
	APIKey     string
	CacheTTL   time.Duration
	HTTPClient *http.Client // 为空时使用默认客户端
}

// TMDBClient TMDB API 客户端，只负责请求与解码，失败以 *FetchError 返回
type TMDBClient struct {
	http    *utils.HTTPClient
	baseURL string
	apiKey  string
	cache   *utils.ResponseCache
	group   singleflight.Group
	logger  *zap.Logger
}

// NewTMDBClient 根据配置创建客户端
func NewTMDBClient(cfg *config.Config, logger *zap.Logger) *TMDBClient {
	key := cfg.TMDBAPIKey
	if !cfg.HasTMDBKey() {
		logger.Warn("未配置 TMDB_API_KEY，所有页面将显示为空")
		key = ""
	}
	return NewTMDBClientWithOptions(TMDBOptions{
		BaseURL:  cfg.TMDBBaseURL,
		APIKey:   key,
		CacheTTL: cfg.CacheTTL,
	}, logger)
}

// requestTimeout 单次上游请求的超时，合并请求不受调用方取消影响，由它兜底
const requestTimeout = 10 * time.Second

// NewTMDBClientWithOptions 使用显式参数创建客户端
func NewTMDBClientWithOptions(opts TMDBOptions, logger *zap.Logger) *TMDBClient {
	httpClient := utils.NewHTTPClient(requestTimeout)
	if opts.HTTPClient != nil {
		httpClient = utils.WithClient(opts.HTTPClient)
	}
	return &TMDBClient{
		http:    httpClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		cache:   utils.NewResponseCache(opts.CacheTTL),
		logger:  logger.With(zap.String("component", "tmdb")),
	}
}

// fetchJSON 请求 endpoint 并解码为 T。
// 成功结果按完整 URL（不含 api_key）缓存，同一 URL 的并发请求合并为一次。
// 合并后的请求与发起者的取消解耦，一个客户端断开不会让其他等待者失败。
func fetchJSON[T any](ctx context.Context, c *TMDBClient, endpoint, language string, params url.Values) (T, error) {
	var zero T
	if c.apiKey == "" {
		return zero, &FetchError{Endpoint: endpoint, Err: ErrNoAPIKey}
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	if language != "" {
		q.Set("language", language)
	}
	cacheKey := endpoint + "?" + q.Encode()
	if v, ok := c.cache.Get(cacheKey); ok {
		return v.(T), nil
	}
	q.Set("api_key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + q.Encode()

	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(cacheKey, func() (interface{}, error) {
		var out T
		if err := c.http.GetJSON(shared, fullURL, &out); err != nil {
			fe := &FetchError{Endpoint: endpoint, Err: err}
			var se *utils.StatusError
			if errors.As(err, &se) {
				fe.Status = se.StatusCode
			}
			return nil, fe
		}
		c.cache.Set(cacheKey, out)
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Detail 电影/剧集详情，appendTo 为 append_to_response 参数
func (c *TMDBClient) Detail(ctx context.Context, mediaType model.MediaType, id int, language, appendTo string) (model.DetailRecord, error) {
	params := url.Values{}
	if appendTo != "" {
		params.Set("append_to_response", appendTo)
	}
	return fetchJSON[model.DetailRecord](ctx, c, fmt.Sprintf("/%s/%d", mediaType, id), language, params)
}

// Person 人物详情
func (c *TMDBClient) Person(ctx context.Context, id int, language, appendTo string) (model.PersonDetail, error) {
	params := url.Values{}
	if appendTo != "" {
		params.Set("append_to_response", appendTo)
	}
	return fetchJSON[model.PersonDetail](ctx, c, "/person/"+strconv.Itoa(id), language, params)
}

// List 列表类接口（趋势、热门、discover、推荐等）
func (c *TMDBClient) List(ctx context.Context, endpoint, language string, params url.Values) (ListResponse, error) {
	return fetchJSON[ListResponse](ctx, c, endpoint, language, params)
}

// Images 作品剧照与海报
func (c *TMDBClient) Images(ctx context.Context, mediaType model.MediaType, id int, imageLanguages string) (model.ImageSet, error) {
	params := url.Values{}
	params.Set("include_image_language", imageLanguages)
	return fetchJSON[model.ImageSet](ctx, c, fmt.Sprintf("/%s/%d/images", mediaType, id), "", params)
}

// WatchProviders 各地区播放平台
func (c *TMDBClient) WatchProviders(ctx context.Context, mediaType model.MediaType, id int) (map[string]model.WatchProviders, error) {
	resp, err := fetchJSON[watchProvidersResponse](ctx, c, fmt.Sprintf("/%s/%d/watch/providers", mediaType, id), "", nil)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// SearchMulti 综合搜索（电影、剧集、人物）
func (c *TMDBClient) SearchMulti(ctx context.Context, query, language string) (ListResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	return fetchJSON[ListResponse](ctx, c, "/search/multi", language, params)
}

// Flush 清空响应缓存
func (c *TMDBClient) Flush() {
	c.cache.Flush()
}

// CachedResponses 当前缓存的响应数量
func (c *TMDBClient) CachedResponses() int {
	return c.cache.ItemCount()
}

// orEmpty 把传输层失败映射为调用方约定的空值，失败只记录日志不向上传播
func orEmpty[T any](logger *zap.Logger, v T, err error, empty T) T {
	if err == nil {
		return v
	}
	var fe *FetchError
	if errors.As(err, &fe) && errors.Is(fe.Err, ErrNoAPIKey) {
		logger.Debug("跳过上游请求", zap.String("endpoint", fe.Endpoint))
		return empty
	}
	if errors.As(err, &fe) {
		logger.Warn("上游请求失败，按空结果处理",
			zap.String("endpoint", fe.Endpoint),
			zap.Int("status", fe.Status),
			zap.Error(fe.Err),
		)
		return empty
	}
	logger.Warn("上游请求失败，按空结果处理", zap.Error(err))
	return empty
}
