package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/searchbox"
	"github.com/user/cinema/internal/service"
	"go.uber.org/zap"
)

// Handler HTTP 处理器
type Handler struct {
	Config        *config.Config
	Catalog       *service.CatalogService
	Lists         *service.Aggregator
	HomeFeed      *service.HomeFeed
	SearchService *service.SearchService
	Logger        *zap.Logger
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config, client *service.TMDBClient, search *service.SearchService, logger *zap.Logger) *Handler {
	lists := service.NewAggregator(client, cfg, logger)
	return &Handler{
		Config:        cfg,
		Catalog:       service.NewCatalogService(client, cfg, logger),
		Lists:         lists,
		HomeFeed:      service.NewHomeFeed(lists, nil),
		SearchService: search,
		Logger:        logger.With(zap.String("component", "handler")),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName":     h.Config.SiteName,
		"SiteUrl":      h.Config.SiteUrl,
		"Path":         c.Request.URL.Path,
		"ActiveMenu":   activeMenu(c.Request.URL.Path),
		"PopularTerms": searchbox.PopularTerms,
		"History":      h.history(c).List(),
	}
	for k, v := range data {
		res[k] = v
	}
	return res
}

// activeMenu 根据路径判断当前高亮菜单
func activeMenu(path string) string {
	switch {
	case path == "/":
		return "home"
	case path == "/genres", strings.HasPrefix(path, "/genre/"):
		return "genres"
	case path == "/ranking":
		return "ranking"
	case path == "/reviews":
		return "reviews"
	case path == "/follows":
		return "follows"
	default:
		return ""
	}
}

// favorites 当前浏览器的关注列表
func (h *Handler) favorites(c *gin.Context) *localstore.Favorites {
	return localstore.NewFavorites(localstore.FollowedStorage(c))
}

// history 当前浏览器的搜索历史
func (h *Handler) history(c *gin.Context) *localstore.History {
	return localstore.NewHistory(localstore.HistoryStorage(c))
}

// NotFound 404 页面
func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "ページが見つかりません - " + h.Config.SiteName,
	}))
}

// parseID 解析正整数路径参数
func parseID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// mediaTypeQuery 读取 ?type=，默认电影
func mediaTypeQuery(c *gin.Context) model.MediaType {
	return model.ParseMediaType(c.Query("type"))
}
