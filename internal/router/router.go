package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/cinema/internal/handler"
	"github.com/user/cinema/internal/middleware"
	"github.com/user/cinema/internal/utils"
)

// Pages 页面模板
var Pages = []string{
	"home", "genres", "genre", "ranking", "reviews",
	"movie", "person", "follows", "privacy", "404",
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler, searchLimit *middleware.RateLimiter) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"tmdb":          h.Config.HasTMDBKey(),
			"cachedQueries": h.SearchService.CachedQueries(),
		})
	})

	// ==================== 页面 ====================
	r.GET("/", h.Home)
	r.GET("/genres", h.Genres)
	r.GET("/genre/:id", h.Genre)
	r.GET("/ranking", h.Ranking)
	r.GET("/reviews", h.Reviews)
	r.GET("/movie/:id", h.Movie)
	r.GET("/person/:id", h.Person)
	r.GET("/follows", h.Follows)
	r.GET("/privacy", h.Privacy)

	// ==================== API ====================
	api := r.Group("/api")
	{
		api.GET("/search", searchLimit.Middleware(), h.SearchAPI)
		api.GET("/search/history", h.SearchHistory)
		api.POST("/search/history", h.RecordSearch)
		api.DELETE("/search/history", h.ClearSearchHistory)

		api.GET("/follows", h.ListFollows)
		api.GET("/follows/:type/:id", h.FollowStatus)
		api.POST("/follows/:type/:id", h.ToggleFollow)
	}

	r.NoRoute(h.NotFound)
}

// LoadTemplates 使用 multitemplate 从 fsys 加载模板，每个页面 = 布局 + 局部模板 + 页面
func LoadTemplates(fsys fs.FS, imageBaseURL string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	read := func(pattern string) ([]string, error) {
		files, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		contents := make([]string, 0, len(files))
		for _, f := range files {
			b, err := fs.ReadFile(fsys, f)
			if err != nil {
				return nil, err
			}
			contents = append(contents, string(b))
		}
		return contents, nil
	}

	layouts, err := read("templates/layouts/*.html")
	if err != nil {
		return nil, err
	}
	partials, err := read("templates/partials/*.html")
	if err != nil {
		return nil, err
	}

	funcMap := FuncMap(imageBaseURL)
	for _, page := range Pages {
		view, err := fs.ReadFile(fsys, path.Join("templates/pages", page+".html"))
		if err != nil {
			return nil, fmt.Errorf("读取模板 %s 失败: %w", page, err)
		}
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, string(view))
		r.AddFromStringsFuncs(page+".html", funcMap, files...)
	}
	return r, nil
}

// FuncMap 模板函数
func FuncMap(imageBaseURL string) template.FuncMap {
	return template.FuncMap{
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		// img 拼接 TMDB 图片地址
		"img": func(size string, p interface{}) string {
			switch v := p.(type) {
			case string:
				return utils.ImageURL(imageBaseURL, size, v)
			case *string:
				if v == nil {
					return ""
				}
				return utils.ImageURL(imageBaseURL, size, *v)
			}
			return ""
		},
		"runtime": utils.FormatRuntime,
		"score": func(v float64) string {
			return fmt.Sprintf("%.1f", v)
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*10)
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}
