package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/handler"
	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/logging"
	"github.com/user/cinema/internal/middleware"
	"github.com/user/cinema/internal/router"
	"github.com/user/cinema/internal/service"
	"github.com/user/cinema/web"
	"go.uber.org/zap"
)

func main() {
	// 加载环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用系统环境变量")
	}

	// 加载配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 初始化服务
	tmdb := service.NewTMDBClient(cfg, logger)
	search := service.NewSearchService(tmdb, cfg, logger)
	h := handler.NewHandler(cfg, tmdb, search, logger)

	// 初始化 Gin
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，默认压缩级别
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 关注列表与搜索历史保存在浏览器 cookie 中，关注列表按分片写入多个 cookie
	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.SessionsMany(localstore.SessionNames(), store))

	// 加载模板
	renderer, err := router.LoadTemplates(web.FS, cfg.TMDBImageBaseURL)
	if err != nil {
		logger.Fatal("加载模板失败", zap.Error(err))
	}
	r.HTMLRender = renderer

	// 静态文件
	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		logger.Fatal("加载静态文件失败", zap.Error(err))
	}
	r.StaticFS("/static", http.FS(static))

	// 中间件
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Security())

	// 搜索接口限流
	limiter := middleware.NewRateLimiter(cfg.SearchRateLimit)
	limiter.Start(ctx, time.Minute, 10*time.Minute)

	// 启动定时清理任务
	service.NewCleanupService(search, 10*time.Minute, logger).Start(ctx)

	// 注册路由
	router.RegisterRoutes(r, h, limiter)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		logger.Info("服务器启动", zap.String("addr", "http://localhost:"+cfg.Port), zap.Bool("tmdb", cfg.HasTMDBKey()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("服务器启动失败", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("正在关闭服务器...")
	stop()

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("服务器强制关闭", zap.Error(err))
	}

	logger.Info("服务器已退出")
}
