package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/utils"
	"go.uber.org/zap"
)

// followForm 关注表单
type followForm struct {
	Title      string `form:"title" binding:"required,max=300"`
	PosterPath string `form:"poster_path" binding:"omitempty,startswith=/,max=200"`
}

// historyForm 搜索历史表单
type historyForm struct {
	Term string `form:"term" binding:"required,max=100"`
}

// SearchAPI 站内搜索，只返回电影和剧集
func (h *Handler) SearchAPI(c *gin.Context) {
	results := h.SearchService.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// ListFollows 当前浏览器的关注列表（最近关注的在前）
func (h *Handler) ListFollows(c *gin.Context) {
	utils.Success(c, localstore.SortByFollowedAtDesc(h.favorites(c).List()))
}

// FollowStatus 是否已关注
func (h *Handler) FollowStatus(c *gin.Context) {
	mediaType, id, ok := followTarget(c)
	if !ok {
		return
	}
	utils.Success(c, gin.H{"followed": h.favorites(c).IsFollowed(id, mediaType)})
}

// ToggleFollow 切换关注状态
func (h *Handler) ToggleFollow(c *gin.Context) {
	mediaType, id, ok := followTarget(c)
	if !ok {
		return
	}
	var form followForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequest(c, "タイトルが不正です")
		return
	}
	var poster *string
	if form.PosterPath != "" {
		poster = &form.PosterPath
	}

	followed, err := h.favorites(c).Toggle(id, mediaType, form.Title, poster)
	if err != nil {
		h.Logger.Warn("保存关注列表失败", zap.Int("id", id), zap.Error(err))
		utils.InternalServerError(c, "保存に失敗しました")
		return
	}
	utils.Success(c, gin.H{"followed": followed})
}

// SearchHistory 最近搜索
func (h *Handler) SearchHistory(c *gin.Context) {
	utils.Success(c, h.history(c).List())
}

// RecordSearch 记录搜索词
func (h *Handler) RecordSearch(c *gin.Context) {
	var form historyForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequest(c, "検索ワードが不正です")
		return
	}
	history := h.history(c)
	if err := history.Record(form.Term); err != nil {
		h.Logger.Warn("保存搜索历史失败", zap.Error(err))
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, history.List())
}

// ClearSearchHistory 清空搜索历史
func (h *Handler) ClearSearchHistory(c *gin.Context) {
	if err := h.history(c).Clear(); err != nil {
		h.Logger.Warn("清空搜索历史失败", zap.Error(err))
		utils.InternalServerError(c, "")
		return
	}
	utils.Success(c, []string{})
}

// followTarget 解析 /:type/:id，类型只接受 movie 和 tv
func followTarget(c *gin.Context) (model.MediaType, int, bool) {
	mediaType := model.MediaType(c.Param("type"))
	id, ok := parseID(c, "id")
	if !mediaType.IsCatalog() || !ok {
		utils.BadRequest(c, "無効な作品です")
		return "", 0, false
	}
	return mediaType, id, true
}
