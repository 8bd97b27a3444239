package handler

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	genrePages        = 3
	rankingLimit      = 20
	recommendLimit    = 20
	castLimit         = 10
	galleryLimit      = 12
	overviewMetaLimit = 150
)

// reviewedItem 带特别评论的作品
type reviewedItem struct {
	ID        int
	MediaType model.MediaType
}

var reviewedItems = []reviewedItem{
	{ID: 280, MediaType: model.MediaMovie},
	{ID: 1396, MediaType: model.MediaTV},
	{ID: 129, MediaType: model.MediaMovie},
}

// rankingSection 排行榜的一栏
type rankingSection struct {
	Title    string
	Subtitle string
	Items    []model.CatalogItem
}

// Home 首页
func (h *Handler) Home(c *gin.Context) {
	rows := h.HomeFeed.Rows(c.Request.Context())

	var hero *model.CatalogItem
	for _, row := range rows {
		for i := range row {
			if row[i].Backdrop() != "" {
				hero = &row[i]
				break
			}
		}
		if hero != nil {
			break
		}
	}

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title": h.Config.SiteName + " - 映画・ドラマ情報",
		"Hero":  hero,
		"Rows":  rows,
	}))
}

// Genres 类型列表
func (h *Handler) Genres(c *gin.Context) {
	c.HTML(http.StatusOK, "genres.html", h.RenderData(c, gin.H{
		"Title":  "ジャンル - " + h.Config.SiteName,
		"Genres": model.Genres,
	}))
}

// Genre 类型作品列表。无 page 参数时合并前 3 页，有 page 参数时按页浏览
func (h *Handler) Genre(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	name := c.Query("name")
	if name == "" {
		if n, found := model.GenreName(id); found {
			name = n
		} else {
			name = "ジャンル"
		}
	}

	listing := service.DiscoverByGenre(id, "")
	data := gin.H{
		"Title":   name + " - " + h.Config.SiteName,
		"GenreID": id,
		"Name":    name,
	}

	if raw := c.Query("page"); raw != "" {
		page, _ := strconv.Atoi(raw)
		result := h.Lists.FetchListingPage(c.Request.Context(), listing, page)
		data["Items"] = service.Dedupe(result.Items)
		data["Page"] = result.Page
		data["TotalPages"] = result.TotalPages
		if result.Page > 1 {
			data["PrevPage"] = result.Page - 1
		}
		if result.Page < result.TotalPages {
			data["NextPage"] = result.Page + 1
		}
	} else {
		data["Items"] = service.Dedupe(h.Lists.FetchListing(c.Request.Context(), listing, genrePages))
		data["NextPage"] = genrePages + 1
	}

	c.HTML(http.StatusOK, "genre.html", h.RenderData(c, data))
}

// Ranking 排行榜
func (h *Handler) Ranking(c *gin.Context) {
	ctx := c.Request.Context()
	sections := []rankingSection{
		{Title: "トレンド", Subtitle: "今週話題の作品"},
		{Title: "人気", Subtitle: "いま最も見られている作品"},
		{Title: "高評価", Subtitle: "評価の高い名作"},
	}
	listings := []service.Listing{service.Trending(), service.Popular(), service.TopRated()}

	var g errgroup.Group
	for i, l := range listings {
		g.Go(func() error {
			items := h.Lists.FetchListing(ctx, l, 1)
			sections[i].Items = items[:min(len(items), rankingLimit)]
			return nil
		})
	}
	_ = g.Wait()

	c.HTML(http.StatusOK, "ranking.html", h.RenderData(c, gin.H{
		"Title":    "ランキング - " + h.Config.SiteName,
		"Sections": sections,
	}))
}

// Reviews 特别评论作品
func (h *Handler) Reviews(c *gin.Context) {
	ctx := c.Request.Context()
	details := make([]model.DetailRecord, len(reviewedItems))

	var g errgroup.Group
	for i, item := range reviewedItems {
		g.Go(func() error {
			details[i] = h.Catalog.FetchDetail(ctx, item.ID, item.MediaType)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]model.DetailRecord, 0, len(details))
	for _, d := range details {
		if !d.IsEmpty() {
			items = append(items, d)
		}
	}

	c.HTML(http.StatusOK, "reviews.html", h.RenderData(c, gin.H{
		"Title": "レビュー - " + h.Config.SiteName,
		"Items": items,
	}))
}

// Movie 电影/剧集详情页
func (h *Handler) Movie(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	mediaType := mediaTypeQuery(c)
	ctx := c.Request.Context()

	detail := h.Catalog.FetchDetail(ctx, id, mediaType)
	if detail.IsEmpty() {
		h.NotFound(c)
		return
	}

	var (
		images    model.ImageSet
		recs      []model.CatalogItem
		providers *model.WatchProviders
	)
	var g errgroup.Group
	g.Go(func() error {
		images = h.Catalog.FetchImages(ctx, id, mediaType)
		return nil
	})
	g.Go(func() error {
		items := service.Dedupe(h.Lists.FetchListing(ctx, service.Recommendations(mediaType, id), 1))
		recs = items[:min(len(items), recommendLimit)]
		return nil
	})
	g.Go(func() error {
		providers = h.Catalog.FetchWatchProviders(ctx, id, mediaType)
		return nil
	})
	_ = g.Wait()

	gallery := images.Backdrops
	if len(gallery) > galleryLimit {
		gallery = gallery[:galleryLimit]
	}

	description := []rune(detail.Overview)
	if len(description) > overviewMetaLimit {
		description = description[:overviewMetaLimit]
	}

	c.HTML(http.StatusOK, "movie.html", h.RenderData(c, gin.H{
		"Title":       detail.DisplayTitle() + " - " + h.Config.SiteName,
		"Description": string(description),
		"Detail":      detail,
		"MediaType":   string(mediaType),
		"Trailer":     detail.Trailer(),
		"Cast":        detail.TopCast(castLimit),
		"Directors":   detail.Directors(),
		"Gallery":     gallery,
		"Recs":        recs,
		"Providers":   providers,
		"Followed":    h.favorites(c).IsFollowed(id, mediaType),
		"ShareURL":    fmt.Sprintf("%s/movie/%d?type=%s", h.Config.SiteUrl, id, mediaType),
	}))
}

// Person 人物页
func (h *Handler) Person(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	person := h.Catalog.FetchPerson(c.Request.Context(), id)
	if person.IsEmpty() {
		h.NotFound(c)
		return
	}

	c.HTML(http.StatusOK, "person.html", h.RenderData(c, gin.H{
		"Title":   person.Name + " - " + h.Config.SiteName,
		"Person":  person,
		"Credits": personCredits(person),
	}))
}

// personCredits 出演作品：去重、只保留有海报的，按评分倒序
func personCredits(p model.PersonDetail) []model.CatalogItem {
	if p.CombinedCredits == nil {
		return nil
	}
	credits := make([]model.CatalogItem, 0, len(p.CombinedCredits.Cast))
	for _, it := range service.Dedupe(p.CombinedCredits.Cast) {
		if it.Poster() != "" {
			credits = append(credits, it)
		}
	}
	sort.SliceStable(credits, func(i, j int) bool {
		return credits[i].VoteAverage > credits[j].VoteAverage
	})
	return credits
}

// Follows 关注列表页，最近关注的在前
func (h *Handler) Follows(c *gin.Context) {
	c.HTML(http.StatusOK, "follows.html", h.RenderData(c, gin.H{
		"Title": "フォロー中 - " + h.Config.SiteName,
		"Items": localstore.SortByFollowedAtDesc(h.favorites(c).List()),
	}))
}

// Privacy 隐私政策
func (h *Handler) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", h.RenderData(c, gin.H{
		"Title": "プライバシーポリシー - " + h.Config.SiteName,
	}))
}
