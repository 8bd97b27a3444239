package service

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/user/cinema/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	homeRowCount   = 20
	homeMaxItems   = 400
	homeAnimePages = 10
)

// homeGenres 首页混排使用的类型（动画单独作为日本动画池）
var homeGenres = []int{
	model.GenreAction, model.GenreAdventure, model.GenreComedy, model.GenreCrime,
	model.GenreDocumentary, model.GenreDrama, model.GenreFamily, model.GenreFantasy,
	model.GenreHistory, model.GenreHorror, model.GenreMusic, model.GenreMystery,
	model.GenreRomance, model.GenreScienceFiction, model.GenreThriller,
}

// HomeFeed 首页：日本动画与其他作品各占一半，随机混排后分行
type HomeFeed struct {
	agg *Aggregator
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewHomeFeed 创建首页服务，rnd 为空时使用随机种子
func NewHomeFeed(agg *Aggregator, rnd *rand.Rand) *HomeFeed {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &HomeFeed{agg: agg, rnd: rnd}
}

func homeListings() []Listing {
	ls := []Listing{Trending(), Popular(), TopRated(), Upcoming()}
	for _, g := range homeGenres {
		ls = append(ls, DiscoverByGenre(g, ""))
	}
	return ls
}

// Rows 拉取所有列表并返回首页各行
func (h *HomeFeed) Rows(ctx context.Context) [][]model.CatalogItem {
	listings := homeListings()
	others := make([][]model.CatalogItem, len(listings))
	var anime []model.CatalogItem

	var g errgroup.Group
	for i, l := range listings {
		g.Go(func() error {
			others[i] = h.agg.FetchListing(ctx, l, 1)
			return nil
		})
	}
	g.Go(func() error {
		anime = h.agg.FetchListing(ctx, DiscoverByGenre(model.GenreAnimation, "ja"), homeAnimePages)
		return nil
	})
	_ = g.Wait()

	return h.mix(anime, others)
}

// mix 去重（其他作品同时排除动画池中的 ID）、洗牌、按 50:50 交替后再洗牌并分行
func (h *HomeFeed) mix(anime []model.CatalogItem, others [][]model.CatalogItem) [][]model.CatalogItem {
	animeSeen := NewDeduper()
	animeList := animeSeen.Filter(anime)

	seen := animeSeen.Clone()
	var otherList []model.CatalogItem
	for _, list := range others {
		otherList = append(otherList, seen.Filter(list)...)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.shuffle(animeList)
	h.shuffle(otherList)

	total := min(len(animeList)+len(otherList), homeMaxItems)
	half := total / 2
	animePool := animeList[:min(half, len(animeList))]
	otherPool := otherList[:min(half, len(otherList))]

	mixed := make([]model.CatalogItem, 0, len(animePool)+len(otherPool))
	for i := range max(len(animePool), len(otherPool)) {
		if i < len(animePool) {
			mixed = append(mixed, animePool[i])
		}
		if i < len(otherPool) {
			mixed = append(mixed, otherPool[i])
		}
	}
	h.shuffle(mixed)

	return splitRows(mixed, homeRowCount)
}

func (h *HomeFeed) shuffle(items []model.CatalogItem) {
	h.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// splitRows 均分为最多 rows 行，丢弃空行
func splitRows(items []model.CatalogItem, rows int) [][]model.CatalogItem {
	if len(items) == 0 {
		return nil
	}
	perRow := (len(items) + rows - 1) / rows
	var out [][]model.CatalogItem
	for i := 0; i < rows; i++ {
		start := i * perRow
		if start >= len(items) {
			break
		}
		end := min(start+perRow, len(items))
		out = append(out, items[start:end])
	}
	return out
}
