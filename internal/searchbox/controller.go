package searchbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultDelay 输入防抖间隔
	DefaultDelay = 300 * time.Millisecond
	// MaxResults 下拉框最多显示的结果数
	MaxResults = 8
)

// PopularTerms 空闲时展示的热门搜索词
var PopularTerms = []string{"ジブリ", "ワンピース", "マーベル", "ハリーポッター", "新海誠"}

// State 搜索框状态
type State int

const (
	Idle State = iota
	Pending
	Loading
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Searcher 搜索接口，只返回电影和剧集
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.CatalogItem, error)
}

// Options 控制器依赖
type Options struct {
	Searcher Searcher
	History  *localstore.History
	Clock    Clock
	Navigate func(path string)
	Delay    time.Duration
	Logger   *zap.Logger
}

// Snapshot 搜索框当前展示内容
type Snapshot struct {
	Query        string
	State        State
	Results      []model.CatalogItem
	History      []string
	PopularTerms []string
}

// Controller 搜索框防抖状态机。
// 每次输入递增 generation，只有与当前 generation 一致的结果才会被应用。
type Controller struct {
	opts Options

	mu      sync.Mutex
	query   string
	state   State
	results []model.CatalogItem
	gen     uint64
	timer   Timer
}

// NewController 创建控制器
func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Navigate == nil {
		opts.Navigate = func(string) {}
	}
	return &Controller{opts: opts}
}

// Input 处理一次输入。空白输入立即清空结果并回到 Idle，不启动定时器
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reset()
	c.query = text
	term := strings.TrimSpace(text)
	if term == "" {
		c.state = Idle
		c.results = nil
		return
	}

	c.state = Pending
	gen := c.gen
	c.timer = c.opts.Clock.AfterFunc(c.opts.Delay, func() {
		c.fire(gen, term)
	})
}

// ApplyTerm 点击历史或热门词，等同于输入该词
func (c *Controller) ApplyTerm(term string) {
	c.Input(term)
}

// Select 选中结果：记录搜索历史、清空输入并跳转到详情页
func (c *Controller) Select(item model.CatalogItem) {
	if c.opts.History != nil {
		if err := c.opts.History.Record(item.DisplayTitle()); err != nil {
			c.opts.Logger.Warn("保存搜索历史失败", zap.Error(err))
		}
	}

	c.mu.Lock()
	c.reset()
	c.query = ""
	c.results = nil
	c.state = Idle
	c.mu.Unlock()

	c.opts.Navigate(fmt.Sprintf("/movie/%d?type=%s", item.ID, item.MediaType))
}

// Close 关闭下拉框：清空输入并丢弃进行中的结果
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.query = ""
	c.results = nil
	c.state = Idle
}

// Snapshot 当前状态快照
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	snap := Snapshot{
		Query:   c.query,
		State:   c.state,
		Results: append([]model.CatalogItem(nil), c.results...),
	}
	c.mu.Unlock()

	if snap.State == Idle {
		if c.opts.History != nil {
			snap.History = c.opts.History.List()
		}
		snap.PopularTerms = PopularTerms
	}
	return snap
}

// reset 作废当前周期，调用方持有锁
func (c *Controller) reset() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fire(gen uint64, term string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = Loading
	c.timer = nil
	c.mu.Unlock()

	items, err := c.opts.Searcher.Search(context.Background(), term)
	c.apply(gen, term, items, err)
}

func (c *Controller) apply(gen uint64, term string, items []model.CatalogItem, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.opts.Logger.Debug("丢弃过期搜索结果", zap.String("term", term))
		return
	}
	if err != nil {
		c.opts.Logger.Warn("搜索请求失败", zap.String("term", term), zap.Error(err))
		items = nil
	}
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	c.results = items
	c.state = Settled
}
