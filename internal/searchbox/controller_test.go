package searchbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/model"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

// manualClock 只记录定时器，由测试决定何时触发
type manualClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (m *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (m *manualClock) timer(i int) *fakeTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers[i]
}

func (m *manualClock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// fireActive 同步触发所有未取消的定时器
func (m *manualClock) fireActive() int {
	m.mu.Lock()
	var active []*fakeTimer
	for _, t := range m.timers {
		if !t.stopped {
			t.stopped = true
			active = append(active, t)
		}
	}
	m.mu.Unlock()
	for _, t := range active {
		t.f()
	}
	return len(active)
}

type stubSearcher struct {
	mu      sync.Mutex
	calls   []string
	results map[string][]model.CatalogItem
	err     error
}

func (s *stubSearcher) Search(_ context.Context, q string) ([]model.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[q], nil
}

func (s *stubSearcher) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func movies(ids ...int) []model.CatalogItem {
	out := make([]model.CatalogItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.CatalogItem{ID: id, MediaType: model.MediaMovie})
	}
	return out
}

func newTestController(s Searcher) (*Controller, *manualClock) {
	clock := &manualClock{}
	return NewController(Options{Searcher: s, Clock: clock}), clock
}

func TestInputDebouncesBurst(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.CatalogItem{"abc": movies(1)}}
	c, clock := newTestController(s)

	c.Input("a")
	c.Input("ab")
	c.Input("abc")
	assert.Equal(t, Pending, c.Snapshot().State)
	assert.Equal(t, 3, clock.count())
	assert.Equal(t, DefaultDelay, clock.timer(2).d)

	assert.Equal(t, 1, clock.fireActive())

	assert.Equal(t, []string{"abc"}, s.Calls())
	snap := c.Snapshot()
	assert.Equal(t, Settled, snap.State)
	assert.Equal(t, "abc", snap.Query)
	require.Len(t, snap.Results, 1)
}

func TestSupersededTimerDoesNotSearch(t *testing.T) {
	s := &stubSearcher{}
	c, clock := newTestController(s)

	c.Input("a")
	c.Input("ab")
	// 已停止的定时器仍然触发时，generation 不匹配，直接忽略
	clock.timer(0).f()

	assert.Empty(t, s.Calls())
	assert.Equal(t, Pending, c.Snapshot().State)
}

func TestEmptyInputBypassesTimer(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.CatalogItem{"a": movies(1)}}
	c, clock := newTestController(s)

	c.Input("a")
	clock.fireActive()
	require.Equal(t, Settled, c.Snapshot().State)

	c.Input("   ")
	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Results)
	assert.Equal(t, 1, clock.count())
	assert.Equal(t, PopularTerms, snap.PopularTerms)
}

func TestResultsTruncated(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.CatalogItem{"x": movies(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)}}
	c, clock := newTestController(s)

	c.Input("x")
	clock.fireActive()

	snap := c.Snapshot()
	assert.Len(t, snap.Results, MaxResults)
	assert.Equal(t, 8, snap.Results[7].ID)
}

func TestSearchErrorSettlesEmpty(t *testing.T) {
	s := &stubSearcher{err: errors.New("offline")}
	c, clock := newTestController(s)

	c.Input("x")
	clock.fireActive()

	snap := c.Snapshot()
	assert.Equal(t, Settled, snap.State)
	assert.Empty(t, snap.Results)
	assert.Nil(t, snap.PopularTerms)
}

// blockingSearcher 每个搜索词在测试放行前一直阻塞
type blockingSearcher struct {
	started chan string
	release map[string]chan []model.CatalogItem
}

func newBlockingSearcher(terms ...string) *blockingSearcher {
	b := &blockingSearcher{started: make(chan string, len(terms)), release: map[string]chan []model.CatalogItem{}}
	for _, t := range terms {
		b.release[t] = make(chan []model.CatalogItem, 1)
	}
	return b
}

func (b *blockingSearcher) Search(_ context.Context, q string) ([]model.CatalogItem, error) {
	b.started <- q
	return <-b.release[q], nil
}

func TestStaleResponseDoesNotOverwriteNewer(t *testing.T) {
	s := newBlockingSearcher("a", "ab")
	c, clock := newTestController(s)

	c.Input("a")
	firstDone := make(chan struct{})
	go func() {
		clock.timer(0).f()
		close(firstDone)
	}()
	require.Equal(t, "a", <-s.started)
	assert.Equal(t, Loading, c.Snapshot().State)

	c.Input("ab")
	secondDone := make(chan struct{})
	go func() {
		clock.timer(1).f()
		close(secondDone)
	}()
	require.Equal(t, "ab", <-s.started)

	s.release["ab"] <- movies(2)
	<-secondDone
	s.release["a"] <- movies(1)
	<-firstDone

	snap := c.Snapshot()
	assert.Equal(t, Settled, snap.State)
	assert.Equal(t, "ab", snap.Query)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, 2, snap.Results[0].ID)
}

func TestCloseDiscardsInFlight(t *testing.T) {
	s := newBlockingSearcher("a")
	c, clock := newTestController(s)

	c.Input("a")
	done := make(chan struct{})
	go func() {
		clock.timer(0).f()
		close(done)
	}()
	<-s.started

	c.Close()
	s.release["a"] <- movies(1)
	<-done

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Results)
	assert.Empty(t, snap.Query)
	assert.Equal(t, PopularTerms, snap.PopularTerms)
}

func TestSelectRecordsHistoryAndNavigates(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.CatalogItem{
		"breaking": {{ID: 1396, MediaType: model.MediaTV, Name: "ブレイキング・バッド"}},
	}}
	history := localstore.NewHistory(localstore.NewMemoryStorage())
	clock := &manualClock{}
	var navigated []string
	c := NewController(Options{
		Searcher: s,
		History:  history,
		Clock:    clock,
		Navigate: func(path string) { navigated = append(navigated, path) },
	})

	c.Input("breaking")
	clock.fireActive()
	c.Select(c.Snapshot().Results[0])

	assert.Equal(t, []string{"/movie/1396?type=tv"}, navigated)
	assert.Equal(t, []string{"ブレイキング・バッド"}, history.List())

	snap := c.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Query)
	assert.Empty(t, snap.Results)
	assert.Equal(t, []string{"ブレイキング・バッド"}, snap.History)
}

func TestApplyTermActsLikeInput(t *testing.T) {
	s := &stubSearcher{results: map[string][]model.CatalogItem{"ジブリ": movies(129)}}
	c, clock := newTestController(s)

	c.ApplyTerm("ジブリ")
	assert.Equal(t, Pending, c.Snapshot().State)
	clock.fireActive()

	assert.Equal(t, []string{"ジブリ"}, s.Calls())
	assert.Len(t, c.Snapshot().Results, 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "unknown", State(9).String())
}
