package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/cinema/internal/config"
	"github.com/user/cinema/internal/model"
	"go.uber.org/zap"
)

const testAPIKey = "test-key"

type fakeRoute struct {
	status int
	body   any
}

// fakeTMDB 按 path|language|page 响应并统计命中次数
type fakeTMDB struct {
	mu     sync.Mutex
	routes map[string]fakeRoute
	hits   map[string]int
	srv    *httptest.Server
}

func newFakeTMDB(t *testing.T) *fakeTMDB {
	t.Helper()
	f := &fakeTMDB{
		routes: make(map[string]fakeRoute),
		hits:   make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func routeKey(path, lang, page string) string {
	if page == "" {
		page = "1"
	}
	return path + "|" + lang + "|" + page
}

func (f *fakeTMDB) serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("api_key") != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	key := routeKey(r.URL.Path, q.Get("language"), q.Get("page"))

	f.mu.Lock()
	f.hits[key]++
	route, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.status)
	_ = json.NewEncoder(w).Encode(route.body)
}

func (f *fakeTMDB) on(path, lang string, body any) {
	f.onPage(path, lang, 1, http.StatusOK, body)
}

func (f *fakeTMDB) onPage(path, lang string, page, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[routeKey(path, lang, strconv.Itoa(page))] = fakeRoute{status: status, body: body}
}

func (f *fakeTMDB) fail(path, lang string, status int) {
	f.onPage(path, lang, 1, status, map[string]any{"status_code": 7})
}

func (f *fakeTMDB) count(path, lang string) int {
	return f.countPage(path, lang, 1)
}

func (f *fakeTMDB) countPage(path, lang string, page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[routeKey(path, lang, strconv.Itoa(page))]
}

func (f *fakeTMDB) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

func (f *fakeTMDB) client(ttl time.Duration) *TMDBClient {
	return NewTMDBClientWithOptions(TMDBOptions{
		BaseURL:    f.srv.URL,
		APIKey:     testAPIKey,
		CacheTTL:   ttl,
		HTTPClient: f.srv.Client(),
	}, zap.NewNop())
}

func testConfig() *config.Config {
	return &config.Config{
		TMDBLanguage:         "ja-JP",
		TMDBFallbackLanguage: "en-US",
		WatchRegion:          "JP",
	}
}

func strPtr(s string) *string { return &s }

func TestFetchJSONWrapsStatusError(t *testing.T) {
	f := newFakeTMDB(t)
	f.fail("/movie/1", "ja-JP", http.StatusServiceUnavailable)

	_, err := f.client(0).Detail(context.Background(), model.MediaMovie, 1, "ja-JP", "")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "/movie/1", fe.Endpoint)
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
}

func TestFetchJSONWithoutAPIKeySkipsUpstream(t *testing.T) {
	f := newFakeTMDB(t)
	c := NewTMDBClientWithOptions(TMDBOptions{BaseURL: f.srv.URL}, zap.NewNop())

	_, err := c.List(context.Background(), "/movie/popular", "ja-JP", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAPIKey))
	assert.Equal(t, 0, f.total())
}

func TestFetchJSONCachesSuccessOnly(t *testing.T) {
	f := newFakeTMDB(t)
	f.on("/movie/popular", "ja-JP", ListResponse{Results: []model.CatalogItem{{ID: 1}}})
	f.fail("/movie/top_rated", "ja-JP", http.StatusInternalServerError)
	c := f.client(time.Minute)
	ctx := context.Background()

	for range 3 {
		resp, err := c.List(ctx, "/movie/popular", "ja-JP", nil)
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
	}
	assert.Equal(t, 1, f.count("/movie/popular", "ja-JP"))

	for range 2 {
		_, err := c.List(ctx, "/movie/top_rated", "ja-JP", nil)
		require.Error(t, err)
	}
	assert.Equal(t, 2, f.count("/movie/top_rated", "ja-JP"))
	assert.Equal(t, 1, c.CachedResponses())

	c.Flush()
	_, err := c.List(ctx, "/movie/popular", "ja-JP", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("/movie/popular", "ja-JP"))
}

func TestOrEmpty(t *testing.T) {
	logger := zap.NewNop()
	assert.Equal(t, 5, orEmpty(logger, 5, nil, 0))
	assert.Equal(t, 0, orEmpty(logger, 5, &FetchError{Endpoint: "/x", Status: 500}, 0))
	assert.Equal(t, -1, orEmpty(logger, 5, errors.New("boom"), -1))
}

func TestFetchJSONSharedRequestSurvivesCallerCancel(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		hits int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		first := hits == 1
		mu.Unlock()
		if first {
			close(started)
		}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":129,"title":"千と千尋の神隠し"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewTMDBClientWithOptions(TMDBOptions{
		BaseURL:    srv.URL,
		APIKey:     testAPIKey,
		HTTPClient: srv.Client(),
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Detail(ctx, model.MediaMovie, 129, "ja-JP", "")
		firstErr <- err
	}()
	<-started

	type result struct {
		detail model.DetailRecord
		err    error
	}
	second := make(chan result, 1)
	go func() {
		d, err := client.Detail(context.Background(), model.MediaMovie, 129, "ja-JP", "")
		second <- result{d, err}
	}()
	// 等第二个调用加入合并请求后，让第一个调用方断开
	time.Sleep(50 * time.Millisecond)
	cancel()
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, 129, res.detail.ID)
	assert.NoError(t, <-firstErr)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits)
}
