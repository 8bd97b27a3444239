package searchbox

import (
	"context"
	"net/url"
	"strings"

	"github.com/user/cinema/internal/model"
	"github.com/user/cinema/internal/utils"
)

type searchResponse struct {
	Results []model.CatalogItem `json:"results"`
}

// APIClient 调用站内 /api/search 接口
type APIClient struct {
	baseURL string
	http    *utils.HTTPClient
}

// NewAPIClient 创建客户端，baseURL 为站点根地址
func NewAPIClient(baseURL string, client *utils.HTTPClient) *APIClient {
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: client}
}

// Search 搜索电影和剧集
func (a *APIClient) Search(ctx context.Context, query string) ([]model.CatalogItem, error) {
	var resp searchResponse
	endpoint := a.baseURL + "/api/search?q=" + url.QueryEscape(query)
	if err := a.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
