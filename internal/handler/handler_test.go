package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/user/cinema/internal/model"
)

func TestActiveMenu(t *testing.T) {
	cases := map[string]string{
		"/":          "home",
		"/genres":    "genres",
		"/genre/16":  "genres",
		"/ranking":   "ranking",
		"/reviews":   "reviews",
		"/follows":   "follows",
		"/movie/1":   "",
		"/generic":   "",
		"/privacy":   "",
		"/person/31": "",
	}
	for path, want := range cases {
		assert.Equal(t, want, activeMenu(path), path)
	}
}

func TestPersonCredits(t *testing.T) {
	poster := "/p.jpg"
	p := model.PersonDetail{ID: 1, Name: "Someone"}
	assert.Nil(t, personCredits(p))

	p.CombinedCredits = &struct {
		Cast []model.CatalogItem `json:"cast"`
	}{Cast: []model.CatalogItem{
		{ID: 1, PosterPath: &poster, VoteAverage: 6},
		{ID: 2, VoteAverage: 9},
		{ID: 3, PosterPath: &poster, VoteAverage: 8},
		{ID: 1, PosterPath: &poster, VoteAverage: 10},
		{ID: 4, PosterPath: &poster, VoteAverage: 8},
	}}

	var ids []int
	for _, it := range personCredits(p) {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{3, 4, 1}, ids)
}

func TestParseID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for raw, want := range map[string]int{"42": 42, "0": 0, "-3": 0, "abc": 0} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, ok := parseID(c, "id")
		assert.Equal(t, want, id, raw)
		assert.Equal(t, want > 0, ok, raw)
	}
}
