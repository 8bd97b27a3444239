package model

import "strings"

// MediaType 作品类型
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	MediaPerson MediaType = "person"
)

// ParseMediaType 解析页面参数中的类型，未知值按电影处理
func ParseMediaType(s string) MediaType {
	if MediaType(strings.ToLower(strings.TrimSpace(s))) == MediaTV {
		return MediaTV
	}
	return MediaMovie
}

// IsCatalog 是否为可浏览的作品（电影或剧集）
func (m MediaType) IsCatalog() bool {
	return m == MediaMovie || m == MediaTV
}

// CatalogItem 列表接口返回的电影/剧集
type CatalogItem struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"` // 剧集标题
	Overview     string    `json:"overview"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
	VoteAverage  float64   `json:"vote_average"`
	VoteCount    int       `json:"vote_count"`
	ReleaseDate  *string   `json:"release_date,omitempty"`
	FirstAirDate *string   `json:"first_air_date,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
}

// DisplayTitle 标题，剧集回退到 name
func (c CatalogItem) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Year 上映/首播年份，未知返回空串
func (c CatalogItem) Year() string {
	for _, d := range []*string{c.ReleaseDate, c.FirstAirDate} {
		if d != nil && len(*d) >= 4 {
			return (*d)[:4]
		}
	}
	return ""
}

// Poster 海报路径，空指针返回空串
func (c CatalogItem) Poster() string {
	if c.PosterPath == nil {
		return ""
	}
	return *c.PosterPath
}

// Backdrop 背景图路径
func (c CatalogItem) Backdrop() string {
	if c.BackdropPath == nil {
		return ""
	}
	return *c.BackdropPath
}

// Genre 类型
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video 视频（预告片等）
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// CastMember 演员
type CastMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
}

// CrewMember 职员
type CrewMember struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	ProfilePath *string `json:"profile_path"`
}

// Credits 演职员表
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Season 剧集的季
type Season struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	SeasonNumber int     `json:"season_number"`
	EpisodeCount int     `json:"episode_count"`
	AirDate      *string `json:"air_date"`
	PosterPath   *string `json:"poster_path"`
}

// Company 制作公司
type Company struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	LogoPath *string `json:"logo_path"`
}

// DetailRecord 详情页数据
type DetailRecord struct {
	CatalogItem
	Runtime             int       `json:"runtime"`
	Genres              []Genre   `json:"genres"`
	Tagline             string    `json:"tagline"`
	Status              string    `json:"status"`
	Budget              int64     `json:"budget"`
	Revenue             int64     `json:"revenue"`
	ProductionCompanies []Company `json:"production_companies"`
	Videos              *struct {
		Results []Video `json:"results"`
	} `json:"videos,omitempty"`
	Credits *Credits `json:"credits,omitempty"`
	Seasons []Season `json:"seasons,omitempty"`
}

// IsEmpty 是否为“未找到”哨兵
func (d DetailRecord) IsEmpty() bool {
	return d.ID == 0
}

// Trailer 第一个 YouTube 预告片
func (d DetailRecord) Trailer() *Video {
	if d.Videos == nil {
		return nil
	}
	for i, v := range d.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return &d.Videos.Results[i]
		}
	}
	return nil
}

// TopCast 前 n 位演员
func (d DetailRecord) TopCast(n int) []CastMember {
	if d.Credits == nil {
		return nil
	}
	if len(d.Credits.Cast) <= n {
		return d.Credits.Cast
	}
	return d.Credits.Cast[:n]
}

// Directors 导演
func (d DetailRecord) Directors() []CrewMember {
	if d.Credits == nil {
		return nil
	}
	var out []CrewMember
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			out = append(out, c)
		}
	}
	return out
}

// PersonDetail 人物详情
type PersonDetail struct {
	ID                 int     `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	ProfilePath        *string `json:"profile_path"`
	Birthday           *string `json:"birthday"`
	PlaceOfBirth       *string `json:"place_of_birth"`
	KnownForDepartment string  `json:"known_for_department"`
	CombinedCredits    *struct {
		Cast []CatalogItem `json:"cast"`
	} `json:"combined_credits,omitempty"`
}

// IsEmpty 是否为“未找到”哨兵
func (p PersonDetail) IsEmpty() bool {
	return p.ID == 0
}

// Image 图片
type Image struct {
	FilePath string  `json:"file_path"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Ratio    float64 `json:"aspect_ratio"`
}

// ImageSet 作品图片集
type ImageSet struct {
	Backdrops []Image `json:"backdrops"`
	Posters   []Image `json:"posters"`
}

// Provider 播放平台
type Provider struct {
	ProviderID   int     `json:"provider_id"`
	ProviderName string  `json:"provider_name"`
	LogoPath     *string `json:"logo_path"`
}

// WatchProviders 某地区的播放平台
type WatchProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// Any 是否至少有一种观看方式
func (w *WatchProviders) Any() bool {
	return w != nil && (len(w.Flatrate) > 0 || len(w.Rent) > 0 || len(w.Buy) > 0)
}
