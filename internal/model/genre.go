package model

// TMDB 类型 ID
const (
	GenreAction         = 28
	GenreAdventure      = 12
	GenreAnimation      = 16
	GenreComedy         = 35
	GenreCrime          = 80
	GenreDocumentary    = 99
	GenreDrama          = 18
	GenreFamily         = 10751
	GenreFantasy        = 14
	GenreHistory        = 36
	GenreHorror         = 27
	GenreMusic          = 10402
	GenreMystery        = 9648
	GenreRomance        = 10749
	GenreScienceFiction = 878
	GenreTVMovie        = 10770
	GenreThriller       = 53
	GenreWar            = 10752
	GenreWestern        = 37
)

// Genres 类型列表页展示顺序
var Genres = []Genre{
	{ID: GenreAction, Name: "アクション"},
	{ID: GenreAdventure, Name: "アドベンチャー"},
	{ID: GenreAnimation, Name: "アニメーション"},
	{ID: GenreComedy, Name: "コメディ"},
	{ID: GenreCrime, Name: "犯罪"},
	{ID: GenreDocumentary, Name: "ドキュメンタリー"},
	{ID: GenreDrama, Name: "ドラマ"},
	{ID: GenreFamily, Name: "ファミリー"},
	{ID: GenreFantasy, Name: "ファンタジー"},
	{ID: GenreHistory, Name: "歴史"},
	{ID: GenreHorror, Name: "ホラー"},
	{ID: GenreMusic, Name: "音楽"},
	{ID: GenreMystery, Name: "ミステリー"},
	{ID: GenreRomance, Name: "ロマンス"},
	{ID: GenreScienceFiction, Name: "SF"},
	{ID: GenreTVMovie, Name: "テレビ映画"},
	{ID: GenreThriller, Name: "スリラー"},
	{ID: GenreWar, Name: "戦争"},
	{ID: GenreWestern, Name: "西部劇"},
}

// GenreName 根据 ID 查找类型名
func GenreName(id int) (string, bool) {
	for _, g := range Genres {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}
