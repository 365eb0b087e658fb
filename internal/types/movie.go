package types

// Movie is one row of the immutable catalog loaded at startup.
type Movie struct {
	TMDBID      int      `json:"tmdb_id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	PosterPath  string   `json:"poster_path"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	VoteCount   int      `json:"vote_count"`
	VoteAverage float64  `json:"vote_average"`
}

// RankedMovie is a catalog row with an optional similarity score attached.
type RankedMovie struct {
	Movie
	Score float64 `json:"score,omitempty"`
}

// MovieList is the envelope for every list-shaped response.
type MovieList struct {
	Movies       []RankedMovie `json:"movies"`
	TotalResults int           `json:"total_results"`
	TotalPages   int           `json:"total_pages"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
}
