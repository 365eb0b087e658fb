package recommender

import (
	"math"
	"sort"

	"github.com/screenpick/screenpick-backend/internal/catalog"
)

// ScoredRow pairs a catalog row index with its recommendation score.
type ScoredRow struct {
	Row   int     `json:"row"`
	Score float64 `json:"score"`
}

// Interaction is one positive (liked) user-movie edge, the unit the
// collaborative engine trains on.
type Interaction struct {
	UserKey string
	TMDBID  int
}

// Engine ranks unseen catalog rows for a user. Both strategies exclude every
// movie the user already rated, liked or disliked.
type Engine interface {
	Name() string
	Recommend(userKey string, likedIDs, dislikedIDs []int) ([]ScoredRow, error)
	Train(interactions []Interaction) (string, error)
}

// Mean computes the centroid of the given feature-matrix rows.
func Mean(rows []int, cat *catalog.Catalog) []float64 {
	out := make([]float64, cat.Dim)
	if len(rows) == 0 {
		return out
	}
	for _, r := range rows {
		vec := cat.Row(r)
		for j, v := range vec {
			out[j] += v
		}
	}
	n := float64(len(rows))
	for j := range out {
		out[j] /= n
	}
	return out
}

// BuildProfile derives the user profile vector: the centroid of liked rows,
// minus the centroid of disliked rows when there are any. Subtracting the
// disliked centroid lets dislikes suppress similar content instead of only
// excluding the disliked titles themselves.
func BuildProfile(likedRows, dislikedRows []int, cat *catalog.Catalog) []float64 {
	profile := Mean(likedRows, cat)
	if len(dislikedRows) == 0 {
		return profile
	}
	dislikedCentroid := Mean(dislikedRows, cat)
	for j := range profile {
		profile[j] -= dislikedCentroid[j]
	}
	return profile
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Either vector having zero norm yields 0.
func CosineSimilarity(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// RankAgainstProfile scores every catalog row against the profile, drops the
// excluded rows and sorts score-descending. The sort is stable so ties keep
// catalog order.
func RankAgainstProfile(profile []float64, cat *catalog.Catalog, exclude map[int]bool) []ScoredRow {
	ranked := make([]ScoredRow, 0, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		if exclude[i] {
			continue
		}
		ranked = append(ranked, ScoredRow{Row: i, Score: CosineSimilarity(profile, cat.Row(i))})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked
}

// Paginate maps a 1-based page onto [start, end) bounds over total rows and
// reports the page count, 0 when there are no rows.
func Paginate(total, page, pageSize int) (start, end, totalPages int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return start, end, totalPages
}
