package recommender

import (
	"github.com/screenpick/screenpick-backend/internal/catalog"
	"github.com/screenpick/screenpick-backend/internal/logger"
	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
)

// ContentEngine ranks movies by cosine similarity between each movie's
// feature vector and a profile built from the user's liked and disliked
// movies. It has no training step: results reflect the edge state passed in,
// so they are consistent immediately after any mutation.
type ContentEngine struct {
	cat *catalog.Catalog
	log *logger.Logger
}

func NewContentEngine(cat *catalog.Catalog, baseLog *logger.Logger) *ContentEngine {
	return &ContentEngine{cat: cat, log: baseLog.With("engine", "ContentEngine")}
}

func (e *ContentEngine) Name() string {
	return "content"
}

func (e *ContentEngine) Recommend(userKey string, likedIDs, dislikedIDs []int) ([]ScoredRow, error) {
	likedRows := e.rowsFor(likedIDs)
	if len(likedRows) == 0 {
		return nil, apperrors.ErrNoPreferenceData
	}
	dislikedRows := e.rowsFor(dislikedIDs)

	exclude := make(map[int]bool, len(likedRows)+len(dislikedRows))
	for _, r := range likedRows {
		exclude[r] = true
	}
	for _, r := range dislikedRows {
		exclude[r] = true
	}

	profile := BuildProfile(likedRows, dislikedRows, e.cat)
	return RankAgainstProfile(profile, e.cat, exclude), nil
}

func (e *ContentEngine) Train(interactions []Interaction) (string, error) {
	return "content-based model does not require retraining", nil
}

// rowsFor maps tmdb ids to feature-matrix rows, skipping ids that are not in
// the catalog. An edge recorded against a movie that later fell out of the
// dataset should not poison the profile.
func (e *ContentEngine) rowsFor(tmdbIDs []int) []int {
	rows := make([]int, 0, len(tmdbIDs))
	for _, id := range tmdbIDs {
		if r, ok := e.cat.RowIndex(id); ok {
			rows = append(rows, r)
		}
	}
	return rows
}
