package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/screenpick/screenpick-backend/internal/catalog"
	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/normalization"
	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
	"github.com/screenpick/screenpick-backend/internal/recommender"
	"github.com/screenpick/screenpick-backend/internal/repos"
	"github.com/screenpick/screenpick-backend/internal/types"
)

// Scope narrows a search to a slice of the catalog. It is a closed set;
// anything else fails with ErrInvalidScope.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeLiked       Scope = "liked"
	ScopeDisliked    Scope = "disliked"
	ScopeRecommended Scope = "recommended"
)

// ParseScope normalizes and validates a scope string. Empty means all.
func ParseScope(raw string) (Scope, error) {
	s := Scope(normalization.ParseInputString(raw))
	switch s {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeLiked, ScopeDisliked, ScopeRecommended:
		return s, nil
	default:
		return "", fmt.Errorf("scope %q: %w", raw, apperrors.ErrInvalidScope)
	}
}

type MovieService interface {
	Like(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error)
	Dislike(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error)
	Undislike(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error)
	ListAll(ctx context.Context, page, pageSize int) (*types.MovieList, error)
	ListPopular(ctx context.Context, page, pageSize int) (*types.MovieList, error)
	ListLiked(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error)
	ListDisliked(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error)
	Search(ctx context.Context, userID uuid.UUID, query string, scope Scope, page, pageSize int) (*types.MovieList, error)
}

type movieService struct {
	db       *gorm.DB
	log      *logger.Logger
	cat      *catalog.Catalog
	prefRepo repos.PreferenceRepo
	recSvc   RecommendationService
}

func NewMovieService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	prefRepo repos.PreferenceRepo,
	recSvc RecommendationService,
) MovieService {
	serviceLog := log.With("service", "MovieService")
	return &movieService{
		db:       db,
		log:      serviceLog,
		cat:      cat,
		prefRepo: prefRepo,
		recSvc:   recSvc,
	}
}

func (ms *movieService) Like(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error) {
	return ms.signal(ctx, userID, tmdbID, types.PolarityLiked)
}

func (ms *movieService) Dislike(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error) {
	return ms.signal(ctx, userID, tmdbID, types.PolarityDisliked)
}

// signal records one polarity edge. The unique (user_id, tmdb_id) index makes
// the upsert replace any opposing edge, so liking a disliked movie flips it.
func (ms *movieService) signal(ctx context.Context, userID uuid.UUID, tmdbID int, polarity types.Polarity) (string, error) {
	movie, ok := ms.cat.ByID(tmdbID)
	if !ok {
		return "", fmt.Errorf("tmdb id %d: %w", tmdbID, apperrors.ErrMovieNotFound)
	}
	if _, err := ms.prefRepo.Upsert(ctx, nil, userID, tmdbID, polarity); err != nil {
		return "", fmt.Errorf("failed to record %s: %w", polarity, err)
	}
	ms.recSvc.InvalidateCache(ctx, userID)
	return fmt.Sprintf("%s %q", polarity, movie.Title), nil
}

func (ms *movieService) Undislike(ctx context.Context, userID uuid.UUID, tmdbID int) (string, error) {
	movie, ok := ms.cat.ByID(tmdbID)
	if !ok {
		return "", fmt.Errorf("tmdb id %d: %w", tmdbID, apperrors.ErrMovieNotFound)
	}
	rows, err := ms.prefRepo.Delete(ctx, nil, userID, tmdbID, types.PolarityDisliked)
	if err != nil {
		return "", fmt.Errorf("failed to remove dislike: %w", err)
	}
	if rows == 0 {
		return "", fmt.Errorf("no dislike recorded for %q: %w", movie.Title, apperrors.ErrNoOpFound)
	}
	ms.recSvc.InvalidateCache(ctx, userID)
	return fmt.Sprintf("removed dislike for %q", movie.Title), nil
}

func (ms *movieService) ListAll(ctx context.Context, page, pageSize int) (*types.MovieList, error) {
	rows := make([]int, ms.cat.Len())
	for i := range rows {
		rows[i] = i
	}
	return ms.listFromRows(rows, page, pageSize), nil
}

func (ms *movieService) ListPopular(ctx context.Context, page, pageSize int) (*types.MovieList, error) {
	return ms.listFromRows(ms.cat.PopularOrder(), page, pageSize), nil
}

func (ms *movieService) ListLiked(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error) {
	return ms.listByPolarity(ctx, userID, types.PolarityLiked, page, pageSize)
}

func (ms *movieService) ListDisliked(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error) {
	return ms.listByPolarity(ctx, userID, types.PolarityDisliked, page, pageSize)
}

func (ms *movieService) listByPolarity(ctx context.Context, userID uuid.UUID, polarity types.Polarity, page, pageSize int) (*types.MovieList, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrMissingUser
	}
	prefs, err := ms.prefRepo.GetByUserIDAndPolarity(ctx, nil, userID, polarity)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s movies: %w", polarity, err)
	}
	rows := make([]int, 0, len(prefs))
	for _, p := range prefs {
		if r, ok := ms.cat.RowIndex(p.TMDBID); ok {
			rows = append(rows, r)
		}
	}
	return ms.listFromRows(rows, page, pageSize), nil
}

func (ms *movieService) Search(ctx context.Context, userID uuid.UUID, query string, scope Scope, page, pageSize int) (*types.MovieList, error) {
	q := normalization.ParseInputString(query)
	if utf8.RuneCountInString(q) < 2 {
		return nil, fmt.Errorf("query %q: %w", query, apperrors.ErrInvalidQuery)
	}

	matches := ms.cat.SearchIndexes(q)

	switch scope {
	case ScopeAll:
		return ms.listFromRows(matches, page, pageSize), nil

	case ScopeLiked, ScopeDisliked:
		if userID == uuid.Nil {
			return nil, apperrors.ErrMissingUser
		}
		polarity := types.PolarityLiked
		if scope == ScopeDisliked {
			polarity = types.PolarityDisliked
		}
		prefs, err := ms.prefRepo.GetByUserIDAndPolarity(ctx, nil, userID, polarity)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s movies: %w", polarity, err)
		}
		ratedRows := make(map[int]bool, len(prefs))
		for _, p := range prefs {
			if r, ok := ms.cat.RowIndex(p.TMDBID); ok {
				ratedRows[r] = true
			}
		}
		var filtered []int
		for _, r := range matches {
			if ratedRows[r] {
				filtered = append(filtered, r)
			}
		}
		return ms.listFromRows(filtered, page, pageSize), nil

	case ScopeRecommended:
		if userID == uuid.Nil {
			return nil, apperrors.ErrMissingUser
		}
		ranked, err := ms.recSvc.RankedFor(ctx, userID)
		if err != nil {
			return nil, err
		}
		matchSet := make(map[int]bool, len(matches))
		for _, r := range matches {
			matchSet[r] = true
		}
		// Keep the engine's ranking order for matched rows.
		var filtered []recommender.ScoredRow
		for _, sr := range ranked {
			if matchSet[sr.Row] {
				filtered = append(filtered, sr)
			}
		}
		return ms.listFromScored(filtered, page, pageSize), nil

	default:
		return nil, fmt.Errorf("scope %q: %w", scope, apperrors.ErrInvalidScope)
	}
}

func (ms *movieService) listFromRows(rows []int, page, pageSize int) *types.MovieList {
	start, end, totalPages := recommender.Paginate(len(rows), page, pageSize)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	movies := make([]types.RankedMovie, 0, end-start)
	for _, r := range rows[start:end] {
		movies = append(movies, types.RankedMovie{Movie: ms.cat.Movies[r]})
	}
	return &types.MovieList{
		Movies:       movies,
		TotalResults: len(rows),
		TotalPages:   totalPages,
		Page:         page,
		PageSize:     pageSize,
	}
}

func (ms *movieService) listFromScored(rows []recommender.ScoredRow, page, pageSize int) *types.MovieList {
	start, end, totalPages := recommender.Paginate(len(rows), page, pageSize)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	movies := make([]types.RankedMovie, 0, end-start)
	for _, sr := range rows[start:end] {
		movies = append(movies, types.RankedMovie{Movie: ms.cat.Movies[sr.Row], Score: sr.Score})
	}
	return &types.MovieList{
		Movies:       movies,
		TotalResults: len(rows),
		TotalPages:   totalPages,
		Page:         page,
		PageSize:     pageSize,
	}
}
