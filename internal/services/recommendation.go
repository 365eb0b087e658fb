package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/screenpick/screenpick-backend/internal/catalog"
	"github.com/screenpick/screenpick-backend/internal/clients/redis"
	"github.com/screenpick/screenpick-backend/internal/logger"
	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
	"github.com/screenpick/screenpick-backend/internal/recommender"
	"github.com/screenpick/screenpick-backend/internal/repos"
	"github.com/screenpick/screenpick-backend/internal/types"
)

type RecommendationService interface {
	Recommend(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error)
	RankedFor(ctx context.Context, userID uuid.UUID) ([]recommender.ScoredRow, error)
	Train(ctx context.Context) (string, error)
	InvalidateCache(ctx context.Context, userID uuid.UUID)
}

type recommendationService struct {
	db       *gorm.DB
	log      *logger.Logger
	cat      *catalog.Catalog
	engine   recommender.Engine
	prefRepo repos.PreferenceRepo
	cache    redis.RecCache
}

// NewRecommendationService wires the selected engine. cache may be nil, in
// which case every request recomputes the ranking.
func NewRecommendationService(
	db *gorm.DB,
	log *logger.Logger,
	cat *catalog.Catalog,
	engine recommender.Engine,
	prefRepo repos.PreferenceRepo,
	cache redis.RecCache,
) RecommendationService {
	serviceLog := log.With("service", "RecommendationService", "engine", engine.Name())
	return &recommendationService{
		db:       db,
		log:      serviceLog,
		cat:      cat,
		engine:   engine,
		prefRepo: prefRepo,
		cache:    cache,
	}
}

// RankedFor returns the full ranked, exclusion-filtered row list for a user.
func (rs *recommendationService) RankedFor(ctx context.Context, userID uuid.UUID) ([]recommender.ScoredRow, error) {
	prefs, err := rs.prefRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var likedIDs, dislikedIDs []int
	for _, p := range prefs {
		switch p.Polarity {
		case types.PolarityLiked:
			likedIDs = append(likedIDs, p.TMDBID)
		case types.PolarityDisliked:
			dislikedIDs = append(dislikedIDs, p.TMDBID)
		}
	}
	if len(likedIDs) == 0 {
		return nil, apperrors.ErrNoPreferenceData
	}

	if rs.cache != nil {
		if rows, ok := rs.cache.Get(ctx, userID); ok {
			return rows, nil
		}
	}

	rows, err := rs.engine.Recommend(userID.String(), likedIDs, dislikedIDs)
	if err != nil {
		return nil, err
	}

	if rs.cache != nil {
		rs.cache.Set(ctx, userID, rows)
	}
	return rows, nil
}

func (rs *recommendationService) Recommend(ctx context.Context, userID uuid.UUID, page, pageSize int) (*types.MovieList, error) {
	rows, err := rs.RankedFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end, totalPages := recommender.Paginate(len(rows), page, pageSize)
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	movies := make([]types.RankedMovie, 0, end-start)
	for _, row := range rows[start:end] {
		movies = append(movies, types.RankedMovie{
			Movie: rs.cat.Movies[row.Row],
			Score: row.Score,
		})
	}
	return &types.MovieList{
		Movies:       movies,
		TotalResults: len(rows),
		TotalPages:   totalPages,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// Train rebuilds the engine's model from every liked edge in the store. For
// the content-based engine this is a no-op.
func (rs *recommendationService) Train(ctx context.Context) (string, error) {
	prefs, err := rs.prefRepo.GetAll(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to load preferences for training: %w", err)
	}
	interactions := make([]recommender.Interaction, 0, len(prefs))
	for _, p := range prefs {
		if p.Polarity != types.PolarityLiked {
			continue
		}
		interactions = append(interactions, recommender.Interaction{
			UserKey: p.UserID.String(),
			TMDBID:  p.TMDBID,
		})
	}
	msg, err := rs.engine.Train(interactions)
	if err != nil {
		return "", err
	}
	// Every cached ranking was scored by the previous model; drop them all
	// so no user is served pre-retrain results until TTL.
	if rs.cache != nil {
		rs.cache.InvalidateAll(ctx)
	}
	return msg, nil
}

func (rs *recommendationService) InvalidateCache(ctx context.Context, userID uuid.UUID) {
	if rs.cache != nil {
		rs.cache.Invalidate(ctx, userID)
	}
}
