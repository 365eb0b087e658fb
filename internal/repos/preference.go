package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/types"
)

// PreferenceRepo owns the (user, movie, polarity) edges. The unique index on
// (user_id, tmdb_id) means an upsert of one polarity replaces the other, which
// is how the at-most-one-polarity invariant is enforced.
type PreferenceRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tmdbID int, polarity types.Polarity) (*types.Preference, error)
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tmdbID int, polarity types.Polarity) (int64, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Preference, error)
	GetByUserIDAndPolarity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, polarity types.Polarity) ([]*types.Preference, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Preference, error)
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	repoLog := baseLog.With("repo", "PreferenceRepo")
	return &preferenceRepo{db: db, log: repoLog}
}

func (pr *preferenceRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tmdbID int, polarity types.Polarity) (*types.Preference, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	pref := &types.Preference{
		ID:       uuid.New(),
		UserID:   userID,
		TMDBID:   tmdbID,
		Polarity: polarity,
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tmdb_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"polarity": polarity, "updated_at": time.Now()}),
		}).
		Create(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

func (pr *preferenceRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tmdbID int, polarity types.Polarity) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	result := transaction.WithContext(ctx).
		Where("user_id = ? AND tmdb_id = ? AND polarity = ?", userID, tmdbID, polarity).
		Delete(&types.Preference{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (pr *preferenceRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Preference, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Preference
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *preferenceRepo) GetByUserIDAndPolarity(ctx context.Context, tx *gorm.DB, userID uuid.UUID, polarity types.Polarity) ([]*types.Preference, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Preference
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND polarity = ?", userID, polarity).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *preferenceRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Preference, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Preference
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
