package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.UserToken{}, &types.Preference{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestPreferenceRepoUpsertFlipsPolarity(t *testing.T) {
	db := newTestDB(t)
	repo := NewPreferenceRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	if _, err := repo.Upsert(ctx, nil, userID, 42, types.PolarityLiked); err != nil {
		t.Fatalf("upsert like: %v", err)
	}
	if _, err := repo.Upsert(ctx, nil, userID, 42, types.PolarityDisliked); err != nil {
		t.Fatalf("upsert dislike: %v", err)
	}

	prefs, err := repo.GetByUserID(ctx, nil, userID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(prefs) != 1 {
		t.Fatalf("got %d edges for (user, 42), want exactly 1", len(prefs))
	}
	if prefs[0].Polarity != types.PolarityDisliked {
		t.Fatalf("polarity=%s, want disliked after flip", prefs[0].Polarity)
	}

	// Flip back.
	if _, err := repo.Upsert(ctx, nil, userID, 42, types.PolarityLiked); err != nil {
		t.Fatalf("upsert like again: %v", err)
	}
	prefs, err = repo.GetByUserID(ctx, nil, userID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(prefs) != 1 || prefs[0].Polarity != types.PolarityLiked {
		t.Fatalf("got %v, want a single liked edge", prefs)
	}
}

func TestPreferenceRepoDeleteRowsAffected(t *testing.T) {
	db := newTestDB(t)
	repo := NewPreferenceRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()

	rows, err := repo.Delete(ctx, nil, userID, 42, types.PolarityDisliked)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows != 0 {
		t.Fatalf("deleted %d rows from empty table, want 0", rows)
	}

	if _, err := repo.Upsert(ctx, nil, userID, 42, types.PolarityDisliked); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows, err = repo.Delete(ctx, nil, userID, 42, types.PolarityDisliked)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows != 1 {
		t.Fatalf("deleted %d rows, want 1", rows)
	}

	// Deleting with the wrong polarity must not touch the edge.
	if _, err := repo.Upsert(ctx, nil, userID, 7, types.PolarityLiked); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	rows, err = repo.Delete(ctx, nil, userID, 7, types.PolarityDisliked)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows != 0 {
		t.Fatalf("deleted %d rows with mismatched polarity, want 0", rows)
	}
}

func TestPreferenceRepoPolarityFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewPreferenceRepo(db, newTestLogger(t))
	ctx := context.Background()
	userID := uuid.New()
	otherID := uuid.New()

	seeds := []struct {
		user     uuid.UUID
		tmdbID   int
		polarity types.Polarity
	}{
		{userID, 1, types.PolarityLiked},
		{userID, 2, types.PolarityLiked},
		{userID, 3, types.PolarityDisliked},
		{otherID, 4, types.PolarityLiked},
	}
	for _, s := range seeds {
		if _, err := repo.Upsert(ctx, nil, s.user, s.tmdbID, s.polarity); err != nil {
			t.Fatalf("upsert seed %v: %v", s, err)
		}
	}

	liked, err := repo.GetByUserIDAndPolarity(ctx, nil, userID, types.PolarityLiked)
	if err != nil {
		t.Fatalf("get liked: %v", err)
	}
	if len(liked) != 2 {
		t.Fatalf("got %d liked edges, want 2", len(liked))
	}
	for _, p := range liked {
		if p.Polarity != types.PolarityLiked || p.UserID != userID {
			t.Fatalf("unexpected edge %+v in liked set", p)
		}
	}

	disliked, err := repo.GetByUserIDAndPolarity(ctx, nil, userID, types.PolarityDisliked)
	if err != nil {
		t.Fatalf("get disliked: %v", err)
	}
	if len(disliked) != 1 || disliked[0].TMDBID != 3 {
		t.Fatalf("got %v, want the single disliked edge on movie 3", disliked)
	}

	all, err := repo.GetAll(ctx, nil)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d edges in total, want 4", len(all))
	}
}
