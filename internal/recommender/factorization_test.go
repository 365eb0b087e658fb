package recommender

import (
	"errors"
	"testing"

	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
)

func TestFactorizationEngineNotReady(t *testing.T) {
	engine := NewFactorizationEngine(testCatalog(t), testLogger(t), 8, 5)

	_, err := engine.Recommend("u1", []int{1}, nil)
	if !errors.Is(err, apperrors.ErrModelNotReady) {
		t.Fatalf("got %v, want ErrModelNotReady before first train", err)
	}
}

func TestFactorizationEngineTrainEmpty(t *testing.T) {
	engine := NewFactorizationEngine(testCatalog(t), testLogger(t), 8, 5)

	_, err := engine.Train(nil)
	if !errors.Is(err, apperrors.ErrNoPreferenceData) {
		t.Fatalf("got %v, want ErrNoPreferenceData for empty training set", err)
	}
}

func TestFactorizationEngineRecommend(t *testing.T) {
	cat := testCatalog(t)
	engine := NewFactorizationEngine(cat, testLogger(t), 8, 10)

	interactions := []Interaction{
		{UserKey: "u1", TMDBID: 1},
		{UserKey: "u1", TMDBID: 2},
		{UserKey: "u2", TMDBID: 3},
	}
	if _, err := engine.Train(interactions); err != nil {
		t.Fatalf("train: %v", err)
	}

	ranked, err := engine.Recommend("u1", []int{1, 2}, nil)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d rows, want 1 (catalog minus the two liked)", len(ranked))
	}
	if got := cat.Movies[ranked[0].Row].TMDBID; got != 3 {
		t.Fatalf("remaining recommendation id=%d, want 3", got)
	}

	// Dislikes are excluded too, same as the content engine.
	ranked, err = engine.Recommend("u2", []int{3}, []int{1})
	if err != nil {
		t.Fatalf("recommend with dislike: %v", err)
	}
	for _, sr := range ranked {
		id := cat.Movies[sr.Row].TMDBID
		if id == 3 || id == 1 {
			t.Fatalf("rated movie %d present in result", id)
		}
	}
}

func TestFactorizationEngineUnknownUser(t *testing.T) {
	engine := NewFactorizationEngine(testCatalog(t), testLogger(t), 8, 5)
	if _, err := engine.Train([]Interaction{{UserKey: "u1", TMDBID: 1}}); err != nil {
		t.Fatalf("train: %v", err)
	}

	_, err := engine.Recommend("stranger", []int{2}, nil)
	if !errors.Is(err, apperrors.ErrNoPreferenceData) {
		t.Fatalf("got %v, want ErrNoPreferenceData for a user the model never saw", err)
	}
}
