package recommender

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/screenpick/screenpick-backend/internal/catalog"
	"github.com/screenpick/screenpick-backend/internal/logger"
	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
)

// FactorizationEngine is the collaborative-filtering alternative: it learns
// low-dimensional user and item embeddings from the like edges with a
// pairwise-ranking update and predicts a score per (user, movie) as the dot
// product of the embeddings.
//
// Unlike ContentEngine it must be retrained whenever new interactions arrive
// and cannot score a user the model has never seen. Retrains are serialized;
// readers always see either the previous complete model or the new one.
type FactorizationEngine struct {
	cat     *catalog.Catalog
	log     *logger.Logger
	factors int
	epochs  int
	lr      float64
	reg     float64
	seed    int64

	trainMu sync.Mutex

	mu       sync.RWMutex
	userVecs map[string][]float64
	itemVecs [][]float64
	trained  bool
}

func NewFactorizationEngine(cat *catalog.Catalog, baseLog *logger.Logger, factors, epochs int) *FactorizationEngine {
	if factors <= 0 {
		factors = 32
	}
	if epochs <= 0 {
		epochs = 20
	}
	return &FactorizationEngine{
		cat:     cat,
		log:     baseLog.With("engine", "FactorizationEngine"),
		factors: factors,
		epochs:  epochs,
		lr:      0.05,
		reg:     0.01,
		seed:    42,
	}
}

func (e *FactorizationEngine) Name() string {
	return "collaborative"
}

// Train rebuilds the embeddings from scratch out of the given like edges.
// At most one retrain runs at a time; the model is swapped in atomically once
// complete.
func (e *FactorizationEngine) Train(interactions []Interaction) (string, error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	positives := make(map[string]map[int]bool)
	for _, it := range interactions {
		row, ok := e.cat.RowIndex(it.TMDBID)
		if !ok {
			continue
		}
		set := positives[it.UserKey]
		if set == nil {
			set = make(map[int]bool)
			positives[it.UserKey] = set
		}
		set[row] = true
	}
	if len(positives) == 0 {
		return "", fmt.Errorf("no interactions to train on: %w", apperrors.ErrNoPreferenceData)
	}

	rng := rand.New(rand.NewSource(e.seed))
	scale := 1.0 / math.Sqrt(float64(e.factors))

	userVecs := make(map[string][]float64, len(positives))
	for user := range positives {
		userVecs[user] = randomVector(rng, e.factors, scale)
	}
	itemVecs := make([][]float64, e.cat.Len())
	for i := range itemVecs {
		itemVecs[i] = randomVector(rng, e.factors, scale)
	}

	// Pairwise-ranking SGD: for every observed (user, liked item) pair,
	// sample an unliked item and push the liked one above it.
	for epoch := 0; epoch < e.epochs; epoch++ {
		for user, set := range positives {
			uv := userVecs[user]
			for pos := range set {
				neg := sampleNegative(rng, e.cat.Len(), set)
				if neg < 0 {
					continue
				}
				pv, nv := itemVecs[pos], itemVecs[neg]
				margin := dot(uv, pv) - dot(uv, nv)
				g := 1.0 / (1.0 + math.Exp(margin))
				for k := 0; k < e.factors; k++ {
					du := g*(pv[k]-nv[k]) - e.reg*uv[k]
					dp := g*uv[k] - e.reg*pv[k]
					dn := -g*uv[k] - e.reg*nv[k]
					uv[k] += e.lr * du
					pv[k] += e.lr * dp
					nv[k] += e.lr * dn
				}
			}
		}
	}

	e.mu.Lock()
	e.userVecs = userVecs
	e.itemVecs = itemVecs
	e.trained = true
	e.mu.Unlock()

	e.log.Info("Model trained", "users", len(userVecs), "items", len(itemVecs), "factors", e.factors, "epochs", e.epochs)
	return fmt.Sprintf("model trained on %d users", len(userVecs)), nil
}

func (e *FactorizationEngine) Recommend(userKey string, likedIDs, dislikedIDs []int) ([]ScoredRow, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.trained {
		return nil, apperrors.ErrModelNotReady
	}
	uv, ok := e.userVecs[userKey]
	if !ok {
		return nil, apperrors.ErrNoPreferenceData
	}

	// Both liked and disliked movies are excluded, matching the
	// content-based engine.
	exclude := make(map[int]bool, len(likedIDs)+len(dislikedIDs))
	for _, id := range likedIDs {
		if r, rok := e.cat.RowIndex(id); rok {
			exclude[r] = true
		}
	}
	for _, id := range dislikedIDs {
		if r, rok := e.cat.RowIndex(id); rok {
			exclude[r] = true
		}
	}

	ranked := make([]ScoredRow, 0, e.cat.Len())
	for i := 0; i < e.cat.Len(); i++ {
		if exclude[i] {
			continue
		}
		ranked = append(ranked, ScoredRow{Row: i, Score: dot(uv, e.itemVecs[i])})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	return ranked, nil
}

func randomVector(rng *rand.Rand, n int, scale float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * scale
	}
	return v
}

func sampleNegative(rng *rand.Rand, total int, positives map[int]bool) int {
	if len(positives) >= total {
		return -1
	}
	for tries := 0; tries < 32; tries++ {
		candidate := rng.Intn(total)
		if !positives[candidate] {
			return candidate
		}
	}
	return -1
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
