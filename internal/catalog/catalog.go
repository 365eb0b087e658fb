package catalog

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/types"
)

// Catalog is the immutable movie table plus the feature matrix aligned with it
// by row position. It is loaded once at startup and never mutated, so it is
// safe to share across requests without locking.
type Catalog struct {
	Movies   []types.Movie
	Features [][]float64
	Dim      int

	index map[int]int
}

type artifactMovie struct {
	types.Movie
	Features []float64 `json:"features"`
}

type artifact struct {
	Dim    int             `json:"dim"`
	Movies []artifactMovie `json:"movies"`
}

// Load reads the precomputed catalog artifact produced by the offline
// feature pipeline. Any inconsistency is an error: the process must not
// serve traffic over a partially loaded catalog.
func Load(path string, log *logger.Logger) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog artifact %s: %w", path, err)
	}

	var art artifact
	if err := json.Unmarshal(raw, &art); err != nil {
		return nil, fmt.Errorf("decode catalog artifact %s: %w", path, err)
	}

	movies := make([]types.Movie, 0, len(art.Movies))
	features := make([][]float64, 0, len(art.Movies))
	for _, m := range art.Movies {
		movies = append(movies, m.Movie)
		features = append(features, m.Features)
	}

	cat, err := New(movies, features, art.Dim)
	if err != nil {
		return nil, fmt.Errorf("catalog artifact %s: %w", path, err)
	}
	if log != nil {
		log.Info("Catalog loaded", "movies", len(cat.Movies), "dim", cat.Dim)
	}
	return cat, nil
}

// New builds a catalog from already-decoded rows, validating that the feature
// matrix is aligned and that every vector has the declared dimension.
func New(movies []types.Movie, features [][]float64, dim int) (*Catalog, error) {
	if len(movies) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	if len(movies) != len(features) {
		return nil, fmt.Errorf("catalog has %d movies but %d feature rows", len(movies), len(features))
	}
	if dim <= 0 {
		dim = len(features[0])
	}

	index := make(map[int]int, len(movies))
	for i, m := range movies {
		if len(features[i]) != dim {
			return nil, fmt.Errorf("movie %d (%q) has feature vector of length %d, want %d", m.TMDBID, m.Title, len(features[i]), dim)
		}
		if _, dup := index[m.TMDBID]; dup {
			return nil, fmt.Errorf("duplicate tmdb_id %d in catalog", m.TMDBID)
		}
		index[m.TMDBID] = i
	}

	return &Catalog{
		Movies:   movies,
		Features: features,
		Dim:      dim,
		index:    index,
	}, nil
}

func (c *Catalog) Len() int {
	return len(c.Movies)
}

// Fingerprint identifies this catalog build. Anything derived from row
// indexes (cached rankings in particular) must be keyed by it, so state
// computed against a different artifact is never read back.
func (c *Catalog) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:", c.Dim)
	for _, m := range c.Movies {
		fmt.Fprintf(h, "%d,", m.TMDBID)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// ByID returns the movie with the given tmdb id, if present.
func (c *Catalog) ByID(tmdbID int) (*types.Movie, bool) {
	i, ok := c.index[tmdbID]
	if !ok {
		return nil, false
	}
	return &c.Movies[i], true
}

// RowIndex returns the feature-matrix row for a tmdb id.
func (c *Catalog) RowIndex(tmdbID int) (int, bool) {
	i, ok := c.index[tmdbID]
	return i, ok
}

// Row returns the feature vector at a row position. The slice is shared and
// must not be mutated.
func (c *Catalog) Row(i int) []float64 {
	return c.Features[i]
}

// PopularOrder returns row indexes sorted by vote_count desc then
// vote_average desc, stable on ties so the catalog order breaks them.
func (c *Catalog) PopularOrder() []int {
	order := make([]int, len(c.Movies))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ma, mb := c.Movies[order[a]], c.Movies[order[b]]
		if ma.VoteCount != mb.VoteCount {
			return ma.VoteCount > mb.VoteCount
		}
		return ma.VoteAverage > mb.VoteAverage
	})
	return order
}

// SearchIndexes returns row indexes whose title or genres contain the query,
// case-insensitively, in catalog order.
func (c *Catalog) SearchIndexes(query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []int
	for i, m := range c.Movies {
		if strings.Contains(strings.ToLower(m.Title), q) {
			matches = append(matches, i)
			continue
		}
		for _, g := range m.Genres {
			if strings.Contains(strings.ToLower(g), q) {
				matches = append(matches, i)
				break
			}
		}
	}
	return matches
}
