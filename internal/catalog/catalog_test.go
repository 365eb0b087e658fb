package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/screenpick/screenpick-backend/internal/types"
)

func TestLoad(t *testing.T) {
	artifact := `{
		"dim": 2,
		"movies": [
			{"tmdb_id": 603, "title": "The Matrix", "genres": ["action", "sci-fi"], "vote_count": 20000, "vote_average": 8.2, "features": [1.0, 0.0]},
			{"tmdb_id": 604, "title": "Matrix Reloaded", "genres": ["action", "sci-fi"], "vote_count": 15000, "vote_average": 7.0, "features": [0.9, 0.1]},
			{"tmdb_id": 11036, "title": "The Notebook", "genres": ["romance"], "vote_count": 9000, "vote_average": 7.9, "features": [0.0, 1.0]}
		]
	}`
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	cat, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 3 || cat.Dim != 2 {
		t.Fatalf("got %d movies dim %d, want 3 movies dim 2", cat.Len(), cat.Dim)
	}
	movie, ok := cat.ByID(603)
	if !ok || movie.Title != "The Matrix" {
		t.Fatalf("ByID(603)=%v, %v", movie, ok)
	}
	if _, ok := cat.ByID(1); ok {
		t.Fatal("ByID(1) found a movie that is not in the catalog")
	}
}

func TestLoadRejectsBadArtifacts(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{name: "missing_file", payload: ""},
		{name: "not_json", payload: "not json at all"},
		{name: "empty_catalog", payload: `{"dim": 2, "movies": []}`},
		{
			name:    "misaligned_vector",
			payload: `{"dim": 2, "movies": [{"tmdb_id": 1, "title": "A", "features": [1.0]}]}`,
		},
		{
			name:    "duplicate_id",
			payload: `{"dim": 1, "movies": [{"tmdb_id": 1, "title": "A", "features": [1.0]}, {"tmdb_id": 1, "title": "B", "features": [0.5]}]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.json")
			if tc.payload != "" {
				if err := os.WriteFile(path, []byte(tc.payload), 0o644); err != nil {
					t.Fatalf("write artifact: %v", err)
				}
			}
			if _, err := Load(path, nil); err == nil {
				t.Fatal("load succeeded on a bad artifact")
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	movies := []types.Movie{
		{TMDBID: 1, Title: "A"},
		{TMDBID: 2, Title: "B"},
	}
	features := [][]float64{{1}, {1}}
	cat, err := New(movies, features, 1)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	same, err := New(movies, features, 1)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if cat.Fingerprint() != same.Fingerprint() {
		t.Fatal("identical catalogs produced different fingerprints")
	}

	other, err := New(movies[:1], features[:1], 1)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if cat.Fingerprint() == other.Fingerprint() {
		t.Fatal("different catalogs produced the same fingerprint")
	}
}

func TestSearchIndexes(t *testing.T) {
	movies := []types.Movie{
		{TMDBID: 603, Title: "The Matrix", Genres: []string{"action"}},
		{TMDBID: 604, Title: "Matrix Reloaded", Genres: []string{"action"}},
		{TMDBID: 11036, Title: "The Notebook", Genres: []string{"romance"}},
	}
	features := [][]float64{{1}, {1}, {1}}
	cat, err := New(movies, features, 1)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	cases := []struct {
		name  string
		query string
		want  []int
	}{
		{name: "case_insensitive_title", query: "matrix", want: []int{0, 1}},
		{name: "mixed_case", query: "MaTrIx", want: []int{0, 1}},
		{name: "genre_match", query: "romance", want: []int{2}},
		{name: "no_match", query: "western", want: nil},
		{name: "empty", query: "  ", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cat.SearchIndexes(tc.query)
			if len(got) != len(tc.want) {
				t.Fatalf("SearchIndexes(%q)=%v, want %v", tc.query, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("SearchIndexes(%q)=%v, want %v", tc.query, got, tc.want)
				}
			}
		})
	}
}

func TestPopularOrder(t *testing.T) {
	movies := []types.Movie{
		{TMDBID: 1, Title: "A", VoteCount: 100, VoteAverage: 6.0},
		{TMDBID: 2, Title: "B", VoteCount: 300, VoteAverage: 7.0},
		{TMDBID: 3, Title: "C", VoteCount: 300, VoteAverage: 8.0},
		{TMDBID: 4, Title: "D", VoteCount: 300, VoteAverage: 8.0},
	}
	features := [][]float64{{1}, {1}, {1}, {1}}
	cat, err := New(movies, features, 1)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}

	// Vote count first, then vote average, catalog order on full ties.
	want := []int{2, 3, 1, 0}
	got := cat.PopularOrder()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PopularOrder()=%v, want %v", got, want)
		}
	}
}
