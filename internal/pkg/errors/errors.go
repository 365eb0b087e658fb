package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMovieNotFound means the tmdb id is not in the loaded catalog.
	ErrMovieNotFound = errors.New("movie not found in catalog")
	// ErrNoPreferenceData means the user has no liked movies to build a profile from.
	ErrNoPreferenceData = errors.New("user has not liked any movies, like a movie first")
	// ErrMissingUser means a scoped query was made without a user id.
	ErrMissingUser = errors.New("user id required for this scope")
	// ErrInvalidQuery means the search term is too short.
	ErrInvalidQuery = errors.New("search query must be at least 2 characters")
	// ErrInvalidScope means the search scope is not a recognized value.
	ErrInvalidScope = errors.New("invalid search scope")
	// ErrModelNotReady means the collaborative model has not been trained yet.
	ErrModelNotReady = errors.New("recommendation model not trained yet")
	// ErrNoOpFound means a delete matched zero rows. Callers treat it as
	// informational, not fatal: the net state is already as desired.
	ErrNoOpFound = errors.New("no matching preference found")
)
