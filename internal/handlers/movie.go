package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/screenpick/screenpick-backend/internal/logger"
	apperrors "github.com/screenpick/screenpick-backend/internal/pkg/errors"
	"github.com/screenpick/screenpick-backend/internal/requestdata"
	"github.com/screenpick/screenpick-backend/internal/services"
)

type MovieHandler struct {
	log          *logger.Logger
	movieService services.MovieService
}

func NewMovieHandler(log *logger.Logger, movieService services.MovieService) *MovieHandler {
	return &MovieHandler{
		log:          log.With("handler", "MovieHandler"),
		movieService: movieService,
	}
}

func currentUserID(c *gin.Context) uuid.UUID {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}

func paging(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

func tmdbIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("tmdb_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", errors.New("tmdb_id must be an integer"))
		return 0, false
	}
	return id, true
}

// POST /api/movies/:tmdb_id/like
func (mh *MovieHandler) Like(c *gin.Context) {
	tmdbID, ok := tmdbIDParam(c)
	if !ok {
		return
	}
	msg, err := mh.movieService.Like(c.Request.Context(), currentUserID(c), tmdbID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// POST /api/movies/:tmdb_id/dislike
func (mh *MovieHandler) Dislike(c *gin.Context) {
	tmdbID, ok := tmdbIDParam(c)
	if !ok {
		return
	}
	msg, err := mh.movieService.Dislike(c.Request.Context(), currentUserID(c), tmdbID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// POST /api/movies/:tmdb_id/undislike
//
// Removing a dislike that does not exist is reported as an informational
// outcome, not a failure: the net state is already what the caller wanted.
func (mh *MovieHandler) Undislike(c *gin.Context) {
	tmdbID, ok := tmdbIDParam(c)
	if !ok {
		return
	}
	msg, err := mh.movieService.Undislike(c.Request.Context(), currentUserID(c), tmdbID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoOpFound) {
			RespondOK(c, gin.H{"message": err.Error()})
			return
		}
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

// GET /api/movies
func (mh *MovieHandler) ListAll(c *gin.Context) {
	page, pageSize := paging(c)
	list, err := mh.movieService.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}

// GET /api/movies/popular
func (mh *MovieHandler) ListPopular(c *gin.Context) {
	page, pageSize := paging(c)
	list, err := mh.movieService.ListPopular(c.Request.Context(), page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}

// GET /api/movies/liked
func (mh *MovieHandler) ListLiked(c *gin.Context) {
	page, pageSize := paging(c)
	list, err := mh.movieService.ListLiked(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}

// GET /api/movies/disliked
func (mh *MovieHandler) ListDisliked(c *gin.Context) {
	page, pageSize := paging(c)
	list, err := mh.movieService.ListDisliked(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}

// GET /api/movies/search?q=...&scope=all|liked|disliked|recommended
func (mh *MovieHandler) Search(c *gin.Context) {
	scope, err := services.ParseScope(c.Query("scope"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	page, pageSize := paging(c)
	list, err := mh.movieService.Search(c.Request.Context(), currentUserID(c), c.Query("q"), scope, page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}
