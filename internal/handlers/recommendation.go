package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/screenpick/screenpick-backend/internal/logger"
	"github.com/screenpick/screenpick-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

// GET /api/recommendations
func (rh *RecommendationHandler) Recommend(c *gin.Context) {
	page, pageSize := paging(c)
	list, err := rh.recSvc.Recommend(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, list)
}

// POST /api/train
func (rh *RecommendationHandler) Train(c *gin.Context) {
	msg, err := rh.recSvc.Train(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}
