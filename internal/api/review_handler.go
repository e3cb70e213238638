package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/core"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviews core.ReviewService
	logger  *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews core.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// CreateReview handles POST /reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	doc, ok := bindDocument(c)
	if !ok {
		return
	}
	res, err := h.reviews.CreateReview(c.Request.Context(), doc)
	if err != nil {
		storeFailure(c, h.logger, "Failed to create review", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
