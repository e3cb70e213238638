package core

import (
	"context"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/database"
)

type reviewService struct {
	store database.Store
}

// NewReviewService creates a ReviewService backed by store.
func NewReviewService(store database.Store) ReviewService {
	return &reviewService{store: store}
}

func (s *reviewService) CreateReview(ctx context.Context, review models.Document) (*models.InsertResult, error) {
	return s.store.Insert(ctx, models.ReviewsCollection, review)
}
