package core

import (
	"context"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/database"
)

type bookingService struct {
	store database.Store
}

// NewBookingService creates a BookingService backed by store.
func NewBookingService(store database.Store) BookingService {
	return &bookingService{store: store}
}

func (s *bookingService) CreateBooking(ctx context.Context, booking models.Document) (*models.InsertResult, error) {
	return s.store.Insert(ctx, models.BookingsCollection, booking)
}

func (s *bookingService) ListBookings(ctx context.Context) ([]models.Document, error) {
	return s.store.Find(ctx, models.BookingsCollection, 0)
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (models.Document, error) {
	return s.store.FindByID(ctx, models.BookingsCollection, id)
}

func (s *bookingService) UpdateBooking(ctx context.Context, id string, fields models.Document) (*models.UpdateResult, error) {
	return s.store.UpdateByID(ctx, models.BookingsCollection, id, fields)
}

func (s *bookingService) DeleteBooking(ctx context.Context, id string) (*models.DeleteResult, error) {
	return s.store.DeleteByID(ctx, models.BookingsCollection, id)
}
