package core

import (
	"context"

	"github.com/example/parlour/internal/models"
)

// CatalogService defines the operations on salon services.
type CatalogService interface {
	CreateService(ctx context.Context, service models.Document) (*models.InsertResult, error)
	GetService(ctx context.Context, id string) (models.Document, error)
	DeleteService(ctx context.Context, id string) (*models.DeleteResult, error)
	// ListServices returns at most the configured number of services.
	ListServices(ctx context.Context) ([]models.Document, error)
	ListAllServices(ctx context.Context) ([]models.Document, error)
}

// BookingService defines the operations on bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, booking models.Document) (*models.InsertResult, error)
	ListBookings(ctx context.Context) ([]models.Document, error)
	GetBooking(ctx context.Context, id string) (models.Document, error)
	// UpdateBooking merges fields into the booking; other fields are kept.
	UpdateBooking(ctx context.Context, id string, fields models.Document) (*models.UpdateResult, error)
	DeleteBooking(ctx context.Context, id string) (*models.DeleteResult, error)
}

// ReviewService defines the operations on reviews. Reviews are create-only.
type ReviewService interface {
	CreateReview(ctx context.Context, review models.Document) (*models.InsertResult, error)
}

// UserService defines the operations on user profiles and roles.
type UserService interface {
	CreateUser(ctx context.Context, user models.Document) (*models.InsertResult, error)
	// UpsertUser writes the user keyed by its email field, creating it if absent.
	UpsertUser(ctx context.Context, user models.Document) (*models.UpdateResult, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	// MakeAdmin sets the target's role to admin if the requester is an admin.
	// It returns ErrAccessDenied otherwise.
	MakeAdmin(ctx context.Context, requesterEmail, targetEmail string) (*models.UpdateResult, error)
}
