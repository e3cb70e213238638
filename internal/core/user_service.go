package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/parlour/internal/models"
	"github.com/example/parlour/pkg/database"
)

// ErrAccessDenied is returned by MakeAdmin when the requester is missing or
// is not an admin.
var ErrAccessDenied = errors.New("you do not have access to make admin")

const (
	emailField = "email"
	roleField  = "role"
)

type userService struct {
	store  database.Store
	logger *zap.Logger
}

// NewUserService creates a UserService backed by store.
func NewUserService(store database.Store, logger *zap.Logger) UserService {
	return &userService{store: store, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, user models.Document) (*models.InsertResult, error) {
	return s.store.Insert(ctx, models.UsersCollection, user)
}

// UpsertUser matches on the document's email field as given. On Mongo and the
// memory store a document without one matches users that have no email;
// Firestore only matches users whose email is an explicit null.
func (s *userService) UpsertUser(ctx context.Context, user models.Document) (*models.UpdateResult, error) {
	filter := database.Filter{emailField: user[emailField]}
	return s.store.UpdateOne(ctx, models.UsersCollection, filter, user, true)
}

func (s *userService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.store.FindOne(ctx, models.UsersCollection, database.Filter{emailField: email})
	if err != nil {
		return false, err
	}
	return models.IsAdmin(user), nil
}

func (s *userService) MakeAdmin(ctx context.Context, requesterEmail, targetEmail string) (*models.UpdateResult, error) {
	if requesterEmail == "" {
		return nil, ErrAccessDenied
	}
	admin, err := s.IsAdmin(ctx, requesterEmail)
	if err != nil {
		return nil, fmt.Errorf("look up requester: %w", err)
	}
	if !admin {
		s.logger.Warn("Admin promotion denied", zap.String("requester", requesterEmail), zap.String("target", targetEmail))
		return nil, ErrAccessDenied
	}

	res, err := s.store.UpdateOne(ctx, models.UsersCollection,
		database.Filter{emailField: targetEmail},
		models.Document{roleField: models.RoleAdmin},
		false,
	)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User promoted to admin",
		zap.String("requester", requesterEmail),
		zap.String("target", targetEmail),
		zap.Int64("matched", res.MatchedCount),
	)
	return res, nil
}
