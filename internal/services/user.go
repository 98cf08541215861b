package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// UserService manages user records keyed by the auth provider subject.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// GetOrCreate resolves the subject to a user, creating the record on first
// contact. Auth middleware calls this on every authenticated request.
func (s *UserService) GetOrCreate(ctx context.Context, subject string) (*model.User, error) {
	u, err := s.store.Users().GetBySubject(ctx, subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	created, err := s.store.Users().Create(ctx, &model.User{Subject: subject})
	if err == nil {
		return created, nil
	}
	// Lost a create race; the other request's row wins.
	if u, lookupErr := s.store.Users().GetBySubject(ctx, subject); lookupErr == nil {
		return u, nil
	}
	return nil, err
}

func (s *UserService) Get(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

// Delete removes the user and all their data.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.store.Users().Delete(ctx, userID)
}
