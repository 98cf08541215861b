package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/JiwonJeong414/TechTive-Backend/internal/model"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// QuoteService serves motivational quotes for the app's home screen.
type QuoteService struct {
	store store.Store
}

func NewQuoteService(s store.Store) *QuoteService {
	return &QuoteService{store: s}
}

func (s *QuoteService) Random(ctx context.Context) (*model.Quote, error) {
	return s.store.Quotes().Random(ctx)
}

func (s *QuoteService) Add(ctx context.Context, content, author string) (*model.Quote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.Wrap(model.ErrValidation, "quote content must not be empty")
	}
	if strings.TrimSpace(author) == "" {
		author = "Unknown"
	}
	return s.store.Quotes().Add(ctx, &model.Quote{Content: content, Author: author})
}
