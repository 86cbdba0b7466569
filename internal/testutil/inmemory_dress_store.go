package testutil

import (
	"context"

	"github.com/velvena/velvena/internal/domain/dress"
	ierr "github.com/velvena/velvena/internal/errors"
)

// InMemoryDressStore implements dress.Repository
type InMemoryDressStore struct {
	*InMemoryStore[*dress.Dress]
}

func NewInMemoryDressStore() *InMemoryDressStore {
	return &InMemoryDressStore{
		InMemoryStore: NewInMemoryStore[*dress.Dress](),
	}
}

// CreateDress adds a dress to the store
func (s *InMemoryDressStore) CreateDress(ctx context.Context, d *dress.Dress) error {
	if d == nil {
		return ierr.NewError("dress cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.Create(ctx, d.ID, d)
}

func (s *InMemoryDressStore) Get(ctx context.Context, id string) (*dress.Dress, error) {
	d, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Dress %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}

func (s *InMemoryDressStore) List(ctx context.Context) ([]*dress.Dress, error) {
	return s.InMemoryStore.List(ctx, nil, nil, func(i, j *dress.Dress) bool {
		return i.ID < j.ID
	})
}
