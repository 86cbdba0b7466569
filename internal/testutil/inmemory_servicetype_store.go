package testutil

import (
	"context"

	"github.com/velvena/velvena/internal/domain/servicetype"
	ierr "github.com/velvena/velvena/internal/errors"
)

// InMemoryServiceTypeStore implements servicetype.Repository
type InMemoryServiceTypeStore struct {
	*InMemoryStore[*servicetype.ServiceType]
}

func NewInMemoryServiceTypeStore() *InMemoryServiceTypeStore {
	return &InMemoryServiceTypeStore{
		InMemoryStore: NewInMemoryStore[*servicetype.ServiceType](),
	}
}

// CreateServiceType adds a service type to the store
func (s *InMemoryServiceTypeStore) CreateServiceType(ctx context.Context, st *servicetype.ServiceType) error {
	if st == nil {
		return ierr.NewError("service type cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.Create(ctx, st.ID, st)
}

func (s *InMemoryServiceTypeStore) Get(ctx context.Context, id string) (*servicetype.ServiceType, error) {
	st, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Service type %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return st, nil
}
