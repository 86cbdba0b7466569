package servicetype

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*ServiceType, error)
}
