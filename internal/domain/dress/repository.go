package dress

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Dress, error)
	List(ctx context.Context) ([]*Dress, error)
}
