package apikey

import "context"

type Repository interface {
	GetByKey(ctx context.Context, key string) (*APIKey, error)
}
