package ports

import (
	"context"

	"world-rates-service/internal/domain/model"
)

// DocumentBackend stores one opaque document per key. Read returns
// (nil, nil) when the key has never been written.
type DocumentBackend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, doc []byte) error
}

type RateStore interface {
	Load(ctx context.Context) model.RateCache
	Save(ctx context.Context, cache model.RateCache) error
}

type CountryStore interface {
	Load(ctx context.Context) ([]model.Country, bool)
	Save(ctx context.Context, countries []model.Country) error
}
