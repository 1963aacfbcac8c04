package cache

import (
	"context"
	"errors"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Set(ctx context.Context, ownerID string, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
