package repository

import (
	"context"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
)

// CartStore defines the interface for cart persistence operations.
// Consumers define this interface, not the MongoDB implementation.
type CartStore interface {
	FindByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
	Upsert(ctx context.Context, cart *domain.Cart) error
	UpdateFields(ctx context.Context, ownerID string, fields map[string]interface{}) error
	RemoveItem(ctx context.Context, ownerID string, productID string) error
	PruneNullItems(ctx context.Context, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (*domain.Cart, error)
}
