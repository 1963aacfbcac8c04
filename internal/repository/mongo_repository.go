package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

type mongoStore struct {
	collection *mongo.Collection
}

func (m mongoStore) FindByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	return &cart, nil
}

func (m mongoStore) Upsert(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	// discounted_total is owned by UpdateFields; a full upsert must not
	// clobber a previously applied discount, so set fields explicitly.
	filter := bson.M{"owner_id": cart.OwnerID}
	update := bson.M{"$set": bson.M{
		"owner_id":   cart.OwnerID,
		"items":      cart.Items,
		"subtotal":   cart.Subtotal,
		"tax":        cart.Tax,
		"cart_total": cart.CartTotal,
		"created_at": cart.CreatedAt,
		"updated_at": cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m mongoStore) UpdateFields(ctx context.Context, ownerID string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	filter := bson.M{"owner_id": ownerID}
	update := bson.M{"$set": set}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update cart fields: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m mongoStore) RemoveItem(ctx context.Context, ownerID string, productID string) error {
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

// PruneNullItems strips null entries out of the items array. Upstream
// write bugs can leave them behind; reads self-heal before decoding.
func (m mongoStore) PruneNullItems(ctx context.Context, ownerID string) error {
	filter := bson.M{"owner_id": ownerID}
	update := bson.M{
		"$pull": bson.M{"items": nil},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to prune null items: %w", err)
	}

	return nil
}

func (m mongoStore) DeleteByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var removed domain.Cart

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOneAndDelete(ctx, filter).Decode(&removed)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to delete cart: %w", err)
	}

	return &removed, nil
}

func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func NewMongoStore(db *mongo.Database) CartStore {
	return &mongoStore{
		collection: db.Collection("carts"),
	}
}
