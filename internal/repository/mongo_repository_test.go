package repository

import (
	"context"
	"testing"

	"github.com/MiulesiKulasekara/cart-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func setupTestDB(t *testing.T) (CartStore, func()) {
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	// Get connection string
	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	// Connect to MongoDB
	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	// Create store
	store := NewMongoStore(db)

	// Create indexes
	mongoS := store.(*mongoStore)
	err = mongoS.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return store, cleanup
}

func testCart(ownerID string) *domain.Cart {
	return &domain.Cart{
		OwnerID: ownerID,
		Items: []domain.CartItem{
			{ProductID: "P1", Count: 2, UnitPrice: 10.00},
			{ProductID: "P2", Count: 1, UnitPrice: 5.00},
		},
		Subtotal:  25.00,
		Tax:       0.75,
		CartTotal: 25.75,
	}
}

func TestFindByOwner_NotFound(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := store.FindByOwner(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestUpsert_CreatesAndUpdates(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	cart := testCart("owner123")
	require.NoError(t, store.Upsert(ctx, cart))

	found, err := store.FindByOwner(ctx, "owner123")
	require.NoError(t, err)
	assert.Equal(t, "owner123", found.OwnerID)
	assert.Len(t, found.Items, 2)
	assert.Equal(t, 25.75, found.CartTotal)
	assert.False(t, found.CreatedAt.IsZero())

	// Second upsert replaces items, keeps the document
	cart.Items = cart.Items[:1]
	cart.Subtotal = 20.00
	cart.Tax = 0.60
	cart.CartTotal = 20.60
	require.NoError(t, store.Upsert(ctx, cart))

	found, err = store.FindByOwner(ctx, "owner123")
	require.NoError(t, err)
	assert.Len(t, found.Items, 1)
	assert.Equal(t, 20.60, found.CartTotal)
}

func TestUpsert_KeepsDiscountedTotal(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testCart("owner123")))
	require.NoError(t, store.UpdateFields(ctx, "owner123", map[string]interface{}{
		"discounted_total": 23.18,
	}))

	// A later full upsert must not clobber the applied discount
	require.NoError(t, store.Upsert(ctx, testCart("owner123")))

	found, err := store.FindByOwner(ctx, "owner123")
	require.NoError(t, err)
	require.NotNil(t, found.DiscountedTotal)
	assert.Equal(t, 23.18, *found.DiscountedTotal)
}

func TestUpdateFields_MissingCart(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	err := store.UpdateFields(context.Background(), "nonexistent", map[string]interface{}{
		"discounted_total": 1.00,
	})
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRemoveItem_PullsMatchingLine(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testCart("owner123")))
	require.NoError(t, store.RemoveItem(ctx, "owner123", "P1"))

	found, err := store.FindByOwner(ctx, "owner123")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "P2", found.Items[0].ProductID)

	// Removing an absent product still matches the cart document
	require.NoError(t, store.RemoveItem(ctx, "owner123", "P9"))
}

func TestRemoveItem_MissingCart(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()

	err := store.RemoveItem(context.Background(), "nonexistent", "P1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestPruneNullItems(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// Insert a document with a null entry in items, as a buggy writer would
	collection := store.(*mongoStore).collection
	_, err := collection.InsertOne(ctx, bson.M{
		"owner_id": "owner123",
		"items": bson.A{
			bson.M{"product_id": "P1", "count": 1, "unit_price": 10.00},
			nil,
		},
	})
	require.NoError(t, err)

	require.NoError(t, store.PruneNullItems(ctx, "owner123"))

	found, err := store.FindByOwner(ctx, "owner123")
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "P1", found.Items[0].ProductID)
}

func TestDeleteByOwner_ReturnsRemovedCart(t *testing.T) {
	store, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testCart("owner123")))

	removed, err := store.DeleteByOwner(ctx, "owner123")
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Len(t, removed.Items, 2)

	_, err = store.DeleteByOwner(ctx, "owner123")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
