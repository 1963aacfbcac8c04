package domain

import "time"

// Cart is the persisted per-owner cart document. There is exactly one
// cart per owner; owner_id carries a unique index.
type Cart struct {
	ID              string     `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID         string     `bson:"owner_id" json:"owner_id"`
	Items           []CartItem `bson:"items" json:"items"`
	Subtotal        float64    `bson:"subtotal" json:"subtotal"`
	Tax             float64    `bson:"tax" json:"tax"`
	CartTotal       float64    `bson:"cart_total" json:"cart_total"`
	DiscountedTotal *float64   `bson:"discounted_total,omitempty" json:"discounted_total,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem is one line of a cart. UnitPrice is the catalog price at the
// time the item first entered the cart; merges never refresh it.
type CartItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Count     int     `bson:"count" json:"count"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
}

// FindItem returns the index of the item with the given product id, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
