package domain

// Product is the live catalog record. The cart never persists it; the
// read path substitutes it for the stored product reference.
type Product struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price"`
}

// Coupon is sourced from the coupon service and never persisted.
type Coupon struct {
	Name     string  `json:"name"`
	Discount float64 `json:"discount"`
}

// EnrichedItem pairs a stored cart line with its live catalog record.
type EnrichedItem struct {
	ProductID string  `json:"product_id"`
	Count     int     `json:"count"`
	UnitPrice float64 `json:"unit_price"`
	Product   Product `json:"product"`
}

// EnrichedCart is the read-path view of a cart with live product data.
type EnrichedCart struct {
	Cart
	Items []EnrichedItem `json:"items"`
}
