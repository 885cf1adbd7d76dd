package domain

import "time"

// Product is one purchasable entry in a catalog snapshot. UnitPrice is in
// cents. AvailableStock is advisory: the ledger warns when a line exceeds it
// but never rejects the quantity.
type Product struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	UnitPrice      int64  `json:"unit_price"`
	AvailableStock int    `json:"available_stock"`
}

// Catalog is a point-in-time snapshot of the purchasable products. The
// ledger resolves product references against exactly one snapshot per
// operation; it never fetches anything itself.
type Catalog struct {
	fetchedAt time.Time
	products  []Product
	byID      map[string]int
}

// NewCatalog builds a snapshot from the given products, preserving order.
// Duplicate product IDs keep the first occurrence.
func NewCatalog(products []Product, fetchedAt time.Time) *Catalog {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if _, ok := byID[p.ProductID]; !ok {
			byID[p.ProductID] = i
		}
	}
	return &Catalog{
		fetchedAt: fetchedAt,
		products:  products,
		byID:      byID,
	}
}

// Lookup returns the product with the given ID and whether it exists.
func (c *Catalog) Lookup(productID string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[productID]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns the snapshot's products in their original order.
func (c *Catalog) Products() []Product {
	return c.products
}

// FetchedAt returns when this snapshot was taken.
func (c *Catalog) FetchedAt() time.Time {
	return c.fetchedAt
}

// Len returns the number of products in the snapshot.
func (c *Catalog) Len() int {
	return len(c.products)
}
