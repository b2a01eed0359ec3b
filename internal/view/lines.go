// Package view renders the storefront's HTML pages and datastar fragments.
package view

import "fmt"

// UnpricedLine is a cart line shown without prices.
type UnpricedLine struct {
	ProductID int64
	Name      string
	Quantity  int64
	// Available is false once the product has left the catalog.
	Available bool
}

func productElementID(id int64) string {
	return fmt.Sprintf("product-%d", id)
}

func lineElementID(productID int64) string {
	return fmt.Sprintf("line-%d", productID)
}

func addToCartAction(productID int64) string {
	return fmt.Sprintf("$productId = %d; @post('/cart/items')", productID)
}

func removeFromCartAction(productID int64) string {
	return fmt.Sprintf("@delete('/cart/items/%d')", productID)
}
