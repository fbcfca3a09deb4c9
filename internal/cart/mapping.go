package cart

import "github.com/angelmondragon/storefront-backend/pkg/db/models"

// FromModel maps a persisted cart row (with its product graph preloaded) to a LineItem.
func FromModel(item models.CartItem) LineItem {
	line := LineItem{ID: item.ID, Quantity: item.Quantity}
	if p := item.Product; p != nil {
		line.Product = ProductSnapshot{
			ID:     p.ID,
			Name:   p.Name,
			Price:  p.Price,
			Stock:  p.Stock,
			Images: append([]string{}, p.Images...),
		}
		line.Seller = SellerRef{ID: p.SellerID}
		if p.Seller != nil {
			line.Seller.Name = p.Seller.Name
		}
	}
	return line
}

// FromModels maps rows in order.
func FromModels(items []models.CartItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromModel(item))
	}
	return out
}
