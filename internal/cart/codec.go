package cart

import (
	"encoding/json"
	"fmt"
)

// EncodeItems serializes a cart for durable storage. Prices are written as
// decimal strings so a round trip is exact.
func EncodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// DecodeItems is the inverse of EncodeItems. It rejects payloads that break
// cart invariants instead of loading a corrupt cart.
func DecodeItems(data []byte) ([]LineItem, error) {
	if len(data) == 0 {
		return []LineItem{}, nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []LineItem{}
	}
	return items, nil
}

func validateItems(items []LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("decode cart: line item without productId")
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("decode cart: duplicate line for product %s", it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
		if it.Quantity < 1 {
			return fmt.Errorf("decode cart: product %s has quantity %d", it.ProductID, it.Quantity)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("decode cart: product %s has negative price", it.ProductID)
		}
	}
	return nil
}
