package negotiation

import "strings"

// Item is the good a client brings to the shop.
// MarketValue is fixed once generated; ClientOffer moves during the haggle.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Effect      string  `json:"effect"`
	MarketValue float64 `json:"market_value"`
	ClientOffer float64 `json:"client_offer"`
}

var itemFields = []string{"name", "description", "effect", "market_value", "client_offer"}

// DealValue is the player's profit if the item sells at the current offer.
func (i Item) DealValue() float64 {
	return i.MarketValue - i.ClientOffer
}

// ParseItem decodes an item-generation completion.
func ParseItem(raw string) (Item, error) {
	var item Item
	if err := decodeStrict(raw, "item", itemFields, &item); err != nil {
		return Item{}, err
	}
	if strings.TrimSpace(item.Name) == "" {
		return Item{}, &ParseError{Schema: "item", Reason: "name is empty"}
	}
	return item, nil
}
