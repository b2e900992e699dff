package stock

type Item struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorderLevel"`
	OrderCount   int    `json:"orderCount"`
}

// Status is "In Stock" while quantity stays above the reorder level.
func (i Item) Status() string {
	if i.Quantity > i.ReorderLevel {
		return StatusInStock
	}
	return StatusLow
}

// Update carries optional field changes; nil fields are left alone.
type Update struct {
	Name         *string `json:"name,omitempty"`
	Quantity     *int    `json:"quantity,omitempty"`
	ReorderLevel *int    `json:"reorderLevel,omitempty"`
	OrderCount   *int    `json:"orderCount,omitempty"`
}

type State struct {
	Items []Item `json:"items"`
}
