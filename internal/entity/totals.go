package domain

// Totals are always derived from catalog + cart. Total equals Subtotal;
// no taxes or fees are modeled.
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// LineItem is one selected product with its quantity.
type LineItem struct {
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	LineTotal int64   `json:"line_total"`
}
