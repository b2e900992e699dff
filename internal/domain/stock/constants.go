package stock

const (
	StatusInStock = "In Stock"
	StatusLow     = "Low Stock"

	DefaultTrending = 3
)
