package workshop

import "github.com/shopspring/decimal"

// DefaultCatalog is the cap type list a fresh workshop starts with.
var DefaultCatalog = []CatalogEntry{
	{Name: "Plane Cap", RatePerDozen: decimal.NewFromInt(60)},
	{Name: "Dabba Cap", RatePerDozen: decimal.NewFromInt(60)},
	{Name: "Net Cap", RatePerDozen: decimal.NewFromInt(78)},
	{Name: "Puma Cap", RatePerDozen: decimal.NewFromInt(72)},
}
