package workshop

import "github.com/shopspring/decimal"

// CatalogEntry is a cap type seeded into an empty workshop.
type CatalogEntry struct {
	Name         string
	RatePerDozen decimal.Decimal
}

type Dashboard struct {
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	ActiveWorkers int             `json:"activeWorkers"`
	LowStockItems int             `json:"lowStockItems"`
	StockUnits    int             `json:"stockUnits"`
	WageBill      decimal.Decimal `json:"wageBill"`
}

type Options struct {
	SeedDefaultCatalog bool
	// OnCommit, when set, observes the outcome of every commit.
	OnCommit func(err error)
}
