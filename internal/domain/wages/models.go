package wages

import "github.com/shopspring/decimal"

type CapType struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RatePerDozen decimal.Decimal `json:"ratePerDozen"`
}

// ProductionKey addresses one cell of the production table.
type ProductionKey struct {
	WorkerID  string
	CapTypeID string
}

type ProductionEntry struct {
	WorkerID  string `json:"workerId"`
	CapTypeID string `json:"capTypeId"`
	Units     int    `json:"units"`
}

type WageLine struct {
	CapTypeID    string          `json:"capTypeId"`
	CapTypeName  string          `json:"capTypeName"`
	Units        int             `json:"units"`
	Dozens       int             `json:"dozens"`
	LooseUnits   int             `json:"looseUnits"`
	RatePerDozen decimal.Decimal `json:"ratePerDozen"`
	Amount       decimal.Decimal `json:"amount"`
}

type WageSlip struct {
	WorkerID string          `json:"workerId"`
	Lines    []WageLine      `json:"lines"`
	Total    decimal.Decimal `json:"total"`
}

// State is the serialisable form of a ledger.
type State struct {
	CapTypes   []CapType         `json:"capTypes"`
	Workers    []string          `json:"workers"`
	Production []ProductionEntry `json:"production"`
}
