package wages

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"capworks/internal/domain/validation"
)

// Ledger holds the cap type catalog, the wage roster and the production
// table. All methods are safe for concurrent use; mutations are serialised
// so that overwrites of the same cell cannot be lost.
type Ledger struct {
	mu         sync.Mutex
	capTypes   []CapType
	workers    []string
	workerSet  map[string]struct{}
	production map[ProductionKey]int
	newID      func() string
}

func NewLedger() *Ledger {
	return &Ledger{
		workerSet:  map[string]struct{}{},
		production: map[ProductionKey]int{},
		newID:      uuid.NewString,
	}
}

func (l *Ledger) AddCapType(name string, rate decimal.Decimal) (CapType, error) {
	name = strings.TrimSpace(name)
	var c validation.Collector
	c.Required("name", name)
	if rate.IsNegative() {
		c.Add("ratePerDozen")
	}
	if err := c.Err(); err != nil {
		return CapType{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	capType := CapType{ID: l.newID(), Name: name, RatePerDozen: rate}
	l.capTypes = append(l.capTypes, capType)
	return capType, nil
}

func (l *Ledger) UpdateRate(capTypeID string, rate decimal.Decimal) (CapType, error) {
	if rate.IsNegative() {
		return CapType{}, validation.New("ratePerDozen")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.capTypeIndex(capTypeID)
	if idx < 0 {
		return CapType{}, fmt.Errorf("%w: %s", ErrCapTypeNotFound, capTypeID)
	}
	l.capTypes[idx].RatePerDozen = rate
	return l.capTypes[idx], nil
}

// RemoveCapType drops the cap type from the catalog. Production recorded
// against it is kept but no longer priced.
func (l *Ledger) RemoveCapType(capTypeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.capTypeIndex(capTypeID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCapTypeNotFound, capTypeID)
	}
	l.capTypes = append(l.capTypes[:idx], l.capTypes[idx+1:]...)
	return nil
}

func (l *Ledger) CapTypes() []CapType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]CapType, len(l.capTypes))
	copy(out, l.capTypes)
	return out
}

func (l *Ledger) CapType(capTypeID string) (CapType, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.capTypeIndex(capTypeID)
	if idx < 0 {
		return CapType{}, false
	}
	return l.capTypes[idx], true
}

// AddWorker appends workerID to the roster. Surrounding whitespace is
// dropped; ids compare case-sensitively.
func (l *Ledger) AddWorker(workerID string) error {
	workerID = strings.TrimSpace(workerID)
	if workerID == "" {
		return validation.New("workerId")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.workerSet[workerID]; ok {
		return fmt.Errorf("%w: %s", ErrWorkerExists, workerID)
	}
	l.workerSet[workerID] = struct{}{}
	l.workers = append(l.workers, workerID)
	return nil
}

func (l *Ledger) Workers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.workers))
	copy(out, l.workers)
	return out
}

func (l *Ledger) HasWorker(workerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.workerSet[workerID]
	return ok
}

// RecordProduction overwrites the unit count for the pair. Negative counts
// are stored as zero.
func (l *Ledger) RecordProduction(workerID, capTypeID string, units int) error {
	var c validation.Collector
	c.Required("workerId", workerID)
	c.Required("capTypeId", capTypeID)
	if err := c.Err(); err != nil {
		return err
	}
	if units < 0 {
		units = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.production[ProductionKey{WorkerID: workerID, CapTypeID: capTypeID}] = units
	return nil
}

// RecordDozens is RecordProduction for a whole-dozen entry.
func (l *Ledger) RecordDozens(workerID, capTypeID string, dozens int) error {
	return l.RecordProduction(workerID, capTypeID, UnitsFromDozens(dozens))
}

func (l *Ledger) Units(workerID, capTypeID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.production[ProductionKey{WorkerID: workerID, CapTypeID: capTypeID}]
}

// Production lists every recorded cell for workerID, including cells whose
// cap type no longer exists.
func (l *Ledger) Production(workerID string) []ProductionEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []ProductionEntry
	for key, units := range l.production {
		if key.WorkerID != workerID {
			continue
		}
		out = append(out, ProductionEntry{WorkerID: key.WorkerID, CapTypeID: key.CapTypeID, Units: units})
	}
	sortEntries(out)
	return out
}

// ComputeWage prices the worker's production against the current catalog.
// Pairs whose cap type is unknown or deleted contribute nothing.
func (l *Ledger) ComputeWage(workerID string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for key, units := range l.production {
		if key.WorkerID != workerID {
			continue
		}
		idx := l.capTypeIndex(key.CapTypeID)
		if idx < 0 {
			continue
		}
		total = total.Add(PairAmount(units, l.capTypes[idx].RatePerDozen))
	}
	return total
}

// WageSlip breaks the wage down per cap type in catalog order.
func (l *Ledger) WageSlip(workerID string) WageSlip {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slipLocked(workerID)
}

// WageSlips returns a slip for every rostered worker in roster order.
func (l *Ledger) WageSlips() []WageSlip {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]WageSlip, 0, len(l.workers))
	for _, workerID := range l.workers {
		out = append(out, l.slipLocked(workerID))
	}
	return out
}

func (l *Ledger) slipLocked(workerID string) WageSlip {
	slip := WageSlip{WorkerID: workerID, Lines: []WageLine{}, Total: decimal.Zero}
	for _, capType := range l.capTypes {
		units, ok := l.production[ProductionKey{WorkerID: workerID, CapTypeID: capType.ID}]
		if !ok {
			continue
		}
		amount := PairAmount(units, capType.RatePerDozen)
		slip.Lines = append(slip.Lines, WageLine{
			CapTypeID:    capType.ID,
			CapTypeName:  capType.Name,
			Units:        units,
			Dozens:       DozensFromUnits(units),
			LooseUnits:   LooseUnits(units),
			RatePerDozen: capType.RatePerDozen,
			Amount:       amount,
		})
		slip.Total = slip.Total.Add(amount)
	}
	return slip
}

func (l *Ledger) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	state := State{
		CapTypes:   make([]CapType, len(l.capTypes)),
		Workers:    make([]string, len(l.workers)),
		Production: make([]ProductionEntry, 0, len(l.production)),
	}
	copy(state.CapTypes, l.capTypes)
	copy(state.Workers, l.workers)
	for key, units := range l.production {
		state.Production = append(state.Production, ProductionEntry{WorkerID: key.WorkerID, CapTypeID: key.CapTypeID, Units: units})
	}
	sortEntries(state.Production)
	return state
}

// Restore replaces the ledger contents with state. Duplicate ids keep their
// first occurrence and negative unit counts are clamped to zero.
func (l *Ledger) Restore(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.capTypes = l.capTypes[:0]
	seen := map[string]struct{}{}
	for _, capType := range state.CapTypes {
		if _, dup := seen[capType.ID]; dup || capType.ID == "" {
			continue
		}
		seen[capType.ID] = struct{}{}
		l.capTypes = append(l.capTypes, capType)
	}

	l.workers = l.workers[:0]
	l.workerSet = map[string]struct{}{}
	for _, workerID := range state.Workers {
		if _, dup := l.workerSet[workerID]; dup || workerID == "" {
			continue
		}
		l.workerSet[workerID] = struct{}{}
		l.workers = append(l.workers, workerID)
	}

	l.production = make(map[ProductionKey]int, len(state.Production))
	for _, entry := range state.Production {
		units := entry.Units
		if units < 0 {
			units = 0
		}
		l.production[ProductionKey{WorkerID: entry.WorkerID, CapTypeID: entry.CapTypeID}] = units
	}
}

func (l *Ledger) capTypeIndex(capTypeID string) int {
	for i, capType := range l.capTypes {
		if capType.ID == capTypeID {
			return i
		}
	}
	return -1
}
