package workshop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/roster"
	"capworks/internal/domain/stock"
	"capworks/internal/domain/wages"
	"capworks/internal/storage"
)

// Service owns the workshop books and persists them as whole snapshots.
// Mutations run through Apply, which commits them or rolls them back.
type Service struct {
	Ledger    *wages.Ledger
	Roster    *roster.Book
	Customers *customers.Book
	Stock     *stock.Book

	store  storage.SnapshotStore
	logger *zap.Logger
	opts   Options
	now    func() time.Time

	applyMu  sync.Mutex
	commitMu sync.Mutex
	version  int64
}

func NewService(store storage.SnapshotStore, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Ledger:    wages.NewLedger(),
		Roster:    roster.NewBook(),
		Customers: customers.NewBook(),
		Stock:     stock.NewBook(),
		store:     store,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Load restores the latest snapshot. An empty store yields a fresh workshop,
// seeded with DefaultCatalog when enabled.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.store.Latest(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		if !s.opts.SeedDefaultCatalog {
			s.logger.Info("starting with empty workshop")
			return nil
		}
		for _, entry := range DefaultCatalog {
			if _, err := s.Ledger.AddCapType(entry.Name, entry.RatePerDozen); err != nil {
				return fmt.Errorf("seed cap type %s: %w", entry.Name, err)
			}
		}
		s.logger.Info("seeded default catalog", zap.Int("capTypes", len(DefaultCatalog)))
		return s.Commit(ctx)
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.restore(snap)
	s.version = snap.Version
	s.logger.Info("snapshot restored", zap.Int64("version", snap.Version), zap.Time("savedAt", snap.SavedAt))
	return nil
}

// Apply runs mutate and commits the result as one step. When mutate or the
// commit fails the books are put back as they were. A version conflict also
// reloads the latest stored snapshot so a retry applies on top of it.
func (s *Service) Apply(ctx context.Context, mutate func() error) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	checkpoint := s.capture()
	if err := mutate(); err != nil {
		s.restore(checkpoint)
		return err
	}
	err := s.Commit(ctx)
	if err == nil {
		return nil
	}
	s.restore(checkpoint)
	if errors.Is(err, storage.ErrVersionConflict) {
		if reloadErr := s.reload(ctx); reloadErr != nil {
			s.logger.Error("reload after version conflict failed", zap.Error(reloadErr))
		}
	}
	return err
}

func (s *Service) reload(ctx context.Context) error {
	snap, err := s.store.Latest(ctx)
	if err != nil {
		return err
	}
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	s.restore(snap)
	s.version = snap.Version
	s.logger.Warn("reloaded snapshot written elsewhere", zap.Int64("version", snap.Version))
	return nil
}

func (s *Service) capture() storage.Snapshot {
	return storage.Snapshot{
		Wages:     s.Ledger.State(),
		Roster:    s.Roster.State(),
		Customers: s.Customers.State(),
		Stock:     s.Stock.State(),
	}
}

func (s *Service) restore(snap storage.Snapshot) {
	s.Ledger.Restore(snap.Wages)
	s.Roster.Restore(snap.Roster)
	s.Customers.Restore(snap.Customers)
	s.Stock.Restore(snap.Stock)
}

// Commit saves the current state as the next snapshot version.
func (s *Service) Commit(ctx context.Context) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	snap := s.capture()
	snap.Version = s.version + 1
	snap.SavedAt = s.now().UTC()
	err := s.store.Save(ctx, snap)
	if s.opts.OnCommit != nil {
		s.opts.OnCommit(err)
	}
	if err != nil {
		s.logger.Error("snapshot commit failed", zap.Int64("version", snap.Version), zap.Error(err))
		return fmt.Errorf("commit snapshot: %w", err)
	}
	s.version = snap.Version
	s.logger.Debug("snapshot committed", zap.Int64("version", snap.Version))
	return nil
}

// Version is the last committed snapshot version.
func (s *Service) Version() int64 {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	return s.version
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Dashboard() Dashboard {
	orders, pending, received := s.Customers.Totals()
	bill := decimal.Zero
	for _, slip := range s.Ledger.WageSlips() {
		bill = bill.Add(slip.Total)
	}
	return Dashboard{
		TotalOrders:   orders,
		PendingOrders: pending,
		TotalRevenue:  received,
		ActiveWorkers: s.Roster.Count(),
		LowStockItems: len(s.Stock.LowStock()),
		StockUnits:    s.Stock.TotalQuantity(),
		WageBill:      bill,
	}
}
