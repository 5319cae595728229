// Package order places, edits and cancels orders and sales. Stock and defect
// records are committed first, the order record second and the ledger entry
// last; a ledger failure is logged and never undoes the order.
package order

import (
	"context"
	"fmt"
	"maps"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
	"github.com/MrJamesThe3rd/stockroom/internal/ledger"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/metrics"
)

//go:generate mockgen -source=service.go -destination=ledger_mock.go -package=order
type LedgerSync interface {
	Upsert(ctx context.Context, src ledger.Source) (*ledger.Entry, error)
	Remove(ctx context.Context, kind ledger.Kind, sourceID string) error
}

type Repository = collection.Repository[Order]

type Service struct {
	kind       Kind
	collection string
	repo       Repository
	allocator  *Allocator
	ledger     LedgerSync
	locker     lock.Locker
	metrics    *metrics.Recorder
	log        *zap.Logger
	now        func() time.Time
}

func NewService(
	kind Kind,
	repo Repository,
	allocator *Allocator,
	ledgerSync LedgerSync,
	locker lock.Locker,
	rec *metrics.Recorder,
	log *zap.Logger,
) *Service {
	name := collection.Orders
	if kind == KindSale {
		name = collection.Sales
	}

	return &Service{
		kind:       kind,
		collection: name,
		repo:       repo,
		allocator:  allocator,
		ledger:     ledgerSync,
		locker:     locker,
		metrics:    rec,
		log:        log.With(zap.String("kind", string(kind))),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Kind() Kind {
	return s.kind
}

// Create allocates stock for a new order and stores it.
func (s *Service) Create(ctx context.Context, draft Draft) (*Order, error) {
	o, err := s.create(ctx, draft)

	s.metrics.Allocation(string(s.kind), outcome(err))

	if err != nil {
		return nil, err
	}

	s.syncLedger(ctx, o)

	return o, nil
}

func (s *Service) create(ctx context.Context, draft Draft) (*Order, error) {
	items, err := ParseItems(draft.Items)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.collection, err)
	}

	id := draft.ID
	if id == "" {
		id = ident.New()
	}

	if find(snap.Items, id) >= 0 {
		return nil, apperr.Validation("%s %s already exists", s.kind, id)
	}

	alloc, err := s.allocator.Allocate(ctx, s.kind.Owner(id), items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := Order{
		ID:        id,
		Kind:      s.kind,
		Customer:  draft.Customer,
		Date:      draft.Date,
		Items:     alloc.Items,
		Totals:    draft.Totals,
		CreatedAt: now,
	}

	if o.Date.IsZero() {
		o.Date = now
	}

	if _, err := s.repo.Save(ctx, collection.Snapshot[Order]{Items: append(snap.Items, o), Revision: snap.Revision}); err != nil {
		s.undo(ctx, id, alloc)
		return nil, fmt.Errorf("saving %s %s: %w", s.kind, id, err)
	}

	s.log.Info("order created",
		zap.String("order_id", id),
		zap.Int("lines", len(o.Items)),
		zap.Strings("barcodes", o.Barcodes()),
	)

	return &o, nil
}

// Update merges patch into the stored order and moves its allocation to the
// new lines. Lines that did not change keep their barcodes.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Order, error) {
	o, err := s.update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.syncLedger(ctx, o)

	return o, nil
}

func (s *Service) update(ctx context.Context, id string, patch Patch) (*Order, error) {
	var next []Item

	if patch.Items != nil {
		var err error
		if next, err = ParseItems(patch.Items); err != nil {
			return nil, err
		}
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.collection, err)
	}

	idx := find(snap.Items, id)
	if idx < 0 {
		return nil, apperr.NotFound("%s %s not found", s.kind, id)
	}

	o := snap.Items[idx]

	var alloc *Allocation

	if next != nil {
		alloc, err = s.allocator.Reconcile(ctx, s.kind.Owner(id), cloneItems(o.Items), next)
		if err != nil {
			s.metrics.Allocation(string(s.kind), outcome(err))
			return nil, err
		}

		s.metrics.Allocation(string(s.kind), metrics.OutcomeOK)
		s.metrics.Released(string(s.kind), alloc.Released)

		o.Items = alloc.Items
	}

	if patch.Customer != nil {
		o.Customer = *patch.Customer
	}

	if patch.Date != nil {
		o.Date = *patch.Date
	}

	if len(patch.Totals) > 0 {
		merged := maps.Clone(o.Totals)
		if merged == nil {
			merged = make(map[string]any, len(patch.Totals))
		}

		maps.Copy(merged, patch.Totals)
		o.Totals = merged
	}

	o.UpdatedAt = new(s.now())
	snap.Items[idx] = o

	if _, err := s.repo.Save(ctx, snap); err != nil {
		s.undo(ctx, id, alloc)
		return nil, fmt.Errorf("saving %s %s: %w", s.kind, id, err)
	}

	s.log.Info("order updated", zap.String("order_id", id), zap.Bool("items_changed", next != nil))

	return &o, nil
}

// Delete cancels an order: its units return to stock, its defect records
// return to pending and the order and its ledger entry are removed.
func (s *Service) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := s.delete(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Remove(ctx, ledger.Kind(s.kind), id); err != nil {
		s.metrics.LedgerFailure(string(s.kind), "remove")
		s.log.Error("failed to remove ledger entry", zap.String("order_id", id), zap.Error(err))
	}

	return o, nil
}

func (s *Service) delete(ctx context.Context, id string) (*Order, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.collection, err)
	}

	idx := find(snap.Items, id)
	if idx < 0 {
		return nil, apperr.NotFound("%s %s not found", s.kind, id)
	}

	o := snap.Items[idx]

	alloc, err := s.allocator.Deallocate(ctx, s.kind.Owner(id), o.Items)
	if err != nil {
		return nil, err
	}

	s.metrics.Released(string(s.kind), alloc.Released)

	kept := make([]Order, 0, len(snap.Items)-1)
	kept = append(kept, snap.Items[:idx]...)
	kept = append(kept, snap.Items[idx+1:]...)

	if _, err := s.repo.Save(ctx, collection.Snapshot[Order]{Items: kept, Revision: snap.Revision}); err != nil {
		s.undo(ctx, id, alloc)
		return nil, fmt.Errorf("removing %s %s: %w", s.kind, id, err)
	}

	s.log.Info("order deleted", zap.String("order_id", id), zap.Int("released", alloc.Released))

	return &o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if i := find(orders, id); i >= 0 {
		return &orders[i], nil
	}

	return nil, apperr.NotFound("%s %s not found", s.kind, id)
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.collection, err)
	}

	return snap.Items, nil
}

// Sources returns the ledger view of every stored order.
func (s *Service) Sources(ctx context.Context) ([]ledger.Source, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	sources := make([]ledger.Source, 0, len(orders))
	for i := range orders {
		sources = append(sources, orders[i].Source())
	}

	return sources, nil
}

func (s *Service) lock(ctx context.Context) (func(), error) {
	unlock, err := s.locker.Lock(ctx, collection.Units, collection.Defects, s.collection)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", s.collection, err)
	}

	return unlock, nil
}

// syncLedger re-derives the order's ledger entry. Failures are reported and
// left for a later reconcile.
func (s *Service) syncLedger(ctx context.Context, o *Order) {
	if _, err := s.ledger.Upsert(ctx, o.Source()); err != nil {
		s.metrics.LedgerFailure(string(s.kind), "upsert")
		s.log.Error("failed to sync ledger entry", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (s *Service) undo(ctx context.Context, id string, alloc *Allocation) {
	if err := s.allocator.Undo(ctx, alloc); err != nil {
		s.log.Error("failed to undo allocation", zap.String("order_id", id), zap.Error(err))
	}
}

func find(orders []Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}

	return -1
}

func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}

	return string(apperr.KindOf(err))
}
