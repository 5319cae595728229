package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
)

type Repository = collection.Repository[Entry]

// Service keeps derived income entries in step with orders and sales.
type Service struct {
	repo   Repository
	locker lock.Locker
	log    *zap.Logger
}

func NewService(repo Repository, locker lock.Locker, log *zap.Logger) *Service {
	return &Service{repo: repo, locker: locker, log: log}
}

// Upsert replaces the entry derived from src, creating it if missing. Any
// entry with the derived id is dropped from both buckets first.
func (s *Service) Upsert(ctx context.Context, src Source) (*Entry, error) {
	if src.ID == "" {
		return nil, apperr.Validation("ledger source id is required")
	}

	if !src.Kind.Valid() {
		return nil, apperr.Validation("unknown ledger source kind %q", src.Kind)
	}

	unlock, err := s.locker.Lock(ctx, collection.Ledger)
	if err != nil {
		return nil, fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock()

	entry := Derive(src)

	_, err = collection.Update(ctx, s.repo, func(entries []Entry) ([]Entry, error) {
		return append(without(entries, entry.ID), entry), nil
	})
	if err != nil {
		return nil, fmt.Errorf("upserting ledger entry %s: %w", entry.ID, err)
	}

	return &entry, nil
}

// Remove drops the entry derived from the given source. Unknown ids are a
// no-op.
func (s *Service) Remove(ctx context.Context, kind Kind, sourceID string) error {
	unlock, err := s.locker.Lock(ctx, collection.Ledger)
	if err != nil {
		return fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock()

	id := EntryID(kind, sourceID)

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	kept := without(snap.Items, id)
	if len(kept) == len(snap.Items) {
		return nil
	}

	if _, err := s.repo.Save(ctx, collection.Snapshot[Entry]{Items: kept, Revision: snap.Revision}); err != nil {
		return fmt.Errorf("removing ledger entry %s: %w", id, err)
	}

	return nil
}

func (s *Service) List(ctx context.Context) (Book, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return Book{}, fmt.Errorf("loading ledger: %w", err)
	}

	book := Book{Income: []Entry{}, Expenses: []Entry{}}

	for _, e := range snap.Items {
		if e.Type == TypeExpense {
			book.Expenses = append(book.Expenses, e)
			continue
		}

		book.Income = append(book.Income, e)
	}

	return book, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, sourceID string) (*Entry, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	id := EntryID(kind, sourceID)

	for i := range snap.Items {
		if snap.Items[i].ID == id {
			return &snap.Items[i], nil
		}
	}

	return nil, apperr.NotFound("ledger entry %s not found", id)
}

type ReconcileReport struct {
	Kind     Kind `json:"kind"`
	Removed  int  `json:"removed"`
	Upserted int  `json:"upserted"`
}

// Reconcile makes the entries of kind match sources exactly: entries without
// a source are removed and every source gets a freshly derived entry.
func (s *Service) Reconcile(ctx context.Context, kind Kind, sources []Source) (ReconcileReport, error) {
	report := ReconcileReport{Kind: kind}

	if !kind.Valid() {
		return report, apperr.Validation("unknown ledger source kind %q", kind)
	}

	unlock, err := s.locker.Lock(ctx, collection.Ledger)
	if err != nil {
		return report, fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock()

	active := make(map[string]Entry, len(sources))
	order := make([]string, 0, len(sources))

	for _, src := range sources {
		if src.Kind != kind {
			continue
		}

		e := Derive(src)
		if _, dup := active[e.ID]; !dup {
			order = append(order, e.ID)
		}

		active[e.ID] = e
	}

	_, err = collection.Update(ctx, s.repo, func(entries []Entry) ([]Entry, error) {
		kept := make([]Entry, 0, len(entries))

		for _, e := range entries {
			if !belongsTo(e, kind) {
				kept = append(kept, e)
				continue
			}

			if _, ok := active[e.ID]; !ok {
				report.Removed++
			}
		}

		for _, id := range order {
			kept = append(kept, active[id])
		}

		report.Upserted = len(order)

		return kept, nil
	})
	if err != nil {
		return ReconcileReport{Kind: kind}, fmt.Errorf("reconciling %s ledger entries: %w", kind, err)
	}

	s.log.Info("ledger reconciled",
		zap.String("kind", string(kind)),
		zap.Int("removed", report.Removed),
		zap.Int("upserted", report.Upserted),
	)

	return report, nil
}

// SourceProvider lists the live sources of one kind.
type SourceProvider interface {
	Sources(ctx context.Context) ([]Source, error)
}

// ReconcileAll reconciles every kind in providers, in kind order. It stops at
// the first failure and returns the reports gathered so far.
func (s *Service) ReconcileAll(ctx context.Context, providers map[Kind]SourceProvider) ([]ReconcileReport, error) {
	kinds := slices.Sorted(maps.Keys(providers))
	reports := make([]ReconcileReport, 0, len(kinds))

	for _, kind := range kinds {
		sources, err := providers[kind].Sources(ctx)
		if err != nil {
			return reports, fmt.Errorf("listing %s sources: %w", kind, err)
		}

		report, err := s.Reconcile(ctx, kind, sources)
		if err != nil {
			return reports, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func belongsTo(e Entry, kind Kind) bool {
	if e.SourceKind != "" {
		return e.SourceKind == kind
	}

	return e.Type != TypeExpense && strings.HasPrefix(e.ID, string(kind)+"-")
}

func without(entries []Entry, id string) []Entry {
	kept := make([]Entry, 0, len(entries))

	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}

	return kept
}
