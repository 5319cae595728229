package unit

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
)

type Repository = collection.Repository[Unit]

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Unit, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading units: %w", err)
	}

	return snap.Items, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]Unit, error) {
	return s.filter(ctx, func(u *Unit) bool { return u.ProductID == productID })
}

func (s *Service) ListByBatch(ctx context.Context, batchID string) ([]Unit, error) {
	return s.filter(ctx, func(u *Unit) bool { return u.BatchID == batchID })
}

func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Unit, error) {
	return s.filter(ctx, func(u *Unit) bool { return u.OrderID == orderID })
}

func (s *Service) filter(ctx context.Context, keep func(u *Unit) bool) ([]Unit, error) {
	units, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []Unit

	for i := range units {
		if keep(&units[i]) {
			out = append(out, units[i])
		}
	}

	return out, nil
}

func (s *Service) Get(ctx context.Context, barcode string) (*Unit, error) {
	units, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range units {
		if units[i].Barcode == barcode {
			return &units[i], nil
		}
	}

	return nil, apperr.NotFound("unit %s not found", barcode)
}

// Add appends a newly admitted unit. Barcodes are unique across the store.
func (s *Service) Add(ctx context.Context, u Unit) error {
	_, err := collection.Update(ctx, s.repo, func(units []Unit) ([]Unit, error) {
		for i := range units {
			if units[i].Barcode == u.Barcode {
				return nil, apperr.DuplicateOrInvalidCode(u.Barcode)
			}
		}

		return append(units, u), nil
	})
	if err != nil {
		return fmt.Errorf("adding unit %s: %w", u.Barcode, err)
	}

	return nil
}

// Swap moves a unit from one state to another if it is still in From.
type Swap struct {
	Barcode string
	From    State
	To      State
}

// CompareAndSwap applies every swap whose unit is still in its From state in
// a single write and returns the barcodes that were skipped.
func (s *Service) CompareAndSwap(ctx context.Context, swaps ...Swap) ([]string, error) {
	var skipped []string

	_, err := collection.Update(ctx, s.repo, func(units []Unit) ([]Unit, error) {
		skipped = skipped[:0]

		index := make(map[string]int, len(units))
		for i := range units {
			index[units[i].Barcode] = i
		}

		for _, sw := range swaps {
			if !sw.To.Valid() {
				return nil, apperr.Validation("unit %s: %s with order %q is not a valid state", sw.Barcode, sw.To.Status, sw.To.OrderID)
			}

			i, ok := index[sw.Barcode]
			if !ok || units[i].State() != sw.From {
				skipped = append(skipped, sw.Barcode)
				continue
			}

			units[i].apply(sw.To)
		}

		return units, nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating unit status: %w", err)
	}

	return skipped, nil
}

// SetStatus is a single-unit compare-and-write.
func (s *Service) SetStatus(ctx context.Context, barcode string, from, to State) (*Unit, error) {
	if _, err := s.Get(ctx, barcode); err != nil {
		return nil, err
	}

	skipped, err := s.CompareAndSwap(ctx, Swap{Barcode: barcode, From: from, To: to})
	if err != nil {
		return nil, err
	}

	if len(skipped) > 0 {
		return nil, &apperr.Error{
			Kind:    apperr.KindConflict,
			Message: fmt.Sprintf("unit %s is no longer %s", barcode, from.Status),
		}
	}

	return s.Get(ctx, barcode)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	units, err := s.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Total: len(units)}

	for i := range units {
		switch units[i].Status {
		case StatusAvailable:
			sum.Available++
		case StatusSold:
			sum.Sold++
		}
	}

	return sum, nil
}
