// Package batch plans deliveries and admits their units into stock one
// scanned barcode at a time.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/batch/csvplan"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/validate"
)

type Repository = collection.Repository[Batch]

type Service struct {
	repo   Repository
	locker lock.Locker
	parser *csvplan.Parser
}

func NewService(repo Repository, locker lock.Locker) *Service {
	return &Service{repo: repo, locker: locker, parser: csvplan.NewParser()}
}

// MaxQuantity is the largest batch that can be planned.
const MaxQuantity = 9999

type CreateParams struct {
	BaseCode     string          `json:"baseCode" validate:"required"`
	ProductID    string          `json:"productId" validate:"required"`
	CostPrice    decimal.Decimal `json:"costPrice" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	Quantity     int             `json:"quantity" validate:"min=1,max=9999"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Batch, error) {
	created, err := s.create(ctx, []CreateParams{params})
	if err != nil {
		return nil, err
	}

	return &created[0], nil
}

// ImportPlan creates one batch per row of a CSV plan. Either every row is
// created or none is.
func (s *Service) ImportPlan(ctx context.Context, r io.Reader) ([]Batch, error) {
	rows, err := s.parser.Parse(r)
	if err != nil {
		return nil, apperr.Validation("batch plan: %v", err)
	}

	if len(rows) == 0 {
		return nil, apperr.Validation("batch plan has no rows")
	}

	params := make([]CreateParams, 0, len(rows))
	for _, row := range rows {
		params = append(params, CreateParams{
			BaseCode:     row.BaseCode,
			ProductID:    row.ProductID,
			CostPrice:    row.CostPrice,
			SellingPrice: row.SellingPrice,
			Quantity:     row.Quantity,
		})
	}

	return s.create(ctx, params)
}

func (s *Service) create(ctx context.Context, params []CreateParams) ([]Batch, error) {
	now := time.Now().UTC()
	batches := make([]Batch, 0, len(params))
	seen := make(map[string]bool, len(params))

	for _, p := range params {
		p.BaseCode = strings.TrimSpace(p.BaseCode)

		if err := validate.Struct(p); err != nil {
			return nil, err
		}

		if seen[p.BaseCode] {
			return nil, apperr.Validation("base code %s appears more than once", p.BaseCode)
		}

		seen[p.BaseCode] = true

		batches = append(batches, Batch{
			ID:           ident.New(),
			BaseCode:     p.BaseCode,
			ProductID:    p.ProductID,
			CostPrice:    p.CostPrice,
			SellingPrice: p.SellingPrice,
			Quantity:     p.Quantity,
			Admitted:     AdmittedNo,
			CreatedAt:    now,
		})
	}

	unlock, err := s.locker.Lock(ctx, collection.Batches)
	if err != nil {
		return nil, fmt.Errorf("locking batches: %w", err)
	}
	defer unlock()

	_, err = collection.Update(ctx, s.repo, func(existing []Batch) ([]Batch, error) {
		for _, b := range existing {
			if seen[b.BaseCode] {
				return nil, apperr.Validation("base code %s is already used by batch %s", b.BaseCode, b.ID)
			}
		}

		return append(existing, batches...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating batches: %w", err)
	}

	return batches, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Batch, error) {
	batches, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range batches {
		if batches[i].ID == id {
			return &batches[i], nil
		}
	}

	return nil, apperr.NotFound("batch %s not found", id)
}

func (s *Service) List(ctx context.Context) ([]Batch, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading batches: %w", err)
	}

	return snap.Items, nil
}
