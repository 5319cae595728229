package defect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
)

type Repository = collection.Repository[Record]

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type RegisterParams struct {
	ProductID   string
	Barcode     string
	Description string
}

// Register records a newly identified defective item as pending.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*Record, error) {
	if strings.TrimSpace(params.ProductID) == "" {
		return nil, apperr.Validation("product id is required")
	}

	now := time.Now().UTC()
	rec := Record{
		ID:          ident.New(),
		ProductID:   params.ProductID,
		Barcode:     params.Barcode,
		Description: params.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := collection.Update(ctx, s.repo, func(recs []Record) ([]Record, error) {
		if rec.Barcode == "" {
			return append(recs, rec), nil
		}

		for i := range recs {
			if recs[i].Barcode == rec.Barcode {
				return nil, apperr.Validation("barcode %s is already registered as defective", rec.Barcode)
			}
		}

		return append(recs, rec), nil
	})
	if err != nil {
		return nil, fmt.Errorf("registering defect: %w", err)
	}

	return &rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	recs, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	for i := range recs {
		if recs[i].ID == id {
			return &recs[i], nil
		}
	}

	return nil, apperr.NotFound("defect %s not found", id)
}

// List returns every record, or only those in status when it is set.
func (s *Service) List(ctx context.Context, status *Status) ([]Record, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading defects: %w", err)
	}

	if status == nil {
		return snap.Items, nil
	}

	var out []Record

	for _, r := range snap.Items {
		if r.Status == *status {
			out = append(out, r)
		}
	}

	return out, nil
}
