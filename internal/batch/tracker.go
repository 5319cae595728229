package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/lock"
	"github.com/MrJamesThe3rd/stockroom/internal/metrics"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

// Locator names the place newly admitted units are shelved.
type Locator interface {
	Resolve(ctx context.Context) string
}

// Tracker admits scanned barcodes of a batch into the unit store.
type Tracker struct {
	batches *Service
	units   *unit.Service
	locator Locator
	locker  lock.Locker
	metrics *metrics.Recorder
	log     *zap.Logger
	now     func() time.Time
}

func NewTracker(
	batches *Service,
	units *unit.Service,
	locator Locator,
	locker lock.Locker,
	rec *metrics.Recorder,
	log *zap.Logger,
) *Tracker {
	return &Tracker{
		batches: batches,
		units:   units,
		locator: locator,
		locker:  locker,
		metrics: rec,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AdmitResult is the unit created by an admission and the batch progress
// after it.
type AdmitResult struct {
	Unit     unit.Unit `json:"unit"`
	Progress Progress  `json:"progress"`
}

// ExpectedBarcodes returns every code of the batch, admitted or not.
func (t *Tracker) ExpectedBarcodes(ctx context.Context, batchID string) ([]string, error) {
	b, err := t.batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return b.ExpectedBarcodes(), nil
}

func (t *Tracker) Progress(ctx context.Context, batchID string) (Progress, error) {
	b, err := t.batches.Get(ctx, batchID)
	if err != nil {
		return Progress{}, err
	}

	admitted, err := t.admitted(ctx, b)
	if err != nil {
		return Progress{}, err
	}

	return progress(b, admitted), nil
}

// Admit turns one scanned code into an available unit. The batch must not be
// complete, the code must belong to it and must not have been admitted yet.
// Admitting the last code marks the batch complete.
func (t *Tracker) Admit(ctx context.Context, batchID, code string) (*AdmitResult, error) {
	code = strings.TrimSpace(code)

	res, err := t.admit(ctx, batchID, code)
	if err != nil {
		t.metrics.Admission(string(apperr.KindOf(err)))
		return nil, err
	}

	t.metrics.Admission(metrics.OutcomeOK)

	return res, nil
}

func (t *Tracker) admit(ctx context.Context, batchID, code string) (*AdmitResult, error) {
	unlock, err := t.locker.Lock(ctx, collection.Batches, collection.Units)
	if err != nil {
		return nil, fmt.Errorf("locking batch %s: %w", batchID, err)
	}
	defer unlock()

	b, err := t.batches.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}

	admitted, err := t.admitted(ctx, b)
	if err != nil {
		return nil, err
	}

	if b.StateFor(len(admitted)) == StateComplete {
		t.markComplete(ctx, b)
		return nil, apperr.BatchComplete(b.ID)
	}

	if !b.Expects(code) || admitted[code] {
		return nil, apperr.DuplicateOrInvalidCode(code)
	}

	u := unit.Unit{
		Barcode:      code,
		ProductID:    b.ProductID,
		BatchID:      b.ID,
		CostPrice:    b.CostPrice,
		SellingPrice: b.SellingPrice,
		Status:       unit.StatusAvailable,
		Location:     t.locator.Resolve(ctx),
		AdmittedAt:   t.now(),
	}

	if err := t.units.Add(ctx, u); err != nil {
		return nil, err
	}

	admitted[code] = true

	t.log.Info("unit admitted",
		zap.String("batch_id", b.ID),
		zap.String("barcode", code),
		zap.Int("admitted", len(admitted)),
		zap.Int("quantity", b.Quantity),
	)

	if len(admitted) >= b.Quantity {
		t.markComplete(ctx, b)
	}

	return &AdmitResult{Unit: u, Progress: progress(b, admitted)}, nil
}

// admitted returns the expected codes of b that already exist as units.
func (t *Tracker) admitted(ctx context.Context, b *Batch) (map[string]bool, error) {
	units, err := t.units.ListByBatch(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]bool, len(units))
	for _, u := range units {
		if b.Expects(u.Barcode) {
			codes[u.Barcode] = true
		}
	}

	return codes, nil
}

// markComplete flips the stored flag. A failure leaves the flag unset; the
// unit count still reports the batch as complete and the next call retries.
func (t *Tracker) markComplete(ctx context.Context, b *Batch) {
	if b.IsComplete() {
		return
	}

	_, err := collection.Update(ctx, t.batches.repo, func(batches []Batch) ([]Batch, error) {
		for i := range batches {
			if batches[i].ID == b.ID {
				batches[i].Admitted = AdmittedYes
			}
		}

		return batches, nil
	})
	if err != nil {
		t.log.Error("failed to mark batch complete", zap.String("batch_id", b.ID), zap.Error(err))
		return
	}

	b.Admitted = AdmittedYes

	t.log.Info("batch complete", zap.String("batch_id", b.ID), zap.Int("quantity", b.Quantity))
}

func progress(b *Batch, admitted map[string]bool) Progress {
	remaining := []string{}

	for _, code := range b.ExpectedBarcodes() {
		if !admitted[code] {
			remaining = append(remaining, code)
		}
	}

	return Progress{
		BatchID:   b.ID,
		State:     b.StateFor(len(admitted)),
		Admitted:  len(admitted),
		Quantity:  b.Quantity,
		Remaining: remaining,
	}
}
