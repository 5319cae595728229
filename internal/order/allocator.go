package order

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stockroom/internal/apperr"
	"github.com/MrJamesThe3rd/stockroom/internal/collection"
	"github.com/MrJamesThe3rd/stockroom/internal/defect"
	"github.com/MrJamesThe3rd/stockroom/internal/ident"
	"github.com/MrJamesThe3rd/stockroom/internal/metrics"
	"github.com/MrJamesThe3rd/stockroom/internal/unit"
)

// Allocator assigns stock units and defect records to order lines.
//
// Every call loads the unit and defect collections, applies all line changes
// to in-memory copies and writes nothing unless every line succeeds. Units
// are written before defects; if the defect write fails the unit write is
// undone. Callers must hold the units and defects locks.
type Allocator struct {
	units   unit.Repository
	defects defect.Repository
	metrics *metrics.Recorder
	log     *zap.Logger
	now     func() time.Time
}

func NewAllocator(units unit.Repository, defects defect.Repository, rec *metrics.Recorder, log *zap.Logger) *Allocator {
	return &Allocator{
		units:   units,
		defects: defects,
		metrics: rec,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Allocation is the committed result of an allocator call. It carries the
// pre-images needed to undo it.
type Allocation struct {
	Items    []Item
	Released int

	unitSwaps     []unit.Swap
	defectChanges []defectChange
}

type defectChange struct {
	before defect.Record
	after  defect.Record
}

// Allocate assigns stock to the lines of a new order. orderID is the owner
// stamped on the records it takes; see Kind.Owner.
func (a *Allocator) Allocate(ctx context.Context, orderID string, items []Item) (*Allocation, error) {
	return a.Reconcile(ctx, orderID, nil, items)
}

// Reconcile moves the allocation of orderID from previous to next. Lines are
// paired by line id, then by product and defect. Paired stock lines keep
// their barcodes; a larger quantity takes only the difference from stock and
// a smaller one releases the last barcodes. Unpaired previous lines are
// released and unpaired next lines are allocated from scratch.
func (a *Allocator) Reconcile(ctx context.Context, orderID string, previous, next []Item) (*Allocation, error) {
	w, err := a.workspace(ctx, orderID)
	if err != nil {
		return nil, err
	}

	matches, orphans := pair(previous, next)

	for _, prev := range orphans {
		w.releaseLine(prev)
	}

	out := make([]Item, len(next))

	for i := range next {
		out[i] = next[i]
		out[i].Barcodes = nil

		if prev := matches[i]; prev != nil {
			if out[i].ID == "" {
				out[i].ID = prev.ID
			}

			w.shrink(prev, &out[i])
		}

		if out[i].ID == "" {
			out[i].ID = ident.New()
		}
	}

	for i := range next {
		if err := w.fill(matches[i], &next[i], &out[i]); err != nil {
			return nil, err
		}
	}

	return a.commit(ctx, w, out)
}

// Deallocate returns every unit held by orderID to stock and reverts the
// defect records it bought. Running it again changes nothing.
func (a *Allocator) Deallocate(ctx context.Context, orderID string, items []Item) (*Allocation, error) {
	w, err := a.workspace(ctx, orderID)
	if err != nil {
		return nil, err
	}

	for i := range w.units {
		if w.units[i].OrderID == orderID {
			w.release(i)
		}
	}

	for i := range w.defects {
		if w.defects[i].OrderID == orderID {
			w.revertDefect(w.defects[i].ID)
		}
	}

	for i := range items {
		if items[i].Defective() {
			w.revertDefect(items[i].DefectID)
		}
	}

	return a.commit(ctx, w, nil)
}

// Undo reverts a committed allocation where the affected records still show
// its effect. Records changed since are left alone and logged.
func (a *Allocator) Undo(ctx context.Context, alloc *Allocation) error {
	if alloc == nil {
		return nil
	}

	var errs []error

	if err := a.undoUnits(ctx, alloc); err != nil {
		errs = append(errs, err)
	}

	if err := a.undoDefects(ctx, alloc); err != nil {
		errs = append(errs, err)
	}

	a.metrics.Compensation(len(errs) == 0)

	if len(errs) > 0 {
		return fmt.Errorf("undoing allocation: %w", errors.Join(errs...))
	}

	return nil
}

func (a *Allocator) undoUnits(ctx context.Context, alloc *Allocation) error {
	if len(alloc.unitSwaps) == 0 {
		return nil
	}

	inverse := make([]unit.Swap, 0, len(alloc.unitSwaps))
	for _, sw := range alloc.unitSwaps {
		inverse = append(inverse, unit.Swap{Barcode: sw.Barcode, From: sw.To, To: sw.From})
	}

	skipped, err := unit.NewService(a.units).CompareAndSwap(ctx, inverse...)
	if err != nil {
		return err
	}

	if len(skipped) > 0 {
		a.log.Warn("units changed since allocation, not restored", zap.Strings("barcodes", skipped))
	}

	return nil
}

func (a *Allocator) undoDefects(ctx context.Context, alloc *Allocation) error {
	if len(alloc.defectChanges) == 0 {
		return nil
	}

	_, err := collection.Update(ctx, a.defects, func(recs []defect.Record) ([]defect.Record, error) {
		for _, ch := range alloc.defectChanges {
			for i := range recs {
				if recs[i].ID != ch.after.ID {
					continue
				}

				if recs[i].Status == ch.after.Status && recs[i].OrderID == ch.after.OrderID {
					recs[i] = ch.before
				} else {
					a.log.Warn("defect changed since allocation, not restored", zap.String("defect_id", ch.after.ID))
				}
			}
		}

		return recs, nil
	})
	if err != nil {
		return fmt.Errorf("restoring defects: %w", err)
	}

	return nil
}

func (a *Allocator) workspace(ctx context.Context, orderID string) (*workspace, error) {
	units, err := a.units.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading units: %w", err)
	}

	defects, err := a.defects.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading defects: %w", err)
	}

	return newWorkspace(orderID, a.now(), units, defects), nil
}

func (a *Allocator) commit(ctx context.Context, w *workspace, items []Item) (*Allocation, error) {
	alloc := &Allocation{
		Items:         items,
		Released:      w.released,
		unitSwaps:     w.unitSwaps(),
		defectChanges: w.defectChanges(),
	}

	if len(alloc.unitSwaps) > 0 {
		_, err := a.units.Save(ctx, collection.Snapshot[unit.Unit]{Items: w.units, Revision: w.unitsRev})
		if err != nil {
			return nil, fmt.Errorf("saving units: %w", err)
		}
	}

	if len(alloc.defectChanges) > 0 {
		_, err := a.defects.Save(ctx, collection.Snapshot[defect.Record]{Items: w.defects, Revision: w.defectsRev})
		if err != nil {
			if undoErr := a.undoUnits(ctx, alloc); undoErr != nil {
				a.metrics.Compensation(false)
				a.log.Error("failed to restore units after defect write failure",
					zap.String("order_id", w.orderID),
					zap.Error(undoErr),
				)
			} else if len(alloc.unitSwaps) > 0 {
				a.metrics.Compensation(true)
			}

			return nil, fmt.Errorf("saving defects: %w", err)
		}
	}

	return alloc, nil
}

// pair matches each next line with at most one previous line of the same
// product and defect, preferring equal line ids. It returns the match per
// next index and the previous lines left unmatched.
func pair(previous, next []Item) ([]*Item, []*Item) {
	matches := make([]*Item, len(next))
	used := make([]bool, len(previous))

	compatible := func(p, n *Item) bool { return p.key() == n.key() }

	for i := range next {
		if next[i].ID == "" {
			continue
		}

		for j := range previous {
			if !used[j] && previous[j].ID == next[i].ID && compatible(&previous[j], &next[i]) {
				matches[i], used[j] = &previous[j], true
				break
			}
		}
	}

	for i := range next {
		if matches[i] != nil {
			continue
		}

		for j := range previous {
			if used[j] || (next[i].ID != "" && previous[j].ID != "" && previous[j].ID != next[i].ID) {
				continue
			}

			if compatible(&previous[j], &next[i]) {
				matches[i], used[j] = &previous[j], true
				break
			}
		}
	}

	var orphans []*Item

	for j := range previous {
		if !used[j] {
			orphans = append(orphans, &previous[j])
		}
	}

	return matches, orphans
}

// workspace holds mutable copies of the unit and defect collections for one
// allocator call, along with the pre-image of everything it touched.
type workspace struct {
	orderID string
	now     time.Time

	units      []unit.Unit
	unitsRev   int64
	unitIdx    map[string]int
	unitBefore map[string]unit.State

	defects      []defect.Record
	defectsRev   int64
	defectIdx    map[string]int
	defectBefore map[string]defect.Record

	released int
}

func newWorkspace(orderID string, now time.Time, units collection.Snapshot[unit.Unit], defects collection.Snapshot[defect.Record]) *workspace {
	w := &workspace{
		orderID:      orderID,
		now:          now,
		units:        units.Items,
		unitsRev:     units.Revision,
		unitIdx:      make(map[string]int, len(units.Items)),
		unitBefore:   make(map[string]unit.State),
		defects:      defects.Items,
		defectsRev:   defects.Revision,
		defectIdx:    make(map[string]int, len(defects.Items)),
		defectBefore: make(map[string]defect.Record),
	}

	for i := range w.units {
		w.unitIdx[w.units[i].Barcode] = i
	}

	for i := range w.defects {
		w.defectIdx[w.defects[i].ID] = i
	}

	return w
}

func (w *workspace) touchUnit(i int) {
	bc := w.units[i].Barcode
	if _, ok := w.unitBefore[bc]; !ok {
		w.unitBefore[bc] = w.units[i].State()
	}
}

func (w *workspace) touchDefect(i int) {
	id := w.defects[i].ID
	if _, ok := w.defectBefore[id]; !ok {
		rec := w.defects[i]
		w.defectBefore[id] = rec
	}
}

// release returns unit i to stock if it is held by this order.
func (w *workspace) release(i int) {
	if w.units[i].OrderID != w.orderID {
		return
	}

	w.touchUnit(i)
	w.units[i].Release()
	w.released++
}

func (w *workspace) releaseCodes(codes []string) {
	for _, bc := range codes {
		if i, ok := w.unitIdx[bc]; ok {
			w.release(i)
		}
	}
}

func (w *workspace) revertDefect(id string) {
	i, ok := w.defectIdx[id]
	if !ok {
		return
	}

	before := w.defects[i]
	if w.defects[i].Revert(w.orderID, w.now) {
		if _, seen := w.defectBefore[id]; !seen {
			w.defectBefore[id] = before
		}
	}
}

func (w *workspace) releaseLine(prev *Item) {
	if prev.Defective() {
		w.revertDefect(prev.DefectID)
		return
	}

	w.releaseCodes(prev.Barcodes)
}

// shrink handles the parts of a paired line that free stock, so that later
// lines of the same call can use it.
func (w *workspace) shrink(prev, out *Item) {
	if prev.Defective() {
		return
	}

	kept := slices.Clone(prev.Barcodes)
	if len(kept) > out.Qty {
		w.releaseCodes(kept[out.Qty:])
		kept = kept[:out.Qty]
	}

	out.Barcodes = kept
}

// fill allocates whatever the line still needs.
func (w *workspace) fill(prev, in, out *Item) error {
	if in.Defective() {
		return w.fillDefective(prev, in, out)
	}

	if prev == nil && len(in.Barcodes) > 0 {
		codes, err := w.pin(in.ProductID, in.Barcodes, in.Qty)
		if err != nil {
			return err
		}

		out.Barcodes = codes

		return nil
	}

	need := out.Qty - len(out.Barcodes)
	if need <= 0 {
		if out.Barcodes == nil {
			out.Barcodes = []string{}
		}

		return nil
	}

	codes, err := w.take(out.ProductID, need)
	if err != nil {
		return err
	}

	out.Barcodes = append(out.Barcodes, codes...)

	return nil
}

func (w *workspace) fillDefective(prev, in, out *Item) error {
	i, ok := w.defectIdx[in.DefectID]
	if !ok {
		return apperr.NotFound("defect %s not found", in.DefectID)
	}

	out.Barcodes = []string{}
	if in.Barcode != "" {
		out.Barcodes = []string{in.Barcode}
	} else if w.defects[i].Barcode != "" {
		out.Barcodes = []string{w.defects[i].Barcode}
	}

	if out.ProductID == "" {
		out.ProductID = w.defects[i].ProductID
	}

	rec := &w.defects[i]

	owned := rec.OrderID == w.orderID || rec.OrderID == ""
	if prev != nil && rec.Status == defect.StatusSold && owned {
		if rec.SellingPrice == nil || !rec.SellingPrice.Equal(in.Price) {
			w.touchDefect(i)
			rec.SellingPrice = new(in.Price)
			rec.UpdatedAt = w.now
		}

		return nil
	}

	before := *rec
	if err := rec.Sell(w.orderID, in.Price, w.now); err != nil {
		return err
	}

	if _, seen := w.defectBefore[rec.ID]; !seen {
		w.defectBefore[rec.ID] = before
	}

	return nil
}

// take sells the first n available units of product in stored order.
func (w *workspace) take(productID string, n int) ([]string, error) {
	var picked []int

	for i := range w.units {
		if len(picked) == n {
			break
		}

		if w.units[i].ProductID == productID && w.units[i].IsAvailable() {
			picked = append(picked, i)
		}
	}

	if len(picked) < n {
		return nil, &apperr.InsufficientStock{ProductID: productID, Required: n, Available: len(picked)}
	}

	codes := make([]string, 0, n)
	for _, i := range picked {
		w.touchUnit(i)
		w.units[i].Sell(w.orderID)
		codes = append(codes, w.units[i].Barcode)
	}

	return codes, nil
}

// pin sells exactly the requested units.
func (w *workspace) pin(productID string, codes []string, qty int) ([]string, error) {
	if len(codes) != qty {
		return nil, apperr.Validation("line for product %s lists %d barcodes for quantity %d", productID, len(codes), qty)
	}

	var usable []int

	for _, bc := range slices.Compact(slices.Sorted(slices.Values(codes))) {
		i, ok := w.unitIdx[bc]
		if ok && w.units[i].ProductID == productID && w.units[i].IsAvailable() {
			usable = append(usable, i)
		}
	}

	if len(usable) < qty {
		return nil, &apperr.InsufficientStock{ProductID: productID, Required: qty, Available: len(usable)}
	}

	for _, bc := range codes {
		i := w.unitIdx[bc]
		w.touchUnit(i)
		w.units[i].Sell(w.orderID)
	}

	return slices.Clone(codes), nil
}

func (w *workspace) unitSwaps() []unit.Swap {
	var swaps []unit.Swap

	for _, bc := range slices.Sorted(maps.Keys(w.unitBefore)) {
		before := w.unitBefore[bc]
		after := w.units[w.unitIdx[bc]].State()

		if before != after {
			swaps = append(swaps, unit.Swap{Barcode: bc, From: before, To: after})
		}
	}

	return swaps
}

func (w *workspace) defectChanges() []defectChange {
	var changes []defectChange

	for _, id := range slices.Sorted(maps.Keys(w.defectBefore)) {
		before := w.defectBefore[id]
		after := w.defects[w.defectIdx[id]]

		if before.Status != after.Status || before.OrderID != after.OrderID || !samePrice(before.SellingPrice, after.SellingPrice) {
			changes = append(changes, defectChange{before: before, after: after})
		}
	}

	return changes
}

func samePrice(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}
