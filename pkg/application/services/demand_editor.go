package services

import (
	"sync"

	"github.com/vsinha/sop/pkg/application/dto"
	"github.com/vsinha/sop/pkg/domain/entities"
)

// DemandEditor is an edit buffer over a demand series. Nothing is written
// back until the owning session saves it.
type DemandEditor struct {
	mu         sync.Mutex
	initial    []entities.DemandForecast
	rows       []entities.DemandForecast
	hasChanges bool
}

func newDemandEditor(series []entities.DemandForecast) *DemandEditor {
	return &DemandEditor{
		initial: entities.CloneDemand(series),
		rows:    entities.CloneDemand(series),
	}
}

// ApplyEdit sets one cell from raw user input. It reports whether the edit
// was applied; input without a leading integer and out-of-range rows are dropped.
func (e *DemandEditor) ApplyEdit(index int, field ForecastField, raw string) bool {
	value, ok := ParseForecastValue(raw)
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if index < 0 || index >= len(e.rows) {
		return false
	}
	switch field {
	case ForecastValue:
		e.rows[index].Value = value
	case ForecastBackOrder:
		e.rows[index].BackOrder = value
	default:
		return false
	}
	e.hasChanges = true
	return true
}

// Reset discards every edit since the buffer was opened or last saved
func (e *DemandEditor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.rows = entities.CloneDemand(e.initial)
	e.hasChanges = false
}

// HasChanges reports whether an edit was applied since the last open, reset or save
func (e *DemandEditor) HasChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasChanges
}

// IsEdited reports whether row i differs from the series the buffer started from
func (e *DemandEditor) IsEdited(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isEditedLocked(i)
}

func (e *DemandEditor) isEditedLocked(i int) bool {
	if i < 0 || i >= len(e.rows) || i >= len(e.initial) {
		return false
	}
	return e.rows[i] != e.initial[i]
}

// Rows returns a copy of the buffered series
func (e *DemandEditor) Rows() []entities.DemandForecast {
	e.mu.Lock()
	defer e.mu.Unlock()
	return entities.CloneDemand(e.rows)
}

// Totals sums new orders and backlog over the buffer
func (e *DemandEditor) Totals() dto.DemandTotals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalsLocked()
}

func (e *DemandEditor) totalsLocked() dto.DemandTotals {
	var totals dto.DemandTotals
	for _, row := range e.rows {
		totals.NewOrders += row.Value
		totals.Backlog += row.BackOrder
	}
	totals.TotalDemand = totals.NewOrders + totals.Backlog
	return totals
}

// View renders the buffer for presentation
func (e *DemandEditor) View() dto.DemandEditorView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := dto.DemandEditorView{
		Rows:       make([]dto.DemandEditorRow, 0, len(e.rows)),
		Totals:     e.totalsLocked(),
		HasChanges: e.hasChanges,
	}
	for i, row := range e.rows {
		view.Rows = append(view.Rows, dto.DemandEditorRow{
			Index:            i,
			Month:            row.Month,
			Value:            row.Value,
			BackOrder:        row.BackOrder,
			TotalRequirement: row.TotalRequirement(),
			Edited:           e.isEditedLocked(i),
		})
	}
	return view
}

// markSaved makes the current rows the new baseline of the buffer
func (e *DemandEditor) markSaved() []entities.DemandForecast {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.initial = entities.CloneDemand(e.rows)
	e.hasChanges = false
	return entities.CloneDemand(e.rows)
}
