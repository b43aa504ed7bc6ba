package service

import (
	"sync"

	"github.com/mealsnap/backend/internal/quantity"
)

// Quantity adjustments clamp here so repeated decrements can never zero out
// or negate an item.
const minQuantity = 0.1

// ReviewSession holds the identified item list while the user edits it
// between identification and nutrition calculation. All edits are
// self-transitions; the list must be non-empty to proceed.
type ReviewSession struct {
	mu    sync.Mutex
	items []IdentifiedItem
}

// NewReviewSession seeds the session with the identify result.
func NewReviewSession(items []IdentifiedItem) *ReviewSession {
	copied := make([]IdentifiedItem, len(items))
	copy(copied, items)
	return &ReviewSession{items: copied}
}

// Items returns a snapshot of the current list.
func (r *ReviewSession) Items() []IdentifiedItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]IdentifiedItem, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the current item count.
func (r *ReviewSession) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// CanProceed reports whether the session may move on to nutrition
// calculation.
func (r *ReviewSession) CanProceed() bool {
	return r.Len() > 0
}

// AddItem appends a placeholder item for the user to edit and returns its
// index.
func (r *ReviewSession) AddItem() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, IdentifiedItem{
		Name:          "New Food Item",
		Quantity:      "1 serving",
		EstimatedSize: "medium",
		Confidence:    50,
	})
	return len(r.items) - 1
}

// RemoveItem removes the item at index; out-of-range indexes are a no-op.
func (r *ReviewSession) RemoveItem(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.items) {
		return
	}
	r.items = append(r.items[:index], r.items[index+1:]...)
}

// UpdateName replaces the item's name.
func (r *ReviewSession) UpdateName(index int, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.items) {
		return
	}
	r.items[index].Name = name
}

// UpdateEstimatedSize replaces the item's portion descriptor.
func (r *ReviewSession) UpdateEstimatedSize(index int, size string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.items) {
		return
	}
	r.items[index].EstimatedSize = size
}

// UpdateQuantity replaces the quantity string, normalizing it through the
// quantity grammar so a garbled value still round-trips as "1.0 serving".
func (r *ReviewSession) UpdateQuantity(index int, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.items) {
		return
	}
	r.items[index].Quantity = quantity.ParseQuantity(value).Format()
}

// AdjustQuantity re-derives the numeric magnitude, adds delta (the UI uses
// ±0.1 steps), clamps to the minimum and reattaches the unit.
func (r *ReviewSession) AdjustQuantity(index int, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.items) {
		return
	}
	v := quantity.ParseQuantity(r.items[index].Quantity)
	v.Amount += delta
	if v.Amount < minQuantity {
		v.Amount = minQuantity
	}
	r.items[index].Quantity = v.Format()
}
