package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionWith(items ...IdentifiedItem) *ReviewSession {
	return NewReviewSession(items)
}

func TestReviewSessionEdits(t *testing.T) {
	session := sessionWith(IdentifiedItem{Name: "Pasta", Quantity: "1 plate", EstimatedSize: "large", Confidence: 85})

	session.UpdateName(0, "Spaghetti Bolognese")
	session.UpdateEstimatedSize(0, "medium")
	session.UpdateQuantity(0, "2 plates")

	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Spaghetti Bolognese", items[0].Name)
	assert.Equal(t, "medium", items[0].EstimatedSize)
	assert.Equal(t, "2.0 plates", items[0].Quantity)
}

func TestReviewSessionAddItemPlaceholder(t *testing.T) {
	session := sessionWith()
	index := session.AddItem()

	assert.Equal(t, 0, index)
	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "New Food Item", items[0].Name)
	assert.Equal(t, "1 serving", items[0].Quantity)
	assert.Equal(t, "medium", items[0].EstimatedSize)
	assert.Equal(t, 50, items[0].Confidence)
}

func TestReviewSessionRemoveItem(t *testing.T) {
	session := sessionWith(
		IdentifiedItem{Name: "Rice"},
		IdentifiedItem{Name: "Beans"},
	)

	session.RemoveItem(0)
	items := session.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Beans", items[0].Name)

	// Out-of-range removals are no-ops.
	session.RemoveItem(5)
	session.RemoveItem(-1)
	assert.Equal(t, 1, session.Len())
}

func TestReviewSessionCanProceed(t *testing.T) {
	session := sessionWith()
	assert.False(t, session.CanProceed())

	session.AddItem()
	assert.True(t, session.CanProceed())

	session.RemoveItem(0)
	assert.False(t, session.CanProceed())
}

func TestAdjustQuantity(t *testing.T) {
	session := sessionWith(IdentifiedItem{Name: "Apple", Quantity: "1 piece"})

	session.AdjustQuantity(0, 0.1)
	assert.Equal(t, "1.1 piece", session.Items()[0].Quantity)

	session.AdjustQuantity(0, 0.1)
	assert.Equal(t, "1.2 piece", session.Items()[0].Quantity)

	session.AdjustQuantity(0, -0.5)
	assert.Equal(t, "0.7 piece", session.Items()[0].Quantity)
}

func TestAdjustQuantityClampsAtMinimum(t *testing.T) {
	session := sessionWith(IdentifiedItem{Name: "Apple", Quantity: "0.2 piece"})

	for i := 0; i < 10; i++ {
		session.AdjustQuantity(0, -0.1)
	}
	assert.Equal(t, "0.1 piece", session.Items()[0].Quantity)
}

func TestAdjustQuantityGarbledValue(t *testing.T) {
	session := sessionWith(IdentifiedItem{Name: "Mystery", Quantity: "some of it"})

	// Unparseable magnitudes fall back to 1 serving before the delta.
	session.AdjustQuantity(0, 0.1)
	assert.Equal(t, "1.1 serving", session.Items()[0].Quantity)
}

func TestUpdateQuantityNormalizes(t *testing.T) {
	session := sessionWith(IdentifiedItem{Name: "Soup", Quantity: "1 bowl"})

	session.UpdateQuantity(0, "nonsense")
	assert.Equal(t, "1.0 serving", session.Items()[0].Quantity)
}
