package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLineItemsNativeArray(t *testing.T) {
	raw := []byte(`[{"name":"Paracetamol","quantity_sold":3},{"name":"Cetirizine","quantity_sold":5}]`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Paracetamol", got.Items[0].Name)
	assert.Equal(t, 3, got.Items[0].QuantitySold)
}

func TestResolveLineItemsDoubleEncodedString(t *testing.T) {
	// A jsonb column holding a string whose contents are the array.
	raw := []byte(`"[{\"name\":\"Dolo 650\",\"quantity\":2}]"`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Dolo 650", got.Items[0].Name)
	assert.Equal(t, 2, got.Items[0].QuantitySold)
}

func TestResolveLineItemsAlternateFieldNames(t *testing.T) {
	raw := []byte(`[{"medicine_name":"Azithromycin","quantity":4,"inventory_item_id":"abc"}]`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Azithromycin", got.Items[0].Name)
	assert.Equal(t, 4, got.Items[0].QuantitySold)
	assert.Equal(t, "abc", got.Items[0].InventoryItemID)
}

func TestResolveLineItemsNumericStringQuantity(t *testing.T) {
	raw := []byte(`[{"name":"Ibuprofen","quantity_sold":"6"}]`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	assert.Equal(t, 6, got.Items[0].QuantitySold)
}

func TestResolveLineItemsNonNumericQuantityCountsZero(t *testing.T) {
	raw := []byte(`[{"name":"Ibuprofen","quantity_sold":"a few"},{"name":"Dolo 650"}]`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	assert.Zero(t, got.Items[0].QuantitySold)
	assert.Zero(t, got.Items[1].QuantitySold)
}

func TestResolveLineItemsEmpty(t *testing.T) {
	assert.Equal(t, LineItemsEmpty, ResolveLineItems(nil).Kind)
	assert.Equal(t, LineItemsEmpty, ResolveLineItems([]byte(``)).Kind)
	assert.Equal(t, LineItemsEmpty, ResolveLineItems([]byte(`null`)).Kind)
	assert.Equal(t, LineItemsEmpty, ResolveLineItems([]byte(`"null"`)).Kind)
}

func TestResolveLineItemsUnparseable(t *testing.T) {
	got := ResolveLineItems([]byte(`"not json"`))
	assert.Equal(t, LineItemsUnparseable, got.Kind)
	assert.Empty(t, got.Items)

	got = ResolveLineItems([]byte(`42`))
	assert.Equal(t, LineItemsUnparseable, got.Kind)
}

func TestResolveLineItemsRepairsSloppyArray(t *testing.T) {
	// Trailing comma: invalid JSON, but recoverable.
	raw := []byte(`[{"name":"Paracetamol","quantity_sold":3},]`)
	got := ResolveLineItems(raw)

	require.Equal(t, LineItemsParsed, got.Kind)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 3, got.Items[0].QuantitySold)
}
