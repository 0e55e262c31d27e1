package forecast

import (
	"encoding/json"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// LineItemsKind tags the shape an order's item column resolved to.
type LineItemsKind int

const (
	// LineItemsEmpty means the column was NULL, empty, or a JSON null.
	LineItemsEmpty LineItemsKind = iota
	// LineItemsParsed means a usable item array was recovered.
	LineItemsParsed
	// LineItemsUnparseable means the payload could not be read as an item
	// array even after repair. Such orders contribute nothing to aggregation.
	LineItemsUnparseable
)

// LineItem is a single sold line inside an order.
type LineItem struct {
	InventoryItemID string
	Name            string
	QuantitySold    int
}

// LineItems is the resolved form of the loosely-typed order item column.
// The column historically holds either a native JSON array or a JSON string
// that itself encodes an array, so it is resolved exactly once at ingestion.
type LineItems struct {
	Kind  LineItemsKind
	Items []LineItem
}

// rawLineItem accepts the field spellings seen in stored orders. Quantities
// arrive as numbers or numeric strings depending on which client wrote the row.
type rawLineItem struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Name            string          `json:"name"`
	MedicineName    string          `json:"medicine_name"`
	QuantitySold    json.RawMessage `json:"quantity_sold"`
	Quantity        json.RawMessage `json:"quantity"`
}

// ResolveLineItems decodes the raw item column into a tagged LineItems value.
// It never returns an error: malformed payloads resolve to Unparseable and
// malformed quantities inside an otherwise valid array count as zero.
func ResolveLineItems(raw []byte) LineItems {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return LineItems{Kind: LineItemsEmpty}
	}

	if items, ok := decodeItemArray([]byte(trimmed)); ok {
		return LineItems{Kind: LineItemsParsed, Items: items}
	}

	// Some writers double-encode: the jsonb column holds a JSON string whose
	// contents are the array.
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
		inner = strings.TrimSpace(inner)
		if inner == "" || inner == "null" {
			return LineItems{Kind: LineItemsEmpty}
		}
		if items, ok := decodeItemArray([]byte(inner)); ok {
			return LineItems{Kind: LineItemsParsed, Items: items}
		}
		if items, ok := repairItemArray(inner); ok {
			return LineItems{Kind: LineItemsParsed, Items: items}
		}
		return LineItems{Kind: LineItemsUnparseable}
	}

	if items, ok := repairItemArray(trimmed); ok {
		return LineItems{Kind: LineItemsParsed, Items: items}
	}
	return LineItems{Kind: LineItemsUnparseable}
}

func decodeItemArray(data []byte) ([]LineItem, bool) {
	var rawItems []rawLineItem
	if err := json.Unmarshal(data, &rawItems); err != nil {
		return nil, false
	}
	items := make([]LineItem, 0, len(rawItems))
	for _, ri := range rawItems {
		name := ri.Name
		if name == "" {
			name = ri.MedicineName
		}
		qty := ri.QuantitySold
		if qty == nil {
			qty = ri.Quantity
		}
		items = append(items, LineItem{
			InventoryItemID: ri.InventoryItemID,
			Name:            name,
			QuantitySold:    coerceQuantity(qty),
		})
	}
	return items, true
}

// repairItemArray is the last-resort path for near-JSON payloads (trailing
// commas, single quotes and the like). If repair does not yield an item
// array the payload stays unparseable.
func repairItemArray(data string) ([]LineItem, bool) {
	repaired, err := jsonrepair.RepairJSON(data)
	if err != nil {
		return nil, false
	}
	if !strings.HasPrefix(strings.TrimSpace(repaired), "[") {
		return nil, false
	}
	return decodeItemArray([]byte(repaired))
}

// coerceQuantity reads a quantity that may be a JSON number, a numeric
// string, or missing entirely. Anything non-numeric counts as zero.
func coerceQuantity(raw json.RawMessage) int {
	if raw == nil {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(v)
		}
	}
	return 0
}
