package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lineItems() []map[string]any {
	return []map[string]any{
		{"description": "Design", "category": "Creative", "total_price": 10.0},
		{"description": "Build", "category": "Engineering", "total_price": 20.0},
		{"description": "Review", "category": "Creative", "total_price": 30.0},
	}
}

func TestComputeGlobals(t *testing.T) {
	globals := []GlobalCalculation{
		{Name: "items_total", Type: "calculation", Expression: Expression{Field: "items", Operation: "sum"}},
		{Name: "items_count", Type: "calculation", Expression: Expression{Field: "items", Operation: "count"}},
		{Name: "bad_op", Type: "calculation", Expression: Expression{Field: "items", Operation: "median"}},
		{Name: "not_an_array", Type: "calculation", Expression: Expression{Field: "status", Operation: "sum"}},
		{Name: "ignored", Type: "lookup", Expression: Expression{Field: "items", Operation: "sum"}},
	}
	data := map[string]any{"items": lineItems(), "status": "sent"}

	out := ComputeGlobals(globals, data)

	assert.Equal(t, 60.0, out["items_total"])
	assert.Equal(t, 3.0, out["items_count"])
	assert.Equal(t, 0.0, out["bad_op"])
	assert.Equal(t, 0.0, out["not_an_array"])
	_, evaluated := out["ignored"]
	assert.False(t, evaluated)
}

func TestGroupItemsFirstSeenOrder(t *testing.T) {
	groups := groupItems(lineItems(), "category")

	assert.Len(t, groups, 2)
	assert.Equal(t, "Creative", groups[0].Name)
	assert.Equal(t, "Engineering", groups[1].Name)
	assert.Len(t, groups[0].Items, 2)
	assert.Len(t, groups[1].Items, 1)
}

func TestGroupItemsUncategorized(t *testing.T) {
	items := []map[string]any{
		{"description": "A", "category": ""},
		{"description": "B"},
		{"description": "C", "category": nil},
		{"description": "D", "category": "Taxable"},
	}

	groups := groupItems(items, "category")

	assert.Equal(t, "Uncategorized", groups[0].Name)
	assert.Len(t, groups[0].Items, 3)
	assert.Equal(t, "Taxable", groups[1].Name)
}

func TestAggregate(t *testing.T) {
	items := lineItems()

	tests := []struct {
		op   string
		want float64
	}{
		{"sum", 60},
		{"count", 3},
		{"avg", 20},
		{"min", 0},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			list := &ListElement{Aggregation: tt.op, AggregationField: "total_price"}
			assert.Equal(t, tt.want, aggregate(list, items))
		})
	}

	t.Run("avg of nothing", func(t *testing.T) {
		list := &ListElement{Aggregation: "avg", AggregationField: "total_price"}
		assert.Equal(t, 0.0, aggregate(list, nil))
	})

	t.Run("non numeric amounts count as zero", func(t *testing.T) {
		list := &ListElement{Aggregation: "sum", AggregationField: "total_price"}
		mixed := []map[string]any{
			{"total_price": 10.0},
			{"total_price": "n/a"},
			{},
		}
		assert.Equal(t, 10.0, aggregate(list, mixed))
	})
}

func TestCalculateListRows(t *testing.T) {
	data := map[string]any{"items": lineItems()}

	t.Run("plain list", func(t *testing.T) {
		list := &ListElement{Name: "items", Content: ElementList{&FieldElement{Name: "description"}}}
		// header + one row per item
		assert.Equal(t, 4, calculateListRows(list, data))
	})

	t.Run("aggregated list", func(t *testing.T) {
		list := &ListElement{Name: "items", Aggregation: "sum", AggregationField: "total_price",
			Content: ElementList{&FieldElement{Name: "description"}}}
		assert.Equal(t, 5, calculateListRows(list, data))
	})

	t.Run("item row spans", func(t *testing.T) {
		list := &ListElement{Name: "items", Content: ElementList{
			&FieldElement{Name: "description", Position: &Position{Column: 1, Row: 1}, Span: &Span{RowSpan: 2}},
		}}
		// header + 2 rows per item
		assert.Equal(t, 7, calculateListRows(list, data))
	})

	t.Run("grouped list", func(t *testing.T) {
		list := &ListElement{Name: "items", GroupBy: "category",
			Content: ElementList{&FieldElement{Name: "description"}}}
		// (1 + 2) + (1 + 1) group headers and items, no aggregation row
		assert.Equal(t, 5, calculateListRows(list, data))
	})

	t.Run("grouped aggregated list", func(t *testing.T) {
		list := &ListElement{Name: "items", GroupBy: "category", Aggregation: "sum",
			AggregationField: "total_price", Content: ElementList{&FieldElement{Name: "description"}}}
		assert.Equal(t, 6, calculateListRows(list, data))
	})

	t.Run("missing array", func(t *testing.T) {
		list := &ListElement{Name: "nothing"}
		assert.Equal(t, 0, calculateListRows(list, data))
	})

	t.Run("not an array", func(t *testing.T) {
		list := &ListElement{Name: "status"}
		assert.Equal(t, 0, calculateListRows(list, map[string]any{"status": "sent"}))
	})
}

func TestCalculateContentRows(t *testing.T) {
	data := map[string]any{"items": lineItems()}

	content := ElementList{
		&FieldElement{Name: "invoice_number", Position: &Position{Column: 1, Row: 2}, Span: &Span{RowSpan: 1}},
		&StaticTextElement{Content: "Invoice", Position: &Position{Column: 1, Row: 1}},
		&ListElement{Name: "items", Content: ElementList{&FieldElement{Name: "description"}}},
	}

	// The extent is the max across elements, not the sum: positioned field
	// reaches row 3, static text row 2, list needs 4.
	assert.Equal(t, 4, calculateContentRows(content, data))
}
