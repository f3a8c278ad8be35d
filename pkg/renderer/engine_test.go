package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceData() map[string]any {
	return map[string]any{
		"invoice_number": "INV-000123",
		"status":         "sent",
		"status_code":    200,
		"items":          lineItems(),
	}
}

func renderNodes(t *testing.T, tpl *Template, data map[string]any) (*TreeResult, error) {
	t.Helper()
	return RenderTree(tpl, data, nil)
}

func TestRenderFatalErrors(t *testing.T) {
	_, err := RenderTree(nil, invoiceData(), nil)
	assert.ErrorIs(t, err, ErrNilTemplate)

	_, err = RenderTree(&Template{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilData)
}

func TestRenderIdempotent(t *testing.T) {
	tpl := &Template{
		Globals: []GlobalCalculation{
			{Name: "grand_total", Type: "calculation", Expression: Expression{Field: "items", Operation: "sum"}},
		},
		Sections: []Section{
			{Type: "header", Grid: Grid{Columns: 2, MinRows: 2}, Content: ElementList{
				&StaticTextElement{Content: "Invoice", ID: "title"},
				&FieldElement{Name: "invoice_number", Position: &Position{Column: 2, Row: 1}},
				&StyleElement{Elements: []string{"text:title"}, Props: map[string]any{"font-size": "18px", "font-weight": 700}},
			}},
			{Type: "items", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
				&ListElement{Name: "items", GroupBy: "category", Aggregation: "sum", AggregationField: "total_price",
					Content: ElementList{&FieldElement{Name: "description"}, &FieldElement{Name: "total_price"}}},
			}},
			{Type: "summary", Grid: Grid{Columns: 2, MinRows: 1}, Content: ElementList{
				&FieldElement{Name: "grand_total"},
			}},
		},
	}

	first, err := RenderHTML(tpl, invoiceData(), Metadata{}, nil)
	require.NoError(t, err)
	second, err := RenderHTML(tpl, invoiceData(), Metadata{}, nil)
	require.NoError(t, err)

	assert.Equal(t, first.HTML, second.HTML)
	assert.Equal(t, first.Styles, second.Styles)
}

func TestRenderRowFloor(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "header", Grid: Grid{Columns: 2, MinRows: 4}, Content: ElementList{
			&FieldElement{Name: "invoice_number"},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)

	section := out.Nodes[0]
	assert.Equal(t, 4, section.Rows)

	fillers := 0
	for _, child := range section.Children {
		if child.Kind == NodeFiller {
			fillers++
		}
	}
	assert.Equal(t, 3, fillers)
}

func TestRenderSummaryNeverPadded(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "summary", Grid: Grid{Columns: 2, MinRows: 5}, Content: ElementList{
			&FieldElement{Name: "invoice_number", Position: &Position{Column: 1, Row: 2}},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)

	section := out.Nodes[0]
	// The row floor still sizes the grid, but no filler nodes are emitted.
	assert.Equal(t, 5, section.Rows)
	for _, child := range section.Children {
		assert.NotEqual(t, NodeFiller, child.Kind)
	}
}

func TestRenderGroupedList(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "items", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
			&ListElement{Name: "items", GroupBy: "category", Aggregation: "sum", AggregationField: "total_price",
				Content: ElementList{&FieldElement{Name: "description"}}},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)

	section := out.Nodes[0]
	require.Len(t, section.Children, 1)
	list := section.Children[0]
	assert.Equal(t, NodeList, list.Kind)
	assert.Equal(t, 12, list.Columns)

	var texts []string
	for _, child := range list.Children {
		texts = append(texts, child.Text)
	}
	assert.Equal(t, []string{
		"category: Creative (sum: 40)",
		"Design",
		"Review",
		"category: Engineering (sum: 20)",
		"Build",
	}, texts)
}

func TestRenderUngroupedListAutoRows(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "items", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
			&ListElement{Name: "items", Content: ElementList{
				&FieldElement{Name: "description", Position: &Position{Column: 1, Row: 1}, Span: &Span{ColumnSpan: 8}},
				&FieldElement{Name: "total_price", Position: &Position{Column: 9, Row: 1}, Span: &Span{ColumnSpan: 4}},
			}},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)

	list := out.Nodes[0].Children[0]
	require.Len(t, list.Children, 6)
	for _, cell := range list.Children {
		assert.True(t, cell.Placement.AutoRow)
	}
	assert.Equal(t, "Design", list.Children[0].Text)
	assert.Equal(t, "10", list.Children[1].Text)
}

func TestRenderConditional(t *testing.T) {
	content := ElementList{&StaticTextElement{Content: "PAID"}}

	tests := []struct {
		name    string
		cond    Condition
		visible bool
	}{
		{"loose number equality", Condition{Field: "status_code", Op: "==", Value: "200"}, true},
		{"false branch", Condition{Field: "status", Op: "==", Value: "draft"}, false},
		{"undefined field renders nothing", Condition{Field: "missing", Op: "==", Value: "x"}, false},
		{"relational", Condition{Field: "status_code", Op: ">=", Value: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := &Template{Sections: []Section{
				{Type: "header", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
					&ConditionalElement{Condition: tt.cond, Content: content},
				}},
			}}

			out, err := renderNodes(t, tpl, invoiceData())
			require.NoError(t, err)

			found := false
			for _, child := range out.Nodes[0].Children {
				if child.Kind == NodeText && child.Text == "PAID" {
					found = true
				}
			}
			assert.Equal(t, tt.visible, found)
		})
	}
}

func TestRenderStaticTextStyleMatching(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "header", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
			&StaticTextElement{Content: "Thank you", ID: "footer_note"},
			&StyleElement{Elements: []string{"text:footer_note"}, Props: map[string]any{"color": "#6b7280"}},
			&StyleElement{Elements: []string{"footer_note"}, Props: map[string]any{"color": "#000000"}},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)

	text := out.Nodes[0].Children[0]
	require.Equal(t, NodeText, text.Kind)
	// First matching style wins even though it is declared after the text.
	assert.Equal(t, map[string]string{"color": "#6b7280"}, text.Props)
}

func TestRenderStyleSheetDocumentOrder(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "header", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
			&StyleElement{Elements: []string{"header", "text:title"}, Props: map[string]any{"font-weight": 700, "color": "#111827"}},
		}},
		{Type: "summary", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
			&StyleElement{Elements: []string{"summary"}, Props: map[string]any{"font-size": "14px"}},
		}},
	}}

	out, err := renderNodes(t, tpl, invoiceData())
	require.NoError(t, err)

	assert.Equal(t,
		"header, text:title { color: #111827; font-weight: 700; }\nsummary { font-size: 14px; }",
		out.Styles)
}

// panicElement blows up when the render walk inspects it.
type panicElement struct{}

func (*panicElement) elementType() string { panic("malformed element") }

func TestRenderElementIsolation(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "header", Grid: Grid{Columns: 2, MinRows: 1}, Content: ElementList{
			&ListElement{Name: "not_an_array_field"},
			&ListElement{Name: "items", Content: ElementList{&panicElement{}}},
			&FieldElement{Name: "invoice_number"},
			&StaticTextElement{Content: "Invoice"},
		}},
	}}

	data := invoiceData()
	data["not_an_array_field"] = "oops"

	out, err := renderNodes(t, tpl, data)
	require.NoError(t, err)

	var texts []string
	for _, child := range out.Nodes[0].Children {
		if child.Kind == NodeText {
			texts = append(texts, child.Text)
		}
	}
	// Siblings of the malformed elements render normally.
	assert.Contains(t, texts, "INV-000123")
	assert.Contains(t, texts, "Invoice")
}

func TestRenderScenarioSummaryGlobal(t *testing.T) {
	tpl := &Template{
		Globals: []GlobalCalculation{
			{Name: "items_sum", Type: "calculation", Expression: Expression{Field: "items", Operation: "sum"}},
		},
		Sections: []Section{
			{Type: "items", Grid: Grid{Columns: 1, MinRows: 1}, Content: ElementList{
				&ListElement{Name: "items", Content: ElementList{
					&FieldElement{Name: "description"},
					&FieldElement{Name: "total_price"},
				}},
			}},
			{Type: "summary", Grid: Grid{Columns: 2, MinRows: 1}, Content: ElementList{
				&FieldElement{Name: "items_sum", Position: &Position{Column: 2, Row: 1}},
			}},
		},
	}
	data := map[string]any{
		"items": []map[string]any{
			{"description": "A", "total_price": 10.0},
			{"description": "B", "total_price": 15.0},
		},
	}

	out, err := renderNodes(t, tpl, data)
	require.NoError(t, err)

	summary := out.Nodes[1]
	require.Len(t, summary.Children, 1)
	assert.Equal(t, "25", summary.Children[0].Text)
}

func TestRenderHTMLOutput(t *testing.T) {
	tpl := &Template{Sections: []Section{
		{Type: "header", Grid: Grid{Columns: 2, MinRows: 3}, Content: ElementList{
			&StaticTextElement{Content: "Fees & <charges>", Position: &Position{Column: 1, Row: 1}},
		}},
	}}

	out, err := RenderHTML(tpl, invoiceData(), Metadata{TemplateID: "tpl-1", InvoiceID: "inv-1"}, nil)
	require.NoError(t, err)

	assert.Contains(t, out.HTML, `class="section section-header"`)
	assert.Contains(t, out.HTML, "grid-template-columns: repeat(2, 1fr)")
	assert.Contains(t, out.HTML, "grid-template-rows: repeat(3, minmax(12px, auto))")
	assert.Contains(t, out.HTML, "Fees &amp; &lt;charges&gt;")
	assert.Contains(t, out.HTML, `class="filler-row"`)
	assert.Equal(t, "tpl-1", out.Metadata.TemplateID)
	assert.Equal(t, "inv-1", out.Metadata.InvoiceID)
}
