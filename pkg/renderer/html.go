package renderer

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTMLResult is the serializable render output.
type HTMLResult struct {
	HTML     string   `json:"html"`
	Styles   string   `json:"styles"`
	Metadata Metadata `json:"metadata"`
}

// Metadata identifies what was rendered and when.
type Metadata struct {
	TemplateID string    `json:"template_id"`
	InvoiceID  string    `json:"invoice_id"`
	RenderedAt time.Time `json:"rendered_at"`
}

// RenderHTML lays out the template in serializable mode: a self-contained
// HTML string plus the compiled style sheet.
func RenderHTML(tpl *Template, data map[string]any, meta Metadata, log *zap.Logger) (*HTMLResult, error) {
	em := &HTMLEmitter{}
	styles, err := NewEngine(log).Render(tpl, data, em)
	if err != nil {
		return nil, err
	}
	return &HTMLResult{
		HTML:     em.String(),
		Styles:   styles,
		Metadata: meta,
	}, nil
}

// HTMLEmitter materializes layout events as CSS-grid markup.
type HTMLEmitter struct {
	b strings.Builder
}

func (h *HTMLEmitter) String() string { return h.b.String() }

func (h *HTMLEmitter) BeginSection(sectionType string, columns, rows int) {
	fmt.Fprintf(&h.b,
		`<div class="section section-%s" style="display: grid; grid-template-columns: repeat(%d, 1fr); grid-template-rows: repeat(%d, minmax(12px, auto)); gap: 8px;">`,
		html.EscapeString(sectionType), columns, rows)
}

func (h *HTMLEmitter) EndSection() {
	h.b.WriteString("</div>")
}

func (h *HTMLEmitter) Text(content string, place Placement, props map[string]string) {
	h.b.WriteString(`<div style="`)
	h.b.WriteString(placementCSS(place))
	for _, key := range sortedPropKeys(props) {
		fmt.Fprintf(&h.b, " %s: %s;", key, props[key])
	}
	h.b.WriteString(`">`)
	h.b.WriteString(html.EscapeString(content))
	h.b.WriteString("</div>")
}

func (h *HTMLEmitter) BeginList(columns int, place Placement) {
	fmt.Fprintf(&h.b,
		`<div class="list" style="%s display: grid; grid-template-columns: repeat(%d, 1fr); gap: 8px;">`,
		placementCSS(place), columns)
}

func (h *HTMLEmitter) EndList() {
	h.b.WriteString("</div>")
}

func (h *HTMLEmitter) Filler() {
	h.b.WriteString(`<div class="filler-row"></div>`)
}

func placementCSS(place Placement) string {
	row := fmt.Sprintf("%d / span %d", place.Row, place.RowSpan)
	if place.AutoRow {
		row = "auto"
	}
	return fmt.Sprintf("grid-column: %d / span %d; grid-row: %s;", place.Column, place.ColumnSpan, row)
}

func sortedPropKeys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
