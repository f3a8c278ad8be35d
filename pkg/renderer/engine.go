package renderer

import (
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Fatal render failures. Everything else is absorbed at the element boundary.
var (
	ErrNilTemplate = errors.New("renderer: template has no parsed structure")
	ErrNilData     = errors.New("renderer: invoice data is missing")
)

// Placement positions emitted content on the enclosing grid. AutoRow content
// flows with the grid instead of pinning to an explicit row.
type Placement struct {
	Column     int  `json:"column"`
	Row        int  `json:"row"`
	ColumnSpan int  `json:"column_span"`
	RowSpan    int  `json:"row_span"`
	AutoRow    bool `json:"auto_row,omitempty"`
}

// Emitter is the output capability injected into the layout walk. The engine
// decides what to render and where; an emitter decides how it materializes
// (markup string or node tree).
type Emitter interface {
	// BeginSection opens a grid container with the given fixed column count
	// and row count (already floored to the section's minimum).
	BeginSection(sectionType string, columns, rows int)
	EndSection()
	// Text emits one positioned piece of content with optional style props.
	Text(content string, place Placement, props map[string]string)
	// BeginList opens a nested sub-grid for list items.
	BeginList(columns int, place Placement)
	EndList()
	// Filler emits one empty padding row.
	Filler()
}

// listColumns is the fixed sub-grid width lists render into.
const listColumns = 12

// Engine walks a template AST and drives an Emitter. A render call is pure:
// no state survives between invocations, so one Engine may serve concurrent
// renders.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a render engine. A nil logger disables element-failure
// observation.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Render lays out the template against the invoice data, emitting output
// through em. It returns the accumulated style sheet. Only a missing template
// or missing data fail the call; a malformed element degrades to an empty
// render of that element alone.
func (e *Engine) Render(tpl *Template, data map[string]any, em Emitter) (string, error) {
	if tpl == nil {
		return "", ErrNilTemplate
	}
	if data == nil {
		return "", ErrNilData
	}

	globals := ComputeGlobals(tpl.Globals, data)
	var styles stylesheet
	for i := range tpl.Sections {
		e.renderSection(&tpl.Sections[i], data, globals, em, &styles)
	}
	return styles.String(), nil
}

func (e *Engine) renderSection(sec *Section, data map[string]any, globals map[string]float64, em Emitter, styles *stylesheet) {
	contentRows := calculateContentRows(sec.Content, data)
	actualRows := contentRows
	if sec.Grid.MinRows > actualRows {
		actualRows = sec.Grid.MinRows
	}

	em.BeginSection(sec.Type, sec.Grid.Columns, actualRows)
	defer em.EndSection()

	sectionStyles := collectStyles(sec.Content)
	for _, el := range sec.Content {
		e.renderElement(el, data, globals, em, styles, sectionStyles)
	}

	// Summary sections size exactly to content: the row floor still holds,
	// but no filler nodes are emitted to reach it.
	if sec.Type != SectionSummary {
		for i := contentRows; i < actualRows; i++ {
			em.Filler()
		}
	}
}

// renderElement dispatches one element, converting any panic into an empty
// render for that element only so siblings are unaffected.
func (e *Engine) renderElement(el Element, data map[string]any, globals map[string]float64, em Emitter, styles *stylesheet, sectionStyles []*StyleElement) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("template element failed to render",
				zap.String("element", el.elementType()),
				zap.Any("reason", r))
		}
	}()

	switch el := el.(type) {
	case *FieldElement:
		em.Text(ResolveValue(el.Name, data, globals), placementOf(el.Position, el.Span), nil)
	case *ListElement:
		e.renderList(el, data, em)
	case *ConditionalElement:
		e.renderConditional(el, data, globals, em, styles, sectionStyles)
	case *StaticTextElement:
		em.Text(el.Content, placementOf(el.Position, el.Span), matchStyleProps(sectionStyles, el.ID))
	case *StyleElement:
		styles.add(el)
	}
}

func (e *Engine) renderList(list *ListElement, data map[string]any, em Emitter) {
	raw, ok := lookupPath(data, list.Name)
	if !ok {
		return
	}
	items, ok := itemList(raw)
	if !ok {
		return
	}

	em.BeginList(listColumns, placementOf(list.Position, list.Span))
	defer em.EndList()

	if list.GroupBy == "" {
		e.renderListItems(list.Content, items, em)
		return
	}

	for _, g := range groupItems(items, list.GroupBy) {
		header := list.GroupBy + ": " + g.Name
		if list.Aggregation != "" {
			header += " (" + list.Aggregation + ": " + formatNumber(aggregate(list, g.Items)) + ")"
		}
		em.Text(header, Placement{Column: 1, ColumnSpan: listColumns, RowSpan: 1, AutoRow: true},
			map[string]string{"font-weight": "bold"})
		e.renderListItems(list.Content, g.Items, em)
	}
}

// renderListItems renders every content field for every item with auto row
// flow. Only field elements are supported inside lists; anything else is
// skipped.
func (e *Engine) renderListItems(content ElementList, items []map[string]any, em Emitter) {
	for _, item := range items {
		for _, el := range content {
			field, ok := el.(*FieldElement)
			if !ok {
				e.log.Warn("unsupported list item element skipped",
					zap.String("element", el.elementType()))
				continue
			}

			value, present := item[field.Name]
			display := missingDisplay
			if present {
				display = FormatValue(value)
			}

			place := placementOf(field.Position, field.Span)
			place.AutoRow = true
			em.Text(display, place, nil)
		}
	}
}

func (e *Engine) renderConditional(cond *ConditionalElement, data map[string]any, globals map[string]float64, em Emitter, styles *stylesheet, sectionStyles []*StyleElement) {
	raw, defined := data[cond.Condition.Field]
	if !defined {
		return
	}
	if !looseCompare(raw, cond.Condition.Op, cond.Condition.Value) {
		return
	}
	for _, el := range cond.Content {
		e.renderElement(el, data, globals, em, styles, sectionStyles)
	}
}

func placementOf(pos *Position, span *Span) Placement {
	place := Placement{Column: 1, Row: 1, ColumnSpan: 1, RowSpan: 1}
	if pos != nil {
		place.Column = pos.Column
		place.Row = pos.Row
	}
	if span != nil {
		if span.ColumnSpan > 0 {
			place.ColumnSpan = span.ColumnSpan
		}
		if span.RowSpan > 0 {
			place.RowSpan = span.RowSpan
		}
	}
	return place
}

// stylesheet accumulates compiled CSS rules in document order. It is
// threaded through the render call rather than shared across renders.
type stylesheet struct {
	rules []string
}

func (s *stylesheet) add(style *StyleElement) {
	s.rules = append(s.rules, compileRule(style))
}

func (s *stylesheet) String() string {
	return strings.Join(s.rules, "\n")
}

// compileRule turns a style element into "<selectors> { prop: value; ... }".
// Props are emitted in sorted key order so identical inputs yield identical
// sheets.
func compileRule(style *StyleElement) string {
	var b strings.Builder
	b.WriteString(strings.Join(style.Elements, ", "))
	b.WriteString(" { ")
	for _, key := range sortedKeys(style.Props) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(propValue(style.Props[key]))
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

func propValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	default:
		if n, ok := toNumber(v); ok {
			return formatNumber(n)
		}
		return FormatValue(v)
	}
}

func sortedKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// collectStyles gathers a section's style declarations so static text
// rendered before a style element in document order can still match it.
func collectStyles(content ElementList) []*StyleElement {
	var styles []*StyleElement
	for _, el := range content {
		if style, ok := el.(*StyleElement); ok {
			styles = append(styles, style)
		}
	}
	return styles
}

// matchStyleProps finds the first style whose selector tokens address the
// static text ID, either as "text:<id>" or as the bare ID.
func matchStyleProps(styles []*StyleElement, id string) map[string]string {
	if id == "" {
		return nil
	}
	for _, style := range styles {
		for _, selector := range style.Elements {
			if selector == id || selector == "text:"+id {
				props := make(map[string]string, len(style.Props))
				for _, key := range sortedKeys(style.Props) {
					props[key] = propValue(style.Props[key])
				}
				return props
			}
		}
	}
	return nil
}
