package renderer

import (
	"encoding/json"
	"fmt"
)

// Element type discriminators as stored in template JSON.
const (
	ElementField       = "field"
	ElementTypeList    = "list"
	ElementConditional = "conditional"
	ElementStaticText  = "staticText"
	ElementStyle       = "style"
)

// Section types with special layout behavior.
const (
	SectionHeader  = "header"
	SectionItems   = "items"
	SectionSummary = "summary"
)

// Template is the parsed invoice-layout document: a list of grid sections plus
// named global calculations computed once per render.
type Template struct {
	Sections []Section           `json:"sections"`
	Globals  []GlobalCalculation `json:"globals,omitempty"`
}

// Section is a top-level grid region of the template.
type Section struct {
	Type    string      `json:"type"`
	Grid    Grid        `json:"grid"`
	Content ElementList `json:"content"`
}

// Grid sizes a section's CSS grid. MinRows is a floor, never a ceiling: the
// rendered row count is max(MinRows, computed content rows).
type Grid struct {
	Columns int `json:"columns"`
	MinRows int `json:"minRows"`
}

// Position places an element on the section grid (1-based).
type Position struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

// Span stretches an element over multiple grid tracks.
type Span struct {
	ColumnSpan int `json:"columnSpan"`
	RowSpan    int `json:"rowSpan"`
}

// Element is the tagged union of template content variants. The concrete types
// are FieldElement, ListElement, ConditionalElement, StaticTextElement and
// StyleElement; the render engine dispatches exhaustively over them.
type Element interface {
	elementType() string
}

// FieldElement renders a single resolved value. Name is either a dotted path
// into the invoice data or the name of a global calculation (globals win).
type FieldElement struct {
	Name     string    `json:"name"`
	Position *Position `json:"position,omitempty"`
	Span     *Span     `json:"span,omitempty"`
}

func (*FieldElement) elementType() string { return ElementField }

// ListElement renders an array of line items, optionally partitioned by
// GroupBy with a per-group aggregation over AggregationField.
type ListElement struct {
	Name             string      `json:"name"`
	GroupBy          string      `json:"groupBy,omitempty"`
	Aggregation      string      `json:"aggregation,omitempty"`
	AggregationField string      `json:"aggregationField,omitempty"`
	Content          ElementList `json:"content"`
	Position         *Position   `json:"position,omitempty"`
	Span             *Span       `json:"span,omitempty"`
}

func (*ListElement) elementType() string { return ElementTypeList }

// Aggregation operations supported by lists and globals.
const (
	AggregationSum   = "sum"
	AggregationCount = "count"
	AggregationAvg   = "avg"
)

// ConditionalElement renders its content only when the condition holds
// against the invoice data.
type ConditionalElement struct {
	Condition Condition   `json:"condition"`
	Content   ElementList `json:"content"`
}

func (*ConditionalElement) elementType() string { return ElementConditional }

// Condition compares a top-level invoice data field against a literal using
// loose comparison semantics (see looseCompare).
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// StaticTextElement renders fixed text. Style elements address it by ID.
type StaticTextElement struct {
	Content  string    `json:"content"`
	ID       string    `json:"id,omitempty"`
	Position *Position `json:"position,omitempty"`
	Span     *Span     `json:"span,omitempty"`
}

func (*StaticTextElement) elementType() string { return ElementStaticText }

// StyleElement declares a CSS rule. Elements holds selector tokens; rules
// addressing a StaticTextElement match its ID as either "text:<id>" or the
// bare "<id>" token.
type StyleElement struct {
	Elements []string       `json:"elements"`
	Props    map[string]any `json:"props"`
}

func (*StyleElement) elementType() string { return ElementStyle }

// GlobalCalculation is a named aggregate computed once over the invoice data
// and injected into field resolution under Name.
type GlobalCalculation struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Expression Expression `json:"expression"`
}

// Expression names the source array field and the operation of a global
// calculation.
type Expression struct {
	Field     string `json:"field"`
	Operation string `json:"operation"`
}

// ElementList decodes the polymorphic "content" arrays found in template JSON
// into concrete Element variants.
type ElementList []Element

func (l *ElementList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(ElementList, 0, len(raw))
	for i, msg := range raw {
		el, err := unmarshalElement(msg)
		if err != nil {
			return fmt.Errorf("content[%d]: %w", i, err)
		}
		out = append(out, el)
	}
	*l = out
	return nil
}

func unmarshalElement(data []byte) (Element, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	var el Element
	switch envelope.Type {
	case ElementField:
		el = &FieldElement{}
	case ElementTypeList:
		el = &ListElement{}
	case ElementConditional:
		el = &ConditionalElement{}
	case ElementStaticText:
		el = &StaticTextElement{}
	case ElementStyle:
		el = &StyleElement{}
	default:
		return nil, fmt.Errorf("unknown element type %q", envelope.Type)
	}

	if err := json.Unmarshal(data, el); err != nil {
		return nil, err
	}
	return el, nil
}

// MarshalJSON re-attaches the type discriminator so templates round-trip.
func (l ElementList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for _, el := range l {
		body, err := json.Marshal(el)
		if err != nil {
			return nil, err
		}
		tagged, err := attachType(body, el.elementType())
		if err != nil {
			return nil, err
		}
		out = append(out, tagged)
	}
	return json.Marshal(out)
}

func attachType(body []byte, elementType string) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(elementType)
	m["type"] = tag
	return json.Marshal(m)
}

// ParseTemplate decodes a stored template document into its AST.
func ParseTemplate(data []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("renderer: invalid template document: %w", err)
	}
	return &tpl, nil
}
