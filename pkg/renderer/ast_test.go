package renderer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplateJSON = `{
  "sections": [
    {
      "type": "header",
      "grid": {"columns": 2, "minRows": 3},
      "content": [
        {"type": "staticText", "content": "INVOICE", "id": "title", "position": {"column": 1, "row": 1}},
        {"type": "field", "name": "invoice_number", "position": {"column": 2, "row": 1}, "span": {"columnSpan": 1, "rowSpan": 1}},
        {"type": "style", "elements": ["text:title"], "props": {"font-size": "20px", "font-weight": 700}}
      ]
    },
    {
      "type": "items",
      "grid": {"columns": 1, "minRows": 4},
      "content": [
        {
          "type": "list",
          "name": "items",
          "groupBy": "category",
          "aggregation": "sum",
          "aggregationField": "total_price",
          "content": [
            {"type": "field", "name": "description", "position": {"column": 1, "row": 1}, "span": {"columnSpan": 8, "rowSpan": 1}},
            {"type": "field", "name": "total_price", "position": {"column": 9, "row": 1}, "span": {"columnSpan": 4, "rowSpan": 1}}
          ]
        },
        {
          "type": "conditional",
          "condition": {"field": "status", "op": "==", "value": "overdue"},
          "content": [{"type": "staticText", "content": "OVERDUE"}]
        }
      ]
    }
  ],
  "globals": [
    {"name": "grand_total", "type": "calculation", "expression": {"field": "items", "operation": "sum"}}
  ]
}`

func TestParseTemplate(t *testing.T) {
	tpl, err := ParseTemplate([]byte(sampleTemplateJSON))
	require.NoError(t, err)

	require.Len(t, tpl.Sections, 2)
	require.Len(t, tpl.Globals, 1)

	header := tpl.Sections[0]
	assert.Equal(t, "header", header.Type)
	assert.Equal(t, 2, header.Grid.Columns)
	assert.Equal(t, 3, header.Grid.MinRows)
	require.Len(t, header.Content, 3)

	title, ok := header.Content[0].(*StaticTextElement)
	require.True(t, ok)
	assert.Equal(t, "INVOICE", title.Content)
	assert.Equal(t, "title", title.ID)
	require.NotNil(t, title.Position)
	assert.Equal(t, 1, title.Position.Column)

	field, ok := header.Content[1].(*FieldElement)
	require.True(t, ok)
	assert.Equal(t, "invoice_number", field.Name)

	style, ok := header.Content[2].(*StyleElement)
	require.True(t, ok)
	assert.Equal(t, []string{"text:title"}, style.Elements)

	list, ok := tpl.Sections[1].Content[0].(*ListElement)
	require.True(t, ok)
	assert.Equal(t, "category", list.GroupBy)
	assert.Equal(t, "sum", list.Aggregation)
	require.Len(t, list.Content, 2)

	cond, ok := tpl.Sections[1].Content[1].(*ConditionalElement)
	require.True(t, ok)
	assert.Equal(t, "status", cond.Condition.Field)
	assert.Equal(t, "overdue", cond.Condition.Value)

	assert.Equal(t, "grand_total", tpl.Globals[0].Name)
	assert.Equal(t, "sum", tpl.Globals[0].Expression.Operation)
}

func TestParseTemplateUnknownElement(t *testing.T) {
	_, err := ParseTemplate([]byte(`{"sections":[{"type":"header","grid":{"columns":1,"minRows":1},"content":[{"type":"barcode"}]}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown element type")
}

func TestParseTemplateInvalidJSON(t *testing.T) {
	_, err := ParseTemplate([]byte(`{"sections": [`))
	assert.Error(t, err)
}

func TestElementListRoundTrip(t *testing.T) {
	tpl, err := ParseTemplate([]byte(sampleTemplateJSON))
	require.NoError(t, err)

	encoded, err := json.Marshal(tpl)
	require.NoError(t, err)

	again, err := ParseTemplate(encoded)
	require.NoError(t, err)
	assert.Equal(t, tpl, again)
}
