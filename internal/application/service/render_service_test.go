package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	infraRepo "github.com/billflow/billflow-api/internal/infrastructure/repository"
)

const testTemplateJSON = `{
  "sections": [
    {
      "type": "header",
      "grid": {"columns": 2, "minRows": 1},
      "content": [
        {"type": "staticText", "content": "INVOICE", "position": {"column": 1, "row": 1}},
        {"type": "field", "name": "number", "position": {"column": 2, "row": 1}}
      ]
    },
    {
      "type": "items",
      "grid": {"columns": 2, "minRows": 1},
      "content": [
        {"type": "list", "name": "items", "content": [
          {"type": "field", "name": "description"},
          {"type": "field", "name": "total_price"}
        ]}
      ]
    },
    {
      "type": "summary",
      "grid": {"columns": 2, "minRows": 1},
      "content": [
        {"type": "field", "name": "amount_due", "position": {"column": 2, "row": 1}}
      ]
    }
  ]
}`

func newRenderFixture(db *gorm.DB) (*RenderService, *TemplateService) {
	renderSvc := NewRenderService(
		infraRepo.NewInvoiceRepository(db),
		infraRepo.NewTemplateRepository(db),
		nil,
	)
	return renderSvc, NewTemplateService(infraRepo.NewTemplateRepository(db))
}

func TestRenderInvoiceWithDefaultTemplate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	renderSvc, templateSvc := newRenderFixture(db)
	ctx := context.Background()

	_, err := templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID:     user.ID,
		Name:       "Default layout",
		ParsedJSON: testTemplateJSON,
		IsDefault:  true,
	})
	require.NoError(t, err)

	invoice := openInvoice(t, db, user.ID, client.ID)

	html, err := renderSvc.RenderInvoiceHTML(ctx, &RenderInvoiceInput{
		UserID:    user.ID,
		InvoiceID: invoice.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, html.HTML, invoice.Number)
	assert.Contains(t, html.HTML, "Development")

	tree, err := renderSvc.RenderInvoiceTree(ctx, &RenderInvoiceInput{
		UserID:    user.ID,
		InvoiceID: invoice.ID,
	})
	require.NoError(t, err)
	assert.Len(t, tree.Nodes, 3)
}

func TestRenderTemplatePrecedence(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	renderSvc, templateSvc := newRenderFixture(db)
	ctx := context.Background()

	_, err := templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID:     user.ID,
		Name:       "Default layout",
		ParsedJSON: testTemplateJSON,
		IsDefault:  true,
	})
	require.NoError(t, err)

	override, err := templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID: user.ID,
		Name:   "Override layout",
		ParsedJSON: `{"sections": [{"type": "header", "grid": {"columns": 1, "minRows": 1},
			"content": [{"type": "staticText", "content": "OVERRIDE MARK"}]}]}`,
	})
	require.NoError(t, err)

	invoice := openInvoice(t, db, user.ID, client.ID)

	html, err := renderSvc.RenderInvoiceHTML(ctx, &RenderInvoiceInput{
		UserID:     user.ID,
		InvoiceID:  invoice.ID,
		TemplateID: &override.ID,
	})
	require.NoError(t, err)
	assert.Contains(t, html.HTML, "OVERRIDE MARK")
	assert.NotContains(t, html.HTML, "INVOICE")
}

func TestRenderMissingTemplate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)
	renderSvc, _ := newRenderFixture(db)

	invoice := openInvoice(t, db, user.ID, client.ID)

	_, err := renderSvc.RenderInvoiceHTML(context.Background(), &RenderInvoiceInput{
		UserID:    user.ID,
		InvoiceID: invoice.ID,
	})
	require.Error(t, err)
}

func TestBuildViewModel(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	client := seedClient(t, db, user.ID)

	invoice := openInvoice(t, db, user.ID, client.ID)
	reloaded, err := infraRepo.NewInvoiceRepository(db).GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)

	data := BuildViewModel(reloaded)
	assert.Equal(t, reloaded.Number, data["number"])
	assert.Equal(t, "Sent", data["status"])
	assert.Equal(t, 116.0, data["total"])
	assert.Equal(t, 116.0, data["amount_due"])
	assert.Equal(t, 0.0, data["credit_applied"])

	clientData, ok := data["client"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme Consulting", clientData["name"])

	items, ok := data["items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "Development", items[0]["description"])
	assert.Equal(t, 116.0, items[0]["total_price"])

	_, hasDate := data["issue_date"].(time.Time)
	assert.True(t, hasDate)
}

func TestTemplateVersioningAndDefault(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	_, templateSvc := newRenderFixture(db)
	ctx := context.Background()

	first, err := templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID:     user.ID,
		Name:       "First",
		ParsedJSON: testTemplateJSON,
		IsDefault:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID:     user.ID,
		Name:       "Second",
		ParsedJSON: testTemplateJSON,
		IsDefault:  true,
	})
	require.NoError(t, err)

	// Default moved to the new template
	def, err := templateSvc.GetDefaultTemplate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	reloadedFirst, err := templateSvc.GetTemplate(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloadedFirst.IsDefault)

	// Invalid documents are rejected up front
	_, err = templateSvc.CreateTemplate(ctx, &CreateTemplateInput{
		UserID:     user.ID,
		Name:       "Broken",
		ParsedJSON: `{"sections": [{"type": "header", "grid": {"columns": 1, "minRows": 1}, "content": [{"type": "hologram"}]}]}`,
	})
	require.Error(t, err)

	body := `{"sections": []}`
	updated, err := templateSvc.UpdateTemplate(ctx, &UpdateTemplateInput{
		UserID:     user.ID,
		ID:         second.ID,
		ParsedJSON: &body,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
}
