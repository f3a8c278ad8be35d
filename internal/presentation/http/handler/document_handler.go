package handler

import (
	"io"

	"github.com/billflow/billflow-api/internal/application/service"
	"github.com/billflow/billflow-api/internal/domain/enum"
	"github.com/billflow/billflow-api/internal/presentation/http/dto/response"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles document upload and download HTTP requests
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// List handles listing documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var params pagination.UnifiedPaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid pagination parameters")
		return
	}

	var clientID, invoiceID *uuid.UUID
	if clientIDStr := c.Query("client_id"); clientIDStr != "" {
		id, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		clientID = &id
	}
	if invoiceIDStr := c.Query("invoice_id"); invoiceIDStr != "" {
		id, err := uuid.Parse(invoiceIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid invoice ID")
			return
		}
		invoiceID = &id
	}

	if params.IsCursorBased() {
		result, err := h.documentService.ListDocumentsByCursor(c.Request.Context(), *userID, params.ToCursorParams(), clientID, invoiceID, IsSuperAdmin(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Documents retrieved successfully", pagination.NewUnifiedPaginatedResultFromCursor(result.Items, result.Pagination))
		return
	}

	result, err := h.documentService.ListDocuments(c.Request.Context(), *userID, params.ToPaginationParams(), clientID, invoiceID, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Documents retrieved successfully", pagination.NewUnifiedPaginatedResultFromPage(result.Items, result.Pagination))
}

// Upload handles a multipart document upload
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required")
		return
	}

	input := &service.UploadDocumentInput{
		UserID:      *userID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Type:        enum.DocumentTypeOther,
	}

	if typeStr := c.PostForm("type"); typeStr != "" {
		var docType enum.DocumentType
		_ = docType.UnmarshalJSON([]byte(`"` + typeStr + `"`))
		input.Type = docType
	}
	if clientIDStr := c.PostForm("client_id"); clientIDStr != "" {
		id, err := uuid.Parse(clientIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid client ID")
			return
		}
		input.ClientID = &id
	}
	if invoiceIDStr := c.PostForm("invoice_id"); invoiceIDStr != "" {
		id, err := uuid.Parse(invoiceIDStr)
		if err != nil {
			response.BadRequest(c, "Invalid invoice ID")
			return
		}
		input.InvoiceID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()
	input.Content = file

	document, err := h.documentService.UploadDocument(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Document uploaded successfully", document)
}

// Get handles getting document metadata
func (h *DocumentHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid document ID")
		return
	}

	document, err := h.documentService.GetDocument(c.Request.Context(), *userID, id, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Document retrieved successfully", document)
}

// Download handles streaming the stored file back to the client
func (h *DocumentHandler) Download(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid document ID")
		return
	}

	document, rc, err := h.documentService.OpenDocument(c.Request.Context(), *userID, id, IsSuperAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	contentType := document.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+document.FileName+`"`)
	c.Header("Content-Type", contentType)
	c.Status(200)
	_, _ = io.Copy(c.Writer, rc)
}

// Delete handles deleting a document
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid document ID")
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), *userID, id, IsSuperAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Document deleted successfully", nil)
}
