package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicepipe/dto"
	"invoicepipe/service"
)

type InvoiceHandler struct {
	extractionService *service.ExtractionService
	maxFileSize       int64
}

func NewInvoiceHandler(extractionService *service.ExtractionService, maxFileSize int64) *InvoiceHandler {
	return &InvoiceHandler{
		extractionService: extractionService,
		maxFileSize:       maxFileSize,
	}
}

// Extract handles the POST /invoices/extract endpoint
func (h *InvoiceHandler) Extract(c *gin.Context) {
	log.Println("Received invoice extraction request")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "No file provided", err)
		return
	}

	request := &dto.ExtractRequest{File: fileHeader}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	if fileHeader.Size > h.maxFileSize {
		h.sendError(c, http.StatusRequestEntityTooLarge, "File exceeds size limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to read uploaded file", err)
		return
	}

	log.Printf("Processing %s (%d bytes)", fileHeader.Filename, len(data))

	response, err := h.extractionService.ProcessFile(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrNoTextExtracted):
			h.sendError(c, http.StatusUnprocessableEntity, "No text could be extracted", err)
		case errors.Is(err, dto.ErrInvalidDraft):
			h.sendError(c, http.StatusBadGateway, "Extraction model returned invalid data", err)
		default:
			h.sendError(c, http.StatusInternalServerError, "Failed to process invoice", err)
		}
		return
	}

	log.Println("Invoice extraction completed successfully")
	c.JSON(http.StatusOK, response)
}

// GetByHash handles the GET /invoices/:hash endpoint
func (h *InvoiceHandler) GetByHash(c *gin.Context) {
	hash := c.Param("hash")
	if hash == "" {
		h.sendError(c, http.StatusBadRequest, "Hash is required", nil)
		return
	}

	result, err := h.extractionService.GetByHash(c.Request.Context(), hash)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to look up invoice", err)
		return
	}
	if result == nil {
		h.sendError(c, http.StatusNotFound, "Invoice not found", nil)
		return
	}

	c.JSON(http.StatusOK, dto.ExtractResponse{Result: result, Cached: true})
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
