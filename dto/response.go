package dto

import "errors"

// Custom errors
var (
	ErrUnsupportedFileType = errors.New("unsupported file type: expected pdf or image")
	ErrNoTextExtracted     = errors.New("no text could be extracted from the document")
	ErrInvalidDraft        = errors.New("LLM returned data outside the invoice_v1 contract")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractResponse is the success payload for POST /invoices/extract.
type ExtractResponse struct {
	Result *ExtractionResult `json:"result"`
	Cached bool              `json:"cached"`
}
