package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invoicepipe/client"
	"invoicepipe/dto"
	"invoicepipe/reconcile"
	"invoicepipe/storage"
	"invoicepipe/utils"
)

// ExtractionService orchestrates the document pipeline: text recognition,
// LLM structuring, deterministic reconciliation and persistence.
type ExtractionService struct {
	pdf           PDFProcessor
	tesseract     *client.TesseractClient
	llm           *client.LLMClient
	store         *storage.Store
	engine        *reconcile.Engine
	qr            *QRScanner
	minTextLength int
	maxOCRPages   int
}

func NewExtractionService(
	pdf PDFProcessor,
	tesseract *client.TesseractClient,
	llm *client.LLMClient,
	store *storage.Store,
	engine *reconcile.Engine,
	minTextLength int,
	maxOCRPages int,
) *ExtractionService {
	if minTextLength <= 0 {
		minTextLength = 40
	}
	if maxOCRPages <= 0 {
		maxOCRPages = 10
	}
	return &ExtractionService{
		pdf:           pdf,
		tesseract:     tesseract,
		llm:           llm,
		store:         store,
		engine:        engine,
		qr:            NewQRScanner(),
		minTextLength: minTextLength,
		maxOCRPages:   maxOCRPages,
	}
}

// ProcessFile runs the full pipeline for one uploaded document. Results are
// cached by content hash: reprocessing an identical file returns the stored
// record without touching the OCR or LLM layers.
func (s *ExtractionService) ProcessFile(ctx context.Context, fileName string, data []byte) (*dto.ExtractResponse, error) {
	fileHash := utils.FileHash(data)

	cached, err := s.store.GetByHash(ctx, fileHash)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if cached != nil {
		log.Printf("Serving %s from cache (hash %.12s)", fileName, fileHash)
		return &dto.ExtractResponse{Result: cached, Cached: true}, nil
	}

	pages, paymentRef, err := s.recognizeText(fileName, data)
	if err != nil {
		return nil, err
	}
	pages = cleanPages(pages)

	rawText := utils.JoinPages(pages)
	if strings.TrimSpace(rawText) == "" {
		return nil, dto.ErrNoTextExtracted
	}
	if totalChars(pages) < s.minTextLength {
		log.Printf("Extracted text is very short (%d characters, recommended minimum %d)",
			totalChars(pages), s.minTextLength)
	}

	promptText := utils.CompactPromptText(rawText)
	draft, err := s.inferDraft(ctx, promptText, len(pages))
	if err != nil {
		return nil, err
	}

	draft.Invoice.CurrencyCode = resolveCurrency(draft.Invoice.CurrencyCode, promptText)
	if paymentRef != "" && draft.Invoice.PaymentRef == "" {
		draft.Invoice.PaymentRef = paymentRef
	}
	draft.Items = normalizeItems(draft.Items, draft.Invoice.VendorName)
	draft.Items = mergeDescriptorItems(draft.Items, &draft.Invoice)

	reconciled, err := s.engine.Reconcile(promptText, *draft)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	result := s.buildResult(reconciled, fileHash)
	if err := s.store.Save(ctx, fileName, rawText, result); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}

	log.Printf("Processed %s: vendor=%q total=%d cents, %d items",
		fileName, result.Invoice.VendorName, dto.Cents(result.Invoice.TotalCents), len(result.Items))
	return &dto.ExtractResponse{Result: result, Cached: false}, nil
}

// GetByHash returns a previously processed document, or nil when unknown.
func (s *ExtractionService) GetByHash(ctx context.Context, fileHash string) (*dto.ExtractionResult, error) {
	return s.store.GetByHash(ctx, fileHash)
}

// recognizeText extracts page texts from the document. PDFs are read via
// their embedded text layer first; image files and text-poor PDFs fall back
// to OCR on the page images, which is also where payment QR codes are read.
func (s *ExtractionService) recognizeText(fileName string, data []byte) ([]string, string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".pdf" {
		pages, err := s.pdf.ExtractPageTexts(data)
		if err != nil {
			log.Printf("PDF text layer unreadable for %s: %v, falling back to OCR", fileName, err)
		} else if totalChars(pages) >= s.minTextLength {
			return pages, "", nil
		}
		images, err := s.pdf.ExtractImages(data)
		if err != nil {
			return nil, "", fmt.Errorf("extract page images: %w", err)
		}
		return s.ocrImages(images)
	}

	// Tesseract reads image files natively, including formats the Go image
	// registry does not decode (TIFF, BMP). QR scanning is best-effort and
	// only runs when Go can decode the image.
	tempFile, err := os.CreateTemp("", "invoice-*"+ext)
	if err != nil {
		return nil, "", fmt.Errorf("spool image: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return nil, "", fmt.Errorf("spool image: %w", err)
	}
	tempFile.Close()

	text, confidence, err := s.tesseract.ExtractTextAndQuality(tempPath)
	if err != nil {
		return nil, "", fmt.Errorf("ocr image: %w", err)
	}
	log.Printf("OCR image: %d characters, confidence %.1f", len(text), confidence)

	var paymentRef string
	if img, _, decodeErr := image.Decode(bytes.NewReader(data)); decodeErr == nil {
		if ref, qrErr := s.qr.ScanPaymentRef(img); qrErr == nil {
			paymentRef = ref
		}
	}
	return []string{text}, paymentRef, nil
}

func (s *ExtractionService) ocrImages(images []image.Image) ([]string, string, error) {
	if len(images) > s.maxOCRPages {
		log.Printf("Document has %d pages, OCR capped at %d", len(images), s.maxOCRPages)
		images = images[:s.maxOCRPages]
	}

	var pages []string
	var paymentRef string
	for i, img := range images {
		text, confidence, err := s.tesseract.ExtractFromImage(img)
		if err != nil {
			return nil, "", fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		log.Printf("OCR page %d: %d characters, confidence %.1f", i+1, len(text), confidence)
		pages = append(pages, text)

		if paymentRef == "" {
			if ref, err := s.qr.ScanPaymentRef(img); err == nil {
				paymentRef = ref
			}
		}
	}
	return pages, paymentRef, nil
}

func (s *ExtractionService) inferDraft(ctx context.Context, promptText string, pageCount int) (*dto.DraftInvoice, error) {
	messages := []client.ChatMessage{
		{Role: "system", Content: buildSystemPrompt()},
		{Role: "user", Content: buildUserPrompt(promptText)},
	}
	budget := dynamicCompletionBudget(pageCount)

	response, err := s.llm.Chat(ctx, messages, 0.0, budget)
	if err != nil {
		return nil, fmt.Errorf("llm inference: %w", err)
	}
	return parseDraftResponse(response)
}

func (s *ExtractionService) buildResult(reconciled reconcile.ReconciledInvoice, fileHash string) *dto.ExtractionResult {
	inv := reconciled.Invoice

	var existing []string
	var confidence *float64
	if inv.Notes != nil {
		existing = filterFalsePositiveWarnings(inv.Notes.Warnings, &inv.Invoice)
		confidence = inv.Notes.Confidence
	}
	warnings := append(existing, reconciled.Warnings...)

	result := &dto.ExtractionResult{
		SchemaVersion: dto.SchemaVersion,
		Invoice:       inv.Invoice,
		Items:         inv.Items,
		FileHash:      fileHash,
		ProcessedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(warnings) > 0 || confidence != nil {
		result.Notes = &dto.Notes{Warnings: warnings, Confidence: confidence}
	}
	return result
}

// resolveCurrency defaults to USD unless the text carries explicit evidence
// of another currency.
func resolveCurrency(code, text string) string {
	if strings.ContainsRune(text, '€') {
		return "EUR"
	}
	if strings.ContainsRune(text, '£') {
		return "GBP"
	}
	if code != "" && code != "UNK" && !strings.ContainsRune(text, '$') {
		return code
	}
	return "USD"
}

// dynamicCompletionBudget scales completion tokens with document size,
// capped at 1024.
func dynamicCompletionBudget(pageCount int) int {
	if pageCount < 1 {
		pageCount = 1
	}
	budget := 256 + 120*pageCount
	if budget > 1024 {
		budget = 1024
	}
	return budget
}

// cleanPages rebuilds each page from its trimmed, non-empty lines. Extractor
// output carries stray blank lines and edge whitespace that would otherwise
// reach the stored raw text and the prompt.
func cleanPages(pages []string) []string {
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = strings.Join(utils.CleanLines(page), "\n")
	}
	return out
}

func totalChars(pages []string) int {
	total := 0
	for _, page := range pages {
		total += len(page)
	}
	return total
}
