package client

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient wraps Tesseract OCR for recognizing text on invoice page
// images.
type TesseractClient struct {
	dataPath string
	language string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: "eng",
	}
}

// ExtractTextAndQuality recognizes text in an image file and returns the
// average word confidence alongside it.
func (tc *TesseractClient) ExtractTextAndQuality(filePath string) (string, float64, error) {
	c := gosseract.NewClient()
	defer c.Close()

	if tc.dataPath != "" {
		c.SetTessdataPrefix(tc.dataPath)
	}
	if err := c.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := c.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Confidence is best-effort; the text still stands on its own.
		return text, 0, nil
	}
	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	avg := 0.0
	if len(boxes) > 0 {
		avg = total / float64(len(boxes))
	}
	return text, avg, nil
}

// ExtractFromImage recognizes text on a decoded page image. The image is
// spooled to a temporary PNG because Tesseract reads from disk.
func (tc *TesseractClient) ExtractFromImage(img image.Image) (string, float64, error) {
	tempFile, err := os.CreateTemp("", "ocr-page-*.png")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp image file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if err := png.Encode(tempFile, img); err != nil {
		tempFile.Close()
		return "", 0, fmt.Errorf("failed to encode image to PNG: %w", err)
	}
	tempFile.Close()

	return tc.ExtractTextAndQuality(tempPath)
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
