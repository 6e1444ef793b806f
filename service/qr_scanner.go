package service

import (
	"fmt"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRScanner decodes payment QR codes printed on invoices (EPC transfers,
// UPI strings, payment portal links) so the reference survives into the
// persisted record.
type QRScanner struct{}

func NewQRScanner() *QRScanner {
	return &QRScanner{}
}

// ScanPaymentRef decodes the first QR code found on a page image and
// returns its payload when it looks like payment information. Pages without
// a QR code return an error; callers treat that as "nothing to capture".
func (q *QRScanner) ScanPaymentRef(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("no QR code decoded: %w", err)
	}

	payload := strings.TrimSpace(result.GetText())
	if !looksLikePaymentRef(payload) {
		return "", fmt.Errorf("QR payload is not a payment reference")
	}
	return payload, nil
}

// looksLikePaymentRef filters out QR payloads that are clearly not payment
// data (vCards, plain serial numbers shorter than any IBAN).
func looksLikePaymentRef(payload string) bool {
	if payload == "" {
		return false
	}
	lower := strings.ToLower(payload)
	prefixes := []string{"http://", "https://", "upi://", "upi:", "bcd"}
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	// EPC payloads without the BCD header still carry an IBAN-length token.
	return len(payload) >= 15 && !strings.HasPrefix(lower, "begin:")
}
