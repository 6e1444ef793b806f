package dto

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ExtractRequest represents the incoming invoice upload.
type ExtractRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".bmp":  true,
}

// Validate performs basic validation on the request
func (r *ExtractRequest) Validate() error {
	if r.File == nil {
		return errors.New("file is required")
	}
	ext := strings.ToLower(filepath.Ext(r.File.Filename))
	if !supportedExtensions[ext] {
		return ErrUnsupportedFileType
	}
	return nil
}
