package validation

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/h2non/filetype"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pdf"
)

// Допустимые типы документов.
const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// Ошибки проверки загружаемого файла.
var (
	ErrFileTooLarge       = errors.New("file exceeds the upload size limit")
	ErrEmptyFile          = errors.New("file is empty")
	ErrUnsupportedType    = errors.New("only PDF, JPEG and PNG files are accepted")
	ErrContentMismatch    = errors.New("file content does not match its declared type")
	ErrUnreadablePDF      = errors.New("pdf file cannot be read")
	allowedUploadMimeList = []string{MimePDF, MimeJPEG, MimePNG}
)

// NormalizeMime убирает параметры и приводит синонимы к каноническому виду.
func NormalizeMime(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mediaType = strings.ToLower(declared)
	}
	switch mediaType {
	case "image/jpg", "image/pjpeg":
		return MimeJPEG
	case "application/x-pdf":
		return MimePDF
	}
	return mediaType
}

func isAllowedMime(m string) bool {
	for _, allowed := range allowedUploadMimeList {
		if m == allowed {
			return true
		}
	}
	return false
}

// ValidateUpload проверяет размер, тип и содержимое документа и возвращает MIME-тип.
// Без объявленного типа (или с application/octet-stream) используется тип по сигнатуре.
func ValidateUpload(declaredMime string, data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w (%d bytes max)", ErrFileTooLarge, maxBytes)
	}

	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedType
	}
	sniffed := NormalizeMime(kind.MIME.Value)
	if !isAllowedMime(sniffed) {
		return "", ErrUnsupportedType
	}

	declared := NormalizeMime(declaredMime)
	if declared == "" || declared == "application/octet-stream" {
		declared = sniffed
	}
	if !isAllowedMime(declared) {
		return "", ErrUnsupportedType
	}
	if declared != sniffed {
		return "", ErrContentMismatch
	}

	if declared == MimePDF {
		if _, err := pdf.PageCount(data); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
		}
	}

	return declared, nil
}
