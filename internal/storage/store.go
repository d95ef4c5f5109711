package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ошибки хранилища документов.
var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrTooLarge       = errors.New("storage: file exceeds size limit")
	ErrInvalidKey     = errors.New("storage: invalid key")
)

// DocumentStore хранит файлы подтверждающих документов.
type DocumentStore interface {
	// Save записывает объект и возвращает число записанных байт.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL возвращает ссылку для скачивания объекта.
	URL(ctx context.Context, key string) (string, error)
}

// Расширения объектов по проверенному MIME-типу. Имя файла клиента на ключ не влияет.
var mimeExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// DocumentKey строит ключ объекта: cases/<case id>/<тип>_<время><расширение>.
func DocumentKey(caseID uuid.UUID, docType, mimeType string) string {
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		ext = ".bin"
	}
	return path.Join("cases", caseID.String(), fmt.Sprintf("%s_%d%s", docType, time.Now().UnixNano(), ext))
}

// CaseIDFromKey достаёт идентификатор дела из ключа объекта.
func CaseIDFromKey(key string) (uuid.UUID, error) {
	parts := strings.Split(strings.TrimPrefix(path.Clean("/"+key), "/"), "/")
	if len(parts) != 3 || parts[0] != "cases" {
		return uuid.Nil, ErrInvalidKey
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, ErrInvalidKey
	}
	return id, nil
}

// sanitizeFilename удаляет потенциально опасные символы.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" || name == "." {
		name = "document"
	}
	return name
}

// SanitizeFilename возвращает безопасное имя файла для метаданных документа.
func SanitizeFilename(name string) string {
	return sanitizeFilename(name)
}
