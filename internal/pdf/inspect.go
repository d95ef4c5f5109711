package pdf

import (
	"bytes"
	"errors"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// ErrNoPages документ открылся, но страниц в нём нет.
var ErrNoPages = errors.New("pdf has no pages")

// PageCount открывает PDF и возвращает число страниц.
// Нулевые байты после %%EOF отбрасываются: ридер ищет маркер в хвосте файла.
func PageCount(data []byte) (n int, err error) {
	// Разбор повреждённых файлов в ledongthuc/pdf может паниковать.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	data = bytes.TrimRight(data, "\x00")
	doc, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("new pdf reader: %w", err)
	}
	total := doc.NumPage()
	if total < 1 {
		return 0, ErrNoPages
	}
	return total, nil
}
