// Package pdftest собирает корректные PDF для тестов загрузки.
package pdftest

import (
	"bytes"
	"fmt"
)

var pageObjects = []string{
	"<< /Type /Catalog /Pages 2 0 R >>",
	"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
	"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
}

// OnePage возвращает одностраничный PDF. Если size больше естественной длины,
// документ дополняется нулевым потоком ровно до size байт.
func OnePage(size int) []byte {
	doc := build(-1)
	if size <= len(doc) {
		return doc
	}
	pad := size - len(build(0))
	for i := 0; i < 8 && pad >= 0; i++ {
		doc = build(pad)
		if len(doc) == size {
			return doc
		}
		pad += size - len(doc)
	}
	panic(fmt.Sprintf("pdftest: cannot build a document of %d bytes", size))
}

func build(pad int) []byte {
	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, len(pageObjects))
	for i, obj := range pageObjects {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	if pad >= 0 {
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n", len(pageObjects)+1, pad)
		b.Write(make([]byte, pad))
		b.WriteString("\nendstream\nendobj\n")
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(pageObjects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(pageObjects)+1, xref)
	return b.Bytes()
}
