package fixtures

import (
	"bytes"
	"encoding/base64"
	"io"
)

const MaxDocumentSize = 10 * 1024 * 1024

type DocumentFile struct {
	Name        string
	Data        []byte
	ContentType string
}

func (d DocumentFile) Reader() io.Reader {
	return bytes.NewReader(d.Data)
}

func (d DocumentFile) Size() int64 {
	return int64(len(d.Data))
}

var (
	ValidPDFDocument = DocumentFile{
		Name:        "national id.pdf",
		Data:        createPDF(2048),
		ContentType: "application/pdf",
	}
	ValidPNGDocument = DocumentFile{
		Name:        "id.png",
		Data:        createPNG(),
		ContentType: "image/png",
	}
	OversizedPDFDocument = DocumentFile{
		Name:        "huge.pdf",
		Data:        createPDF(MaxDocumentSize + 1),
		ContentType: "application/pdf",
	}
	TextDocument = DocumentFile{
		Name:        "notes.txt",
		Data:        []byte("just some text, not an identity document"),
		ContentType: "text/plain",
	}
)

func createPDF(size int) []byte {
	header := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	data := make([]byte, size)
	copy(data, header)
	return data
}

func createPNG() []byte {
	pngHeader := "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
	data, _ := base64.StdEncoding.DecodeString(pngHeader)
	padding := make([]byte, 1024-len(data))
	return append(data, padding...)
}
