// Package docsniff detects the real type of an uploaded study document
// from its head bytes, so the upload screen rejects mislabeled files
// before they reach the backend.
package docsniff

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

type DocType string

const (
	TypePDF    DocType = "pdf"
	TypeOffice DocType = "office"    // docx, xlsx, pptx (OOXML zip)
	TypeLegacy DocType = "office-97" // doc, xls, ppt (OLE compound)
	TypeText   DocType = "text"
	TypeJPEG   DocType = "jpeg" // avatars
	TypePNG    DocType = "png"  // avatars
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case isPDF(head):
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	case isOOXML(head):
		return Result{Type: TypeOffice, MIME: "application/vnd.openxmlformats-officedocument"}, nil
	case isOLE(head):
		return Result{Type: TypeLegacy, MIME: "application/msword"}, nil
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isText(head):
		return Result{Type: TypeText, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

// Avatar reports whether the detected type is acceptable for a profile
// picture rather than a study document.
func (r Result) Avatar() bool {
	return r.Type == TypeJPEG || r.Type == TypePNG
}

func isPDF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("%PDF-"))
}

func isOOXML(head []byte) bool {
	return len(head) >= 4 &&
		head[0] == 'P' && head[1] == 'K' &&
		(head[2] == 0x03 || head[2] == 0x05 || head[2] == 0x07)
}

func isOLE(head []byte) bool {
	oleMagic := []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	return bytes.HasPrefix(head, oleMagic)
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, pngMagic)
}

func isText(head []byte) bool {
	for _, b := range head {
		if b == 0x7f {
			return false
		}
		if b < 0x20 && b != '\t' && b != '\n' && b != '\f' && b != '\r' {
			return false
		}
	}
	// A 512-byte head may cut a multi-byte rune; tolerate up to three
	// trailing bytes of a partial sequence.
	for i := 0; i < 4 && i <= len(head); i++ {
		if utf8.Valid(head[:len(head)-i]) {
			return true
		}
	}
	return false
}
