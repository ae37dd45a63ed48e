package sniffer

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"strings"
)

type MediaType string

const (
	TypePDF  MediaType = "pdf"
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeSVG  MediaType = "svg"
	TypeDWG  MediaType = "dwg"
	TypeDOCX MediaType = "docx"
	TypeXLSX MediaType = "xlsx"
	TypeZIP  MediaType = "zip"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type MediaType
	MIME string
}

// DetectHead identifies a document from its first bytes. Office files share
// the zip signature, so the file name decides between docx, xlsx and zip.
func DetectHead(head []byte, filename string) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	switch {
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	case isDWG(head):
		return Result{Type: TypeDWG, MIME: "image/vnd.dwg"}, nil
	case bytes.HasPrefix(head, []byte("PK\x03\x04")):
		return zipFlavour(filename), nil
	case isSVG(head):
		return Result{Type: TypeSVG, MIME: "image/svg+xml"}, nil
	}

	return Result{}, ErrUnknownType
}

func zipFlavour(filename string) Result {
	switch strings.ToLower(path.Ext(filename)) {
	case ".docx":
		return Result{Type: TypeDOCX, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
	case ".xlsx":
		return Result{Type: TypeXLSX, MIME: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}
	default:
		return Result{Type: TypeZIP, MIME: "application/zip"}
	}
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

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

// AutoCAD drawings start with "AC10" followed by a two digit release code.
func isDWG(head []byte) bool {
	return len(head) >= 6 && bytes.HasPrefix(head, []byte("AC10"))
}

func isSVG(head []byte) bool {
	trimmed := strings.TrimSpace(string(head))
	if strings.HasPrefix(trimmed, "<svg") {
		return true
	}
	return strings.HasPrefix(trimmed, "<?xml") && strings.Contains(trimmed, "<svg")
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}

// Compatible reports whether a client-declared content type agrees with the
// sniffed one. Generic declarations are accepted.
func Compatible(declared string, result Result) bool {
	switch declared {
	case "", "application/octet-stream", result.MIME:
		return true
	case "application/x-zip-compressed":
		return result.Type == TypeZIP
	case "image/jpg":
		return result.Type == TypeJPEG
	case "application/acad", "application/x-dwg", "image/x-dwg":
		return result.Type == TypeDWG
	}
	return false
}
