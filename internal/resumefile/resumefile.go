// Package resumefile checks uploaded resumes before they are forwarded for analysis.
package resumefile

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultMaxBytes caps an upload at 10MB.
	DefaultMaxBytes = 10 << 20
)

var (
	ErrEmpty       = errors.New("resume file is empty")
	ErrTooLarge    = errors.New("resume file is too large")
	ErrUnsupported = errors.New("unsupported resume format, use PDF, DOC or DOCX")
	ErrCorrupt     = errors.New("resume file could not be read")
)

// Accept is the value for a file input's accept attribute.
const Accept = ".pdf,.doc,.docx"

var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Info describes a checked resume.
type Info struct {
	FileName string
	MimeType string
	Size     int
	Pages    int
}

// Check validates name and contents of an upload. maxBytes <= 0 means DefaultMaxBytes.
func Check(fileName string, data []byte, maxBytes int64) (Info, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(fileName)))
	if !Supported(fileName) {
		return Info{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), maxBytes)
	}

	info := Info{FileName: fileName, Size: len(data)}
	detected := mimetype.Detect(data)
	switch ext {
	case ".pdf":
		if !detected.Is(MimePDF) {
			return Info{}, fmt.Errorf("%w: content is %s", ErrCorrupt, detected.String())
		}
		pages, err := pdfPages(data)
		if err != nil {
			return Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		info.MimeType, info.Pages = MimePDF, pages
	case ".docx":
		if !detected.Is(MimeDOCX) && !detected.Is("application/zip") {
			return Info{}, fmt.Errorf("%w: content is %s", ErrCorrupt, detected.String())
		}
		if err := openDOCX(data); err != nil {
			return Info{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		info.MimeType = MimeDOCX
	case ".doc":
		if !bytes.HasPrefix(data, oleSignature) {
			return Info{}, fmt.Errorf("%w: missing OLE2 header", ErrCorrupt)
		}
		info.MimeType = MimeDOC
	}
	return info, nil
}

// Supported reports whether the file extension is one the analysis service reads.
func Supported(fileName string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSpace(fileName))) {
	case ".pdf", ".doc", ".docx":
		return true
	}
	return false
}

func pdfPages(data []byte) (pages int, err error) {
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n := r.NumPage()
	if n < 1 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}

func openDOCX(data []byte) error {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	defer doc.Close()
	if strings.TrimSpace(doc.Editable().GetContent()) == "" {
		return errors.New("docx has no document body")
	}
	return nil
}
