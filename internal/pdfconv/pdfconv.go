// Package pdfconv converts a filled worksheet to PDF through a chain of
// converters, from the built-in renderer to external office suites.
package pdfconv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aerladis/eflwizard/internal/docx"
)

// Method names a conversion route.
type Method string

const (
	MethodAuto          Method = "auto"
	MethodSelfContained Method = "selfcontained"
	MethodDocx2PDF      Method = "docx2pdf"
	MethodWord          Method = "word"
	MethodLibreOffice   Method = "libreoffice"
)

// AutoOrder is the order MethodAuto tries converters in.
var AutoOrder = []Method{MethodSelfContained, MethodDocx2PDF, MethodWord, MethodLibreOffice}

var (
	ErrAllFailed     = errors.New("All PDF conversion methods failed")
	ErrUnknownMethod = errors.New("unknown PDF conversion method")
	ErrNotProduced   = errors.New("converter did not create a PDF")
)

// ParseMethod accepts the configured method names, plus the older
// "reportlab" and "word_com" spellings.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return MethodAuto, nil
	case "selfcontained", "self-contained", "reportlab":
		return MethodSelfContained, nil
	case "docx2pdf":
		return MethodDocx2PDF, nil
	case "word", "word_com":
		return MethodWord, nil
	case "libreoffice", "soffice":
		return MethodLibreOffice, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Job is one conversion. DocxPath is the filled document; Content is the
// same data for converters that lay the page out themselves.
type Job struct {
	DocxPath string
	PDFPath  string
	Content  docx.Content
}

// Converter is one way of producing a PDF.
type Converter interface {
	Method() Method
	Label() string
	// Available returns nil when the converter can run on this machine.
	Available(ctx context.Context) error
	Convert(ctx context.Context, job Job) error
}

func checkProduced(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return ErrNotProduced
	}
	return nil
}
