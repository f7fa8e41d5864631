// Package ocr turns scanned worksheets (images or PDFs) into text and
// hands the text to the topic extractor.
package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrUnsupportedFile = errors.New("Please select an image file (PNG, JPG, JPEG, BMP, TIFF, GIF) or PDF file.")
	ErrNoText          = errors.New("No text could be extracted from the document.")
	ErrNoEngine        = errors.New("no OCR engine available")
)

// Input is one page to recognise. Image is PNG encoded.
type Input struct {
	Image    []byte
	Language string
	PSM      int
	DPI      int
}

// Engine recognises text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (string, error)
}

var (
	engineMu      sync.RWMutex
	defaultEngine Engine
	engines       = map[string]Engine{}
)

// Register makes an engine selectable by name.
func Register(e Engine) {
	engineMu.Lock()
	defer engineMu.Unlock()
	engines[e.Name()] = e
}

// SetDefaultEngine registers e and makes it the engine "auto" resolves to.
func SetDefaultEngine(e Engine) {
	Register(e)
	engineMu.Lock()
	defer engineMu.Unlock()
	defaultEngine = e
}

// DefaultEngine returns the in-process engine if one was registered,
// otherwise the tesseract command line engine.
func DefaultEngine() Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()
	if defaultEngine != nil {
		return defaultEngine
	}
	return &CLIEngine{}
}

// EngineByName resolves a configured engine name. "auto" and "" give
// DefaultEngine.
func EngineByName(name string) (Engine, error) {
	switch name {
	case "", "auto":
		return DefaultEngine(), nil
	case CLIEngineName:
		return &CLIEngine{}, nil
	}
	engineMu.RLock()
	defer engineMu.RUnlock()
	if e, ok := engines[name]; ok {
		return e, nil
	}
	return nil, ErrNoEngine
}

// FileKind classifies OCR input files.
type FileKind int

const (
	KindImage FileKind = iota + 1
	KindPDF
)

func (k FileKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	}
	return "unknown"
}

// Kind classifies path by extension.
func Kind(path string) (FileKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".gif":
		return KindImage, nil
	case ".pdf":
		return KindPDF, nil
	}
	return 0, ErrUnsupportedFile
}
