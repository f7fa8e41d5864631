// Package tesseract registers an in-process OCR engine backed by
// libtesseract. Import it for its side effect:
//
//	import _ "github.com/aerladis/eflwizard/internal/ocr/tesseract"
//
// Builds without cgo keep the tesseract command line engine.
package tesseract
