// Package preview renders an exact picture of the exported worksheet:
// fill the template, convert it to PDF, rasterize page one.
package preview

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/pdfconv"
)

// DefaultZoom is the page scale at a device pixel ratio of 1.
const DefaultZoom = 2.2

var ErrEmptyImage = errors.New("PNG was not produced by renderer")

// ContentKey identifies the content a preview was rendered from.
func ContentKey(title, level string, questions []string) string {
	h := sha1.New()
	h.Write([]byte(title))
	h.Write([]byte(level))
	for _, q := range questions {
		h.Write([]byte("|"))
		h.Write([]byte(q))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Converter turns a filled DOCX into a PDF. *pdfconv.Registry implements it.
type Converter interface {
	Convert(ctx context.Context, method pdfconv.Method, job pdfconv.Job) (pdfconv.Method, error)
}

// Request asks for a preview of Content. DPR below 1 counts as 1.
type Request struct {
	Key     string
	Content docx.Content
	Method  pdfconv.Method
	DPR     float64
}

// Result is a rendered page. Dir holds PNGPath and is owned by the caller
// (see Tracker).
type Result struct {
	Key     string
	PNGPath string
	Dir     string
	Width   int
	Height  int
	Method  pdfconv.Method
}

// Renderer produces previews.
type Renderer struct {
	templatePath string
	converter    Converter
	rasterizers  []Rasterizer
	tempDir      string
	zoom         float64
	logger       *zap.Logger
}

// Options configure a Renderer. Rasterizers are tried in order until one
// succeeds.
type Options struct {
	TemplatePath string
	Converter    Converter
	Rasterizers  []Rasterizer
	TempDir      string
	Zoom         float64
	Logger       *zap.Logger
}

func NewRenderer(opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.Rasterizers) == 0 {
		opts.Rasterizers = []Rasterizer{LayoutRasterizer{}}
	}
	if opts.Zoom <= 0 {
		opts.Zoom = DefaultZoom
	}
	return &Renderer{
		templatePath: opts.TemplatePath,
		converter:    opts.Converter,
		rasterizers:  opts.Rasterizers,
		tempDir:      opts.TempDir,
		zoom:         opts.Zoom,
		logger:       opts.Logger.Named("preview"),
	}
}

// DPI returns the rasterization resolution for a zoom and device pixel
// ratio. A DPR below 1 counts as 1.
func DPI(zoom, dpr float64) int {
	if dpr < 1 {
		dpr = 1
	}
	return int(72*zoom*dpr + 0.5)
}

// Render builds the preview. On failure the temporary directory is removed.
func (r *Renderer) Render(ctx context.Context, req Request) (res Result, err error) {
	dir, err := os.MkdirTemp(r.tempDir, "eflwizard_prev_")
	if err != nil {
		return Result{}, fmt.Errorf("preview temp dir: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()

	docxPath := filepath.Join(dir, "preview.docx")
	pdfPath := filepath.Join(dir, "preview.pdf")
	pngPath := filepath.Join(dir, "preview.png")

	if err := docx.ExportFile(ctx, r.templatePath, docxPath, req.Content); err != nil {
		return Result{}, err
	}

	method := req.Method
	if r.converter != nil {
		used, err := r.converter.Convert(ctx, method, pdfconv.Job{DocxPath: docxPath, PDFPath: pdfPath, Content: req.Content})
		if err != nil {
			return Result{}, fmt.Errorf("Preview generation failed: %w", err)
		}
		method = used
	}

	src := Source{PDFPath: pdfPath, Content: req.Content}
	dpi := DPI(r.zoom, req.DPR)
	var errs []error
	rastered := false
	for _, rz := range r.rasterizers {
		if err := rz.Rasterize(ctx, src, pngPath, dpi); err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			r.logger.Debug("rasterizer failed", zap.String("rasterizer", rz.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		rastered = true
		break
	}
	if !rastered {
		return Result{}, fmt.Errorf("rasterize preview: %w", errors.Join(errs...))
	}

	w, h, err := pngSize(pngPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Key: req.Key, PNGPath: pngPath, Dir: dir, Width: w, Height: h, Method: method}, nil
}

func pngSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, ErrEmptyImage
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return 0, 0, ErrEmptyImage
	}
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode preview: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
