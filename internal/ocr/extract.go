package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	"golang.org/x/sync/errgroup"

	"github.com/aerladis/eflwizard/internal/topics"
)

// Progress receives user-facing status lines.
type Progress func(msg string)

// Extractor runs OCR over image and PDF files.
type Extractor struct {
	engine      Engine
	pages       PageRenderer
	language    string
	psm         int
	dpi         int
	maxPages    int
	parallelism int
	logger      *zap.Logger
}

// Options configure an Extractor. Zero values take the defaults shown.
type Options struct {
	Engine      Engine       // DefaultEngine()
	Pages       PageRenderer // PopplerPages
	Language    string       // eng
	PSM         int          // 3
	DPI         int          // 150
	MaxPages    int          // 5
	Parallelism int          // 2
	Logger      *zap.Logger
}

func NewExtractor(opts Options) *Extractor {
	if opts.Engine == nil {
		opts.Engine = DefaultEngine()
	}
	if opts.Pages == nil {
		opts.Pages = PopplerPages{}
	}
	if opts.DPI <= 0 {
		opts.DPI = 150
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 5
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 2
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Extractor{
		engine:      opts.Engine,
		pages:       opts.Pages,
		language:    lang(opts.Language),
		psm:         psm(opts.PSM),
		dpi:         opts.DPI,
		maxPages:    opts.MaxPages,
		parallelism: opts.Parallelism,
		logger:      opts.Logger.Named("ocr"),
	}
}

// ExtractFile returns the text of the image or PDF at path.
func (x *Extractor) ExtractFile(ctx context.Context, path string, progress Progress) (string, error) {
	if progress == nil {
		progress = func(string) {}
	}
	kind, err := Kind(path)
	if err != nil {
		return "", err
	}
	x.logger.Debug("extracting", zap.String("path", path), zap.Stringer("kind", kind), zap.String("engine", x.engine.Name()))

	var text string
	switch kind {
	case KindImage:
		progress("Processing image...")
		text, err = x.image(ctx, path)
	case KindPDF:
		progress("Processing PDF...")
		text, err = x.pdf(ctx, path)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	x.logger.Debug("extracted", zap.Int("chars", len(text)))
	return text, nil
}

func (x *Extractor) image(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("OCR failed: decode %s: %w", path, err)
	}
	data, err := GrayscalePNG(img)
	if err != nil {
		return "", err
	}
	text, err := x.engine.Recognize(ctx, Input{Image: data, Language: x.language, PSM: x.psm, DPI: 200})
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (x *Extractor) pdf(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "eflwizard_ocr_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	paths, err := x.pages.RenderPages(ctx, path, dir, x.dpi, x.maxPages)
	if err != nil {
		return "", err
	}
	if len(paths) > x.maxPages {
		paths = paths[:x.maxPages]
	}
	pages, err := readPages(paths)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.parallelism)
	for i, page := range pages {
		g.Go(func() error {
			text, err := x.engine.Recognize(gctx, Input{Image: page, Language: x.language, PSM: x.psm, DPI: x.dpi})
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = fmt.Sprintf("=== PAGE %d ===\n%s", i+1, strings.TrimSpace(text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("PDF OCR failed: %w", err)
	}
	return strings.Join(texts, "\n\n"), nil
}

// GrayscalePNG converts img to 8-bit gray and PNG-encodes it.
func GrayscalePNG(img image.Image) ([]byte, error) {
	b := img.Bounds()
	gray, ok := img.(*image.Gray)
	if !ok {
		gray = image.NewGray(b)
		draw.Draw(gray, b, img, b.Min, draw.Src)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TopicExtractor turns OCR text into a unit title, topics and vocabulary.
// *generator.LLMGenerator implements it.
type TopicExtractor interface {
	ExtractTopics(ctx context.Context, text, fallbackTitle string) (topics.Extraction, error)
}

// FallbackTitle is used when the document yields no title.
const FallbackTitle = "Document"

// Importer chains OCR and topic extraction.
type Importer struct {
	Extractor *Extractor
	Topics    TopicExtractor
	Logger    *zap.Logger
}

// Import reads path and extracts the worksheet inputs from it.
func (im *Importer) Import(ctx context.Context, path string, progress Progress) (topics.Extraction, string, error) {
	if progress == nil {
		progress = func(string) {}
	}
	progress("Starting OCR...")
	text, err := im.Extractor.ExtractFile(ctx, path, progress)
	if err != nil {
		return topics.Extraction{}, "", err
	}
	progress("Extracting topics...")
	ext, err := im.Topics.ExtractTopics(ctx, text, FallbackTitle)
	if err != nil {
		return topics.Extraction{}, text, fmt.Errorf("OCR failed: %w", err)
	}
	if im.Logger != nil {
		im.Logger.Debug("topics extracted",
			zap.String("title", ext.Title),
			zap.Int("vocab", len(ext.Vocab)))
	}
	progress("OCR completed successfully!")
	return ext, text, nil
}
