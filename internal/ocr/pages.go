package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/aerladis/eflwizard/internal/proc"
)

// PageRenderer rasterizes the first maxPages pages of a PDF into dir as
// grayscale PNGs, returned in page order.
type PageRenderer interface {
	RenderPages(ctx context.Context, pdfPath, dir string, dpi, maxPages int) ([]string, error)
}

// PopplerPages renders pages with pdftoppm.
type PopplerPages struct {
	Runner proc.Runner
}

var pageNumRe = regexp.MustCompile(`-(\d+)\.png$`)

func (p PopplerPages) RenderPages(ctx context.Context, pdfPath, dir string, dpi, maxPages int) ([]string, error) {
	r := p.Runner
	if r == nil {
		r = proc.ExecRunner{}
	}
	if _, err := r.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("PDF OCR needs pdftoppm (poppler-utils): %w", err)
	}
	prefix := filepath.Join(dir, "page")
	args := []string{"-png", "-gray", "-r", strconv.Itoa(dpi), "-f", "1"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, prefix)
	if _, err := r.Run(ctx, "pdftoppm", args...); err != nil {
		return nil, fmt.Errorf("PDF OCR failed: %w", err)
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	// pdftoppm zero-pads page numbers to the width of the page count
	sort.Slice(matches, func(i, j int) bool { return pageNum(matches[i]) < pageNum(matches[j]) })
	if len(matches) == 0 {
		return nil, fmt.Errorf("PDF OCR failed: no pages rendered from %s", filepath.Base(pdfPath))
	}
	return matches, nil
}

func pageNum(path string) int {
	m := pageNumRe.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func readPages(paths []string) ([][]byte, error) {
	out := make([][]byte, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		out[i] = data
	}
	return out, nil
}
