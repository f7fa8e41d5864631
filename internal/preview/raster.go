package preview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/proc"
)

// Source is what a rasterizer draws from. Rasterizers that read PDFs use
// PDFPath; LayoutRasterizer uses Content.
type Source struct {
	PDFPath string
	Content docx.Content
}

// Rasterizer writes page one of a source as a PNG.
type Rasterizer interface {
	Name() string
	Rasterize(ctx context.Context, src Source, pngPath string, dpi int) error
}

var ErrNoPoppler = errors.New("pdftoppm not found")

// PopplerRasterizer shells out to poppler's pdftoppm.
type PopplerRasterizer struct {
	Runner proc.Runner
}

func (PopplerRasterizer) Name() string { return "pdftoppm" }

func (p PopplerRasterizer) Rasterize(ctx context.Context, src Source, pngPath string, dpi int) error {
	runner := p.Runner
	if runner == nil {
		runner = proc.ExecRunner{}
	}
	if _, err := runner.LookPath("pdftoppm"); err != nil {
		return ErrNoPoppler
	}
	prefix := strings.TrimSuffix(pngPath, filepath.Ext(pngPath))
	args := []string{"-png", "-r", strconv.Itoa(dpi), "-f", "1", "-l", "1", "-singlefile", src.PDFPath, prefix}
	if _, err := runner.Run(ctx, "pdftoppm", args...); err != nil {
		return err
	}
	if produced := prefix + ".png"; produced != pngPath {
		return os.Rename(produced, pngPath)
	}
	return nil
}

// LayoutRasterizer draws the self-contained worksheet layout directly. The
// glyphs come from basicfont, so this is an approximation of the PDF.
type LayoutRasterizer struct{}

func (LayoutRasterizer) Name() string { return "layout" }

func (LayoutRasterizer) Rasterize(ctx context.Context, src Source, pngPath string, dpi int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img := DrawLayout(src.Content, dpi)
	f, err := os.Create(pngPath)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

var red = color.RGBA{R: 255, A: 255}

// DrawLayout paints the A4 worksheet at dpi.
func DrawLayout(c docx.Content, dpi int) *image.RGBA {
	s := float64(dpi) / 72
	px := func(pt float64) int { return int(pt*s + 0.5) }

	img := image.NewRGBA(image.Rect(0, 0, px(pdfconv.PageWidth), px(pdfconv.PageHeight)))
	xdraw.Draw(img, img.Bounds(), image.White, image.Point{}, xdraw.Src)

	// frame
	inset, line, corner := px(pdfconv.FrameInset), max(1, px(pdfconv.FrameLine)), px(pdfconv.CornerSize)
	frame := image.Rect(inset, inset, img.Bounds().Dx()-inset, img.Bounds().Dy()-inset)
	fill := image.NewUniform(red)
	for _, r := range []image.Rectangle{
		image.Rect(frame.Min.X, frame.Min.Y, frame.Max.X, frame.Min.Y+line),
		image.Rect(frame.Min.X, frame.Max.Y-line, frame.Max.X, frame.Max.Y),
		image.Rect(frame.Min.X, frame.Min.Y, frame.Min.X+line, frame.Max.Y),
		image.Rect(frame.Max.X-line, frame.Min.Y, frame.Max.X, frame.Max.Y),
		image.Rect(frame.Min.X, frame.Min.Y, frame.Min.X+corner, frame.Min.Y+corner),
		image.Rect(frame.Max.X-corner, frame.Min.Y, frame.Max.X, frame.Min.Y+corner),
		image.Rect(frame.Min.X, frame.Max.Y-corner, frame.Min.X+corner, frame.Max.Y),
		image.Rect(frame.Max.X-corner, frame.Max.Y-corner, frame.Max.X, frame.Max.Y),
	} {
		xdraw.Draw(img, r, fill, image.Point{}, xdraw.Src)
	}

	left := px(pdfconv.MarginLeft)
	right := img.Bounds().Dx() - px(pdfconv.MarginRight)
	y := px(pdfconv.MarginTop)

	title := c.Title
	if title == "" {
		title = pdfconv.DefaultTitle
	}
	tp := &pen{dst: img, col: red, size: px(pdfconv.TitleSize)}
	for _, l := range tp.wrap(title, right-left) {
		tp.draw(l, left+(right-left-tp.width(l))/2, y)
		y += tp.lineHeight()
	}
	y += px(30 + 20)

	if len(c.Questions) == 0 {
		return img
	}
	hp := &pen{dst: img, col: red, size: px(pdfconv.BodySize)}
	hp.draw("Discussion", left, y)
	y += hp.lineHeight() + px(20)

	bp := &pen{dst: img, col: color.Black, size: px(pdfconv.BodySize)}
	indent := left + px(pdfconv.IndentLeft)
	bottom := img.Bounds().Dy() - px(pdfconv.MarginBottom)
	for i, q := range c.Questions {
		y += px(6)
		for _, l := range bp.wrap(fmt.Sprintf("%d. %s", i+1, q), right-indent) {
			if y+bp.lineHeight() > bottom {
				return img
			}
			bp.draw(l, indent, y)
			y += bp.lineHeight()
		}
		y += px(pdfconv.QuestionGap)
	}
	return img
}

// pen draws basicfont text scaled to a pixel size.
type pen struct {
	dst  *image.RGBA
	col  color.Color
	size int
}

var face = basicfont.Face7x13

func (p *pen) scale() float64 { return float64(p.size) / float64(face.Height) }

func (p *pen) lineHeight() int { return int(float64(p.size) * 1.2) }

func (p *pen) width(s string) int {
	return int(float64(font.MeasureString(face, s).Ceil()) * p.scale())
}

func (p *pen) wrap(s string, limit int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if p.width(cur+" "+w) > limit {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(lines, cur)
}

// draw renders s at native size and scales it into place with top-left (x, y).
func (p *pen) draw(s string, x, y int) {
	w := font.MeasureString(face, s).Ceil()
	if w == 0 {
		return
	}
	glyphs := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	d := &font.Drawer{Dst: glyphs, Src: image.NewUniform(p.col), Face: face, Dot: fixed.P(0, face.Ascent)}
	d.DrawString(s)
	target := image.Rect(x, y, x+int(float64(w)*p.scale()), y+p.size)
	xdraw.ApproxBiLinear.Scale(p.dst, target, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}
