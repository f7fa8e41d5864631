package pdfconv

import (
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Layout of the self-contained worksheet, in points on an A4 page.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
	CM         = 72 / 2.54

	MarginLeft   = 2.7 * CM
	MarginRight  = 2.7 * CM
	MarginTop    = 3.6 * CM
	MarginBottom = 2.6 * CM

	FrameInset  = 1 * CM
	FrameLine   = 2.0
	CornerSize  = 0.5 * CM
	TitleSize   = 20.0
	BodySize    = 12.0
	QuestionGap = 12.0
	IndentLeft  = 20.0
)

// DefaultTitle is printed when the unit has no title.
const DefaultTitle = "Unit Title"

// FrameColor is the border, title and heading red.
var FrameColor = [3]int{255, 0, 0}

// SelfContained renders the worksheet with fpdf. It needs no external
// programs and ignores the DOCX.
type SelfContained struct{}

func (SelfContained) Method() Method { return MethodSelfContained }
func (SelfContained) Label() string  { return "Self-contained (built-in)" }

func (SelfContained) Available(context.Context) error { return nil }

func (SelfContained) Convert(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(MarginLeft, MarginTop, MarginRight)
	pdf.SetAutoPageBreak(true, MarginBottom)
	pdf.SetHeaderFunc(func() { drawFrame(pdf) })
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	title := job.Content.Title
	if title == "" {
		title = DefaultTitle
	}
	pdf.SetTextColor(FrameColor[0], FrameColor[1], FrameColor[2])
	pdf.SetFont("Helvetica", "B", TitleSize)
	pdf.MultiCell(0, TitleSize*1.2, tr(title), "", "C", false)
	pdf.Ln(30 + 20)

	if len(job.Content.Questions) > 0 {
		pdf.SetFont("Helvetica", "B", BodySize)
		pdf.CellFormat(0, BodySize*1.2, "Discussion", "", 1, "L", false, 0, "")
		pdf.Ln(20)

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", BodySize)
		width := PageWidth - MarginLeft - MarginRight - IndentLeft
		for i, q := range job.Content.Questions {
			pdf.Ln(6)
			pdf.SetX(MarginLeft + IndentLeft)
			pdf.MultiCell(width, BodySize*1.2, tr(fmt.Sprintf("%d. %s", i+1, q)), "", "L", false)
			pdf.Ln(QuestionGap)
		}
	}

	if err := pdf.OutputFileAndClose(job.PDFPath); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	return checkProduced(job.PDFPath)
}

func drawFrame(pdf *fpdf.Fpdf) {
	w, h := pdf.GetPageSize()
	pdf.SetDrawColor(FrameColor[0], FrameColor[1], FrameColor[2])
	pdf.SetFillColor(FrameColor[0], FrameColor[1], FrameColor[2])
	pdf.SetLineWidth(FrameLine)
	x0, y0 := FrameInset, FrameInset
	fw, fh := w-2*FrameInset, h-2*FrameInset
	pdf.Rect(x0, y0, fw, fh, "D")
	for _, c := range [][2]float64{
		{x0, y0},
		{x0 + fw - CornerSize, y0},
		{x0, y0 + fh - CornerSize},
		{x0 + fw - CornerSize, y0 + fh - CornerSize},
	} {
		pdf.Rect(c[0], c[1], CornerSize, CornerSize, "F")
	}
}
