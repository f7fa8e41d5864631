package pdfconv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/aerladis/eflwizard/internal/proc"
)

// Docx2PDF runs the docx2pdf command line tool, which drives Word on
// Windows and macOS.
type Docx2PDF struct {
	Runner proc.Runner
}

func (Docx2PDF) Method() Method { return MethodDocx2PDF }
func (Docx2PDF) Label() string  { return "docx2pdf" }

func (d Docx2PDF) Available(context.Context) error {
	if _, err := d.Runner.LookPath("docx2pdf"); err != nil {
		return fmt.Errorf("docx2pdf not available: %w", err)
	}
	return nil
}

func (d Docx2PDF) Convert(ctx context.Context, job Job) error {
	if err := d.Available(ctx); err != nil {
		return err
	}
	if _, err := d.Runner.Run(ctx, "docx2pdf", job.DocxPath, job.PDFPath); err != nil {
		return err
	}
	if err := checkProduced(job.PDFPath); err != nil {
		return fmt.Errorf("docx2pdf did not create PDF")
	}
	return nil
}

// Word exports through Word's COM automation via PowerShell.
type Word struct {
	Runner proc.Runner
}

func (Word) Method() Method { return MethodWord }
func (Word) Label() string  { return "Microsoft Word" }

const wordCheck = `$w = New-Object -ComObject Word.Application; $w.Quit()`

// wdExportFormatPDF is 17 in Word's WdExportFormat enumeration.
const wordExport = `$ErrorActionPreference = 'Stop'
$w = New-Object -ComObject Word.Application
$w.Visible = $false
$w.DisplayAlerts = 0
try {
  $d = $w.Documents.Open('%s', $false, $true, $false)
  $d.ExportAsFixedFormat('%s', 17)
  $d.Close($false)
} finally {
  $w.Quit()
}`

func (w Word) Available(ctx context.Context) error {
	if runtime.GOOS != "windows" {
		return errors.New("Word COM not available on this OS")
	}
	if _, err := w.Runner.LookPath("powershell"); err != nil {
		return fmt.Errorf("powershell not found: %w", err)
	}
	if _, err := w.Runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", wordCheck); err != nil {
		return fmt.Errorf("Microsoft Word not available: %w", err)
	}
	return nil
}

func (w Word) Convert(ctx context.Context, job Job) error {
	if runtime.GOOS != "windows" {
		return errors.New("Word COM not available on this OS")
	}
	in, err := filepath.Abs(job.DocxPath)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(job.PDFPath)
	if err != nil {
		return err
	}
	script := fmt.Sprintf(wordExport, psQuote(in), psQuote(out))
	if _, err := w.Runner.Run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", script); err != nil {
		return err
	}
	if err := checkProduced(job.PDFPath); err != nil {
		return errors.New("Word COM export did not create PDF")
	}
	return nil
}

// psQuote escapes s for a single-quoted PowerShell string.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// LibreOffice converts with soffice in headless mode.
type LibreOffice struct {
	Runner  proc.Runner
	Timeout time.Duration
}

func (LibreOffice) Method() Method { return MethodLibreOffice }
func (LibreOffice) Label() string  { return "LibreOffice" }

var errNoSoffice = errors.New("LibreOffice is not installed or not found in PATH")

func (l LibreOffice) Available(ctx context.Context) error {
	if _, err := l.Runner.LookPath("soffice"); err != nil {
		return errNoSoffice
	}
	if _, err := l.Runner.Run(ctx, "soffice", "--version"); err != nil {
		return fmt.Errorf("%w: %v", errNoSoffice, err)
	}
	return nil
}

func (l LibreOffice) Convert(ctx context.Context, job Job) error {
	if err := l.Available(ctx); err != nil {
		return err
	}
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	outdir := filepath.Dir(job.PDFPath)
	_, err := l.Runner.Run(runCtx, "soffice", "--headless", "--convert-to", "pdf", "--outdir", outdir, job.DocxPath)
	if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return fmt.Errorf("LibreOffice conversion timed out (%s)", timeout)
	}
	if err != nil {
		return fmt.Errorf("LibreOffice conversion failed: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(job.DocxPath), filepath.Ext(job.DocxPath))
	produced := filepath.Join(outdir, stem+".pdf")
	if produced != job.PDFPath {
		if _, err := os.Stat(produced); err == nil {
			if err := os.Rename(produced, job.PDFPath); err != nil {
				return fmt.Errorf("move LibreOffice output: %w", err)
			}
		}
	}
	if err := checkProduced(job.PDFPath); err != nil {
		return errors.New("LibreOffice did not create PDF file")
	}
	return nil
}
