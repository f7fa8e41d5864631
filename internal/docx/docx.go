// Package docx fills the discussion worksheet template.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

const documentPart = "word/document.xml"

var (
	ErrNoDiscussion     = errors.New(`Could not find "Discussion" in template.`)
	ErrTemplateNotFound = errors.New("template not found")
	ErrNotDocx          = errors.New("not a DOCX file: word/document.xml missing")
)

// Content is what goes into the worksheet.
type Content struct {
	Title     string
	Level     string
	Questions []string
}

// LoadTemplate reads the template at path. An empty path gives the
// built-in template. A missing file also gives the built-in template, along
// with ErrTemplateNotFound so the caller can warn.
func LoadTemplate(path string) ([]byte, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultTemplate(), fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return data, nil
}

// ExportFile fills the template at templatePath and writes it to outPath.
// An empty templatePath uses the built-in template; a path that does not
// exist is an error and nothing is written.
func ExportFile(ctx context.Context, templatePath, outPath string, c Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmpl, err := LoadTemplate(templatePath)
	if err != nil {
		return err
	}
	out, err := Fill(tmpl, c)
	if err != nil {
		return err
	}
	return WriteFileAtomic(outPath, out)
}

// WriteFileAtomic writes data next to path and renames it into place.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// archive is an opened DOCX with its main document parsed.
type archive struct {
	files []*zip.File
	doc   *etree.Document
}

func open(data []byte) (*archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	a := &archive{files: zr.File}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", documentPart, err)
		}
		a.doc = etree.NewDocument()
		_, err = a.doc.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", documentPart, err)
		}
	}
	if a.doc == nil {
		return nil, ErrNotDocx
	}
	return a, nil
}

// bytes writes the archive back, replacing only the main document.
func (a *archive) bytes() ([]byte, error) {
	xmlData, err := a.doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range a.files {
		hdr := f.FileHeader
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, err
		}
		if f.Name == documentPart {
			if _, err := w.Write(xmlData); err != nil {
				return nil, err
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *archive) body() *etree.Element {
	root := a.doc.Root()
	if root == nil {
		return nil
	}
	return root.SelectElement("w:body")
}

// paragraphs returns the body-level paragraphs in order.
func (a *archive) paragraphs() []*etree.Element {
	b := a.body()
	if b == nil {
		return nil
	}
	return b.SelectElements("w:p")
}

// Paragraphs returns the plain text of each body paragraph.
func Paragraphs(data []byte) ([]string, error) {
	a, err := open(data)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range a.paragraphs() {
		out = append(out, paragraphText(p))
	}
	return out, nil
}

func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, r := range p.FindElements(".//w:r") {
		b.WriteString(runText(r))
	}
	return b.String()
}

func runText(r *etree.Element) string {
	var b strings.Builder
	for _, c := range r.ChildElements() {
		switch c.FullTag() {
		case "w:t":
			b.WriteString(c.Text())
		case "w:tab":
			b.WriteByte('\t')
		case "w:br", "w:cr":
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// setRunText replaces the run's text content, keeping its properties.
func setRunText(r *etree.Element, text string) {
	for _, c := range r.ChildElements() {
		switch c.FullTag() {
		case "w:t", "w:tab", "w:br", "w:cr":
			r.RemoveChild(c)
		}
	}
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
}
