package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/aerladis/eflwizard/internal/topics"
)

type fakeEngine struct {
	calls atomic.Int32
	text  func(in Input) (string, error)
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, in Input) (string, error) {
	f.calls.Add(1)
	return f.text(in)
}

// fakePages writes n tiny PNGs whose single gray pixel encodes the page number.
type fakePages struct {
	n   int
	err error
}

func (f fakePages) RenderPages(_ context.Context, _ string, dir string, _ int, maxPages int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for i := 1; i <= f.n && i <= maxPages; i++ {
		img := image.NewGray(image.Rect(0, 0, 1, 1))
		img.SetGray(0, 0, color.Gray{Y: uint8(i)})
		p := filepath.Join(dir, fmt.Sprintf("page-%d.png", i))
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func pageText(in Input) (string, error) {
	img, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		return "", err
	}
	g := color.GrayModel.Convert(img.At(0, 0)).(color.Gray)
	return fmt.Sprintf("  text of page %d\n", g.Y), nil
}

func TestKind(t *testing.T) {
	tests := []struct {
		path string
		want FileKind
		err  error
	}{
		{"scan.PNG", KindImage, nil},
		{"a/b/photo.jpeg", KindImage, nil},
		{"x.tif", KindImage, nil},
		{"book.pdf", KindPDF, nil},
		{"notes.docx", 0, ErrUnsupportedFile},
		{"noext", 0, ErrUnsupportedFile},
	}
	for _, tt := range tests {
		got, err := Kind(tt.path)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("Kind(%q) = %v, %v; want %v, %v", tt.path, got, err, tt.want, tt.err)
		}
	}
}

func TestExtractPDFKeepsPageOrder(t *testing.T) {
	eng := &fakeEngine{text: pageText}
	x := NewExtractor(Options{Engine: eng, Pages: fakePages{n: 7}, MaxPages: 4, Parallelism: 3})

	var msgs []string
	text, err := x.ExtractFile(context.Background(), "book.pdf", func(m string) { msgs = append(msgs, m) })
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	want := "=== PAGE 1 ===\ntext of page 1\n\n=== PAGE 2 ===\ntext of page 2\n\n=== PAGE 3 ===\ntext of page 3\n\n=== PAGE 4 ===\ntext of page 4"
	if text != want {
		t.Errorf("text =\n%s\nwant\n%s", text, want)
	}
	if eng.calls.Load() != 4 {
		t.Errorf("engine called %d times, want 4", eng.calls.Load())
	}
	if len(msgs) != 1 || msgs[0] != "Processing PDF..." {
		t.Errorf("progress = %v", msgs)
	}
}

func TestExtractPDFPageError(t *testing.T) {
	eng := &fakeEngine{text: func(Input) (string, error) { return "", errors.New("tesseract crashed") }}
	x := NewExtractor(Options{Engine: eng, Pages: fakePages{n: 2}})
	_, err := x.ExtractFile(context.Background(), "book.pdf", nil)
	if err == nil || !strings.Contains(err.Error(), "tesseract crashed") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestExtractImageBMP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{200, 180, 160, 255})
		}
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "scan.bmp")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	var got image.Image
	eng := &fakeEngine{text: func(in Input) (string, error) {
		var err error
		got, err = png.Decode(bytes.NewReader(in.Image))
		return "Unit 4 Travel", err
	}}
	x := NewExtractor(Options{Engine: eng})
	text, err := x.ExtractFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if text != "Unit 4 Travel" {
		t.Errorf("text = %q", text)
	}
	if _, ok := got.(*image.Gray); !ok {
		t.Errorf("engine received %T, want grayscale", got)
	}
}

func TestExtractNoText(t *testing.T) {
	eng := &fakeEngine{text: func(Input) (string, error) { return "  \n", nil }}
	x := NewExtractor(Options{Engine: eng})
	path := filepath.Join(t.TempDir(), "blank.png")
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)))
	os.WriteFile(path, buf.Bytes(), 0o644)

	if _, err := x.ExtractFile(context.Background(), path, nil); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
}

type fakeTopics struct {
	got string
}

func (f *fakeTopics) ExtractTopics(_ context.Context, text, fallback string) (topics.Extraction, error) {
	f.got = text
	return topics.Extraction{Title: fallback, TopicsText: "* travel", Vocab: []string{"passport"}}, nil
}

func TestImport(t *testing.T) {
	eng := &fakeEngine{text: pageText}
	ft := &fakeTopics{}
	im := &Importer{Extractor: NewExtractor(Options{Engine: eng, Pages: fakePages{n: 1}}), Topics: ft}

	var msgs []string
	ext, raw, err := im.Import(context.Background(), "unit.pdf", func(m string) { msgs = append(msgs, m) })
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if ext.Title != FallbackTitle || ext.Vocab[0] != "passport" {
		t.Errorf("extraction = %+v", ext)
	}
	if raw != ft.got || !strings.HasPrefix(raw, "=== PAGE 1 ===") {
		t.Errorf("raw text = %q", raw)
	}
	want := []string{"Starting OCR...", "Processing PDF...", "Extracting topics...", "OCR completed successfully!"}
	if strings.Join(msgs, "|") != strings.Join(want, "|") {
		t.Errorf("progress = %v", msgs)
	}
}

func TestEngineByName(t *testing.T) {
	e, err := EngineByName(CLIEngineName)
	if err != nil || e.Name() != CLIEngineName {
		t.Errorf("EngineByName(cli) = %v, %v", e, err)
	}
	if _, err := EngineByName("nope"); !errors.Is(err, ErrNoEngine) {
		t.Errorf("expected ErrNoEngine, got %v", err)
	}
}

type fakeRunner struct {
	args []string
}

func (f *fakeRunner) LookPath(name string) (string, error) { return name, nil }
func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.args = append([]string{name}, args...)
	return []byte(" hello \n"), nil
}

func TestCLIEngineArgs(t *testing.T) {
	r := &fakeRunner{}
	e := &CLIEngine{Runner: r}
	out, err := e.Recognize(context.Background(), Input{Image: []byte("png"), PSM: 6})
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if out != "hello" {
		t.Errorf("out = %q", out)
	}
	got := strings.Join(r.args[2:], " ")
	if r.args[0] != "tesseract" || got != "stdout -l eng --psm 6" {
		t.Errorf("args = %v", r.args)
	}
}

func TestPopplerPagesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"page-10.png", "page-02.png", "page-01.png"} {
		os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644)
	}
	r := &fakeRunner{}
	got, err := PopplerPages{Runner: r}.RenderPages(context.Background(), "in.pdf", dir, 150, 10)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got[0]) != "page-01.png" || filepath.Base(got[2]) != "page-10.png" {
		t.Errorf("order = %v", got)
	}
	if strings.Join(r.args, " ") != "pdftoppm -png -gray -r 150 -f 1 -l 10 in.pdf "+filepath.Join(dir, "page") {
		t.Errorf("args = %v", r.args)
	}
}
