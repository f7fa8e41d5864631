//go:build cgo

package tesseract

import (
	"context"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/aerladis/eflwizard/internal/ocr"
)

const Name = "gosseract"

func init() {
	ocr.SetDefaultEngine(&Engine{})
}

// Engine recognises images with gosseract. A tesseract client is not safe
// for concurrent use, so each call gets its own.
type Engine struct{}

func (e *Engine) Name() string { return Name }

func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	lang := in.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return "", err
	}
	if in.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(in.PSM)); err != nil {
			return "", err
		}
	}
	if in.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(in.DPI)); err != nil {
			return "", err
		}
	}
	if err := client.SetImageFromBytes(in.Image); err != nil {
		return "", err
	}

	text, err := client.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
