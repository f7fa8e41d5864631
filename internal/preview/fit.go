package preview

import (
	"image"
	"image/color"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Fit scales src to fit within w×h keeping its aspect ratio.
func Fit(src image.Image, w, h int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	tw, th := w, b.Dy()*w/b.Dx()
	if th > h {
		th = h
		tw = b.Dx() * h / b.Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(1, tw), max(1, th)))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

var shades = []rune(" ░▒▓█")

// Thumbnail renders img as block characters in a cols×rows cell grid.
// Terminal cells are about twice as tall as wide, so the image is fitted
// to cols×(rows*2) and two pixel rows are averaged per cell.
func Thumbnail(img image.Image, cols, rows int) string {
	small := Fit(img, cols, rows*2)
	b := small.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			l := lum(small.At(x, y))
			if y+1 < b.Max.Y {
				l = (l + lum(small.At(x, y+1))) / 2
			}
			// dark ink gets the dense block
			idx := int((1-l)*float64(len(shades)-1) + 0.5)
			sb.WriteRune(shades[idx])
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func lum(c color.Color) float64 {
	g := color.GrayModel.Convert(c).(color.Gray)
	return float64(g.Y) / 255
}

// LoadThumbnail decodes the PNG at path and renders a Thumbnail.
func LoadThumbnail(path string, cols, rows int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return "", err
	}
	return Thumbnail(img, cols, rows), nil
}
