package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
)

type FigureFormat string

const (
	FormatPNG  FigureFormat = "png"
	FormatJPEG FigureFormat = "jpeg"
	FormatPDF  FigureFormat = "pdf"
	FormatSVG  FigureFormat = "svg"
	FormatEPS  FigureFormat = "eps"
)

// Figure is anything that can serialize itself in one of the figure
// formats. Renderers return an error for formats they cannot produce.
type Figure interface {
	Render(w io.Writer, format FigureFormat) error
}

// FigureFormatFor maps a file extension to a format. Unknown or missing
// extensions render as PNG.
func FigureFormatFor(name string) FigureFormat {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "jpg", "jpeg":
		return FormatJPEG
	case "pdf":
		return FormatPDF
	case "svg":
		return FormatSVG
	case "eps":
		return FormatEPS
	default:
		return FormatPNG
	}
}

func RenderFigure(fig Figure, format FigureFormat) ([]byte, error) {
	if fig == nil {
		return nil, fmt.Errorf("render %s figure: nil figure", format)
	}
	var buf bytes.Buffer
	if err := fig.Render(&buf, format); err != nil {
		return nil, fmt.Errorf("render %s figure: %w", format, err)
	}
	return buf.Bytes(), nil
}

// ImageFigure renders a raster image as PNG or JPEG.
type ImageFigure struct {
	Image   image.Image
	Quality int
}

func (f ImageFigure) Render(w io.Writer, format FigureFormat) error {
	if f.Image == nil {
		return fmt.Errorf("image figure has no image")
	}
	switch format {
	case FormatPNG:
		return png.Encode(w, f.Image)
	case FormatJPEG:
		quality := f.Quality
		if quality <= 0 {
			quality = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, f.Image, &jpeg.Options{Quality: quality})
	default:
		return fmt.Errorf("image figure cannot render %s", format)
	}
}
