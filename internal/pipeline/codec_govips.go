//go:build govips && cgo

package pipeline

import (
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/sendo-kakeru/image-resize/internal/domain"
)

type govipsCodec struct{}

type vipsImage struct {
	ref *vips.ImageRef
}

func (i vipsImage) Width() int  { return i.ref.Width() }
func (i vipsImage) Height() int { return i.ref.Height() }
func (i vipsImage) Close()      { i.ref.Close() }

func (govipsCodec) Decode(data []byte) (Image, string, error) {
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode source image: %w", err)
	}
	return vipsImage{ref: ref}, detectedFormatName(data), nil
}

func detectedFormatName(data []byte) string {
	switch vips.DetermineImageType(data) {
	case vips.ImageTypeJPEG:
		return "jpeg"
	case vips.ImageTypePNG:
		return "png"
	case vips.ImageTypeWEBP:
		return "webp"
	case vips.ImageTypeAVIF:
		return "avif"
	case vips.ImageTypeGIF:
		return "gif"
	default:
		return ""
	}
}

// Resize mutates the underlying vips image in place and returns it.
func (govipsCodec) Resize(img Image, width, height int) (Image, error) {
	src, ok := img.(vipsImage)
	if !ok {
		return nil, fmt.Errorf("resize: unexpected image backend")
	}

	hscale := float64(width) / float64(src.ref.Width())
	vscale := float64(height) / float64(src.ref.Height())
	if err := src.ref.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return nil, fmt.Errorf("resize image: %w", err)
	}
	return src, nil
}

func (govipsCodec) Encode(img Image, format domain.OutputFormat, quality int) ([]byte, error) {
	src, ok := img.(vipsImage)
	if !ok {
		return nil, fmt.Errorf("encode: unexpected image backend")
	}

	switch format {
	case domain.FormatJPEG:
		params := vips.NewJpegExportParams()
		params.Quality = quality
		params.StripMetadata = true
		data, _, err := src.ref.ExportJpeg(params)
		if err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return data, nil
	case domain.FormatPNG:
		params := vips.NewPngExportParams()
		params.StripMetadata = true
		data, _, err := src.ref.ExportPng(params)
		if err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		return data, nil
	case domain.FormatWEBP:
		params := vips.NewWebpExportParams()
		params.Lossless = true
		params.StripMetadata = true
		data, _, err := src.ref.ExportWebp(params)
		if err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
		return data, nil
	case domain.FormatAVIF:
		params := vips.NewAvifExportParams()
		params.Quality = quality
		params.StripMetadata = true
		data, _, err := src.ref.ExportAvif(params)
		if err != nil {
			return nil, fmt.Errorf("encode avif: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
