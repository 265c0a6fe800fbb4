package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/sendo-kakeru/image-resize/internal/domain"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// stdCodec decodes and encodes with the Go image packages: jpeg/png/gif
// plus webp/bmp/tiff decode via x/image. webp and avif export need the
// govips build.
type stdCodec struct{}

type stdImage struct {
	img image.Image
}

func (i stdImage) Width() int  { return i.img.Bounds().Dx() }
func (i stdImage) Height() int { return i.img.Bounds().Dy() }
func (i stdImage) Close()      {}

func (stdCodec) Decode(data []byte) (Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode source image: %w", err)
	}
	return stdImage{img: img}, format, nil
}

// Resize scales with the Catmull-Rom kernel, the highest-quality filter
// x/image/draw offers.
func (stdCodec) Resize(img Image, width, height int) (Image, error) {
	src, ok := img.(stdImage)
	if !ok {
		return nil, errors.New("resize: unexpected image backend")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src.img, src.img.Bounds(), xdraw.Src, nil)
	return stdImage{img: dst}, nil
}

func (stdCodec) Encode(img Image, format domain.OutputFormat, quality int) ([]byte, error) {
	src, ok := img.(stdImage)
	if !ok {
		return nil, errors.New("encode: unexpected image backend")
	}

	var buf bytes.Buffer
	switch format {
	case domain.FormatJPEG:
		if err := jpeg.Encode(&buf, src.img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case domain.FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := encoder.Encode(&buf, src.img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	case domain.FormatWEBP:
		return nil, errors.New("webp export requires the govips build tag")
	case domain.FormatAVIF:
		return nil, errors.New("avif export requires the govips build tag")
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return buf.Bytes(), nil
}
