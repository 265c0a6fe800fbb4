package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/sendo-kakeru/image-resize/internal/domain"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()

	processor, err := NewProcessor(2)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return processor
}

func TestTransformResizeWidthOnly(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildTestPNG(t, 1000, 500)

	result, err := processor.Transform(context.Background(), src, domain.TransformParams{Width: intPtr(500)})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if result.Width != 500 || result.Height != 250 {
		t.Fatalf("expected 500x250, got %dx%d", result.Width, result.Height)
	}
	if result.ContentType != "image/png" {
		t.Fatalf("expected source png format preserved, got %s", result.ContentType)
	}
	verifyDecodedSize(t, result.Data, "png", 500, 250)
}

func TestTransformBoundingBox(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildTestPNG(t, 1000, 500)

	result, err := processor.Transform(context.Background(), src, domain.TransformParams{
		Width:  intPtr(200),
		Height: intPtr(200),
	})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if result.Width != 200 || result.Height != 100 {
		t.Fatalf("expected 200x100, got %dx%d", result.Width, result.Height)
	}
	verifyDecodedSize(t, result.Data, "png", 200, 100)
}

func TestTransformFormatConversionSkipsResize(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildTestPNG(t, 240, 120)

	result, err := processor.Transform(context.Background(), src, domain.TransformParams{Format: domain.FormatJPEG})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if result.Width != 240 || result.Height != 120 {
		t.Fatalf("expected unchanged 240x120, got %dx%d", result.Width, result.Height)
	}
	if result.ContentType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", result.ContentType)
	}
	verifyDecodedSize(t, result.Data, "jpeg", 240, 120)
}

func TestTransformUnsupportedSourceFallsBackToJPEG(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildTestGIF(t, 80, 40)

	result, err := processor.Transform(context.Background(), src, domain.TransformParams{Width: intPtr(40)})
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	if result.Format != domain.FormatJPEG {
		t.Fatalf("expected jpeg fallback for gif source, got %s", result.Format)
	}
	verifyDecodedSize(t, result.Data, "jpeg", 40, 20)
}

func TestTransformRejectsOversizedSource(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildLargeGrayPNG(t, 4100, 4100)

	// A tiny requested output must not bypass the decoded pixel guard.
	_, err := processor.Transform(context.Background(), src, domain.TransformParams{
		Width:  intPtr(10),
		Height: intPtr(10),
	})
	if !errors.Is(err, domain.ErrResolutionTooLarge) {
		t.Fatalf("expected ErrResolutionTooLarge, got %v", err)
	}
}

func TestTransformRejectsOversizedOutput(t *testing.T) {
	processor := newTestProcessor(t)
	src := buildTestPNG(t, 100, 200)

	// Width-only scaling doubles the height past the output ceiling.
	_, err := processor.Transform(context.Background(), src, domain.TransformParams{Width: intPtr(4096)})
	if !errors.Is(err, domain.ErrResolutionTooLarge) {
		t.Fatalf("expected ErrResolutionTooLarge, got %v", err)
	}
}

func TestTransformQualityPolicy(t *testing.T) {
	processor := newTestProcessor(t)
	pngSrc := buildTestPNG(t, 60, 60)
	jpegSrc := buildTestJPEG(t, 60, 60)

	// Lossless formats reject a quality parameter instead of ignoring it,
	// whether requested explicitly or negotiated from the source.
	_, err := processor.Transform(context.Background(), jpegSrc, domain.TransformParams{
		Format:  domain.FormatPNG,
		Quality: intPtr(50),
	})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for f=png with quality, got %v", err)
	}

	_, err = processor.Transform(context.Background(), pngSrc, domain.TransformParams{Quality: intPtr(50)})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for negotiated png with quality, got %v", err)
	}

	if _, err := processor.Transform(context.Background(), jpegSrc, domain.TransformParams{Quality: intPtr(50)}); err != nil {
		t.Fatalf("expected jpeg with quality to succeed, got %v", err)
	}
	if _, err := processor.Transform(context.Background(), pngSrc, domain.TransformParams{
		Format:  domain.FormatJPEG,
		Quality: intPtr(50),
	}); err != nil {
		t.Fatalf("expected f=jpg with quality to succeed, got %v", err)
	}
}

func TestTransformParamValidationShortCircuits(t *testing.T) {
	processor := newTestProcessor(t)

	// Invalid parameters are rejected before any decode work happens, so
	// garbage input never reaches the codec.
	_, err := processor.Transform(context.Background(), []byte("not an image"), domain.TransformParams{
		Width: intPtr(0),
	})
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}

func TestTransformDecodeFailure(t *testing.T) {
	processor := newTestProcessor(t)

	_, err := processor.Transform(context.Background(), []byte("not an image"), domain.TransformParams{
		Width: intPtr(10),
	})
	if !errors.Is(err, domain.ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got %v", err)
	}
}

func buildTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, buildTestImage(w, h)); err != nil {
		t.Fatalf("encode source png: %v", err)
	}
	return buf.Bytes()
}

func buildTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, buildTestImage(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode source jpeg: %v", err)
	}
	return buf.Bytes()
}

func buildTestGIF(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := gif.Encode(&buf, buildTestImage(w, h), nil); err != nil {
		t.Fatalf("encode source gif: %v", err)
	}
	return buf.Bytes()
}

func buildLargeGrayPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode large png: %v", err)
	}
	return buf.Bytes()
}

func buildTestImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: 140,
				A: 255,
			})
		}
	}
	return img
}

func verifyDecodedSize(t *testing.T, data []byte, wantFormat string, wantW, wantH int) {
	t.Helper()

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != wantFormat {
		t.Fatalf("expected output format %s, got %s", wantFormat, format)
	}
	if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH {
		t.Fatalf("expected %dx%d, got %dx%d", wantW, wantH, img.Bounds().Dx(), img.Bounds().Dy())
	}
}
