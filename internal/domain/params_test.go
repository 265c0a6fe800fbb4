package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestTransformParamsValidateQuality(t *testing.T) {
	for _, q := range []int{1, 50, 100} {
		p := TransformParams{Quality: intPtr(q)}
		if err := p.Validate(); err != nil {
			t.Fatalf("expected quality %d to be valid, got %v", q, err)
		}
	}
	for _, q := range []int{0, 101, -1} {
		p := TransformParams{Quality: intPtr(q)}
		err := p.Validate()
		if err == nil {
			t.Fatalf("expected quality %d to be rejected", q)
		}
		if !errors.Is(err, ErrInvalidParams) {
			t.Fatalf("expected ErrInvalidParams for quality %d, got %v", q, err)
		}
	}
}

func TestTransformParamsValidateDimensions(t *testing.T) {
	for _, v := range []int{1, 2048, 4096} {
		if err := (TransformParams{Width: intPtr(v)}).Validate(); err != nil {
			t.Fatalf("expected width %d to be valid, got %v", v, err)
		}
		if err := (TransformParams{Height: intPtr(v)}).Validate(); err != nil {
			t.Fatalf("expected height %d to be valid, got %v", v, err)
		}
	}
	for _, v := range []int{0, 4097} {
		if err := (TransformParams{Width: intPtr(v)}).Validate(); err == nil {
			t.Fatalf("expected width %d to be rejected", v)
		}
		if err := (TransformParams{Height: intPtr(v)}).Validate(); err == nil {
			t.Fatalf("expected height %d to be rejected", v)
		}
	}
}

func TestTransformParamsNeedsTransform(t *testing.T) {
	if (TransformParams{}).NeedsTransform() {
		t.Fatal("expected empty params to be passthrough")
	}
	if !(TransformParams{Width: intPtr(100)}).NeedsTransform() {
		t.Fatal("expected width to require a transform")
	}
	if !(TransformParams{Format: FormatWEBP}).NeedsTransform() {
		t.Fatal("expected format to require a transform")
	}
	if !(TransformParams{Quality: intPtr(80)}).NeedsTransform() {
		t.Fatal("expected quality to require a transform")
	}
}

func TestParseOutputFormat(t *testing.T) {
	cases := map[string]OutputFormat{
		"jpg":  FormatJPEG,
		"JPEG": FormatJPEG,
		"png":  FormatPNG,
		"WebP": FormatWEBP,
		"avif": FormatAVIF,
	}
	for raw, want := range cases {
		got, err := ParseOutputFormat(raw)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
		if got != want {
			t.Fatalf("expected %q to parse as %s, got %s", raw, want, got)
		}
	}

	if _, err := ParseOutputFormat("bmp"); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams for bmp, got %v", err)
	}
}

func TestNegotiateFormat(t *testing.T) {
	// An explicit request wins even over a detected source format.
	if got := NegotiateFormat("png", FormatWEBP); got != FormatWEBP {
		t.Fatalf("expected requested webp to win, got %s", got)
	}
	// A supported detected format is preserved.
	if got := NegotiateFormat("png", ""); got != FormatPNG {
		t.Fatalf("expected detected png to be preserved, got %s", got)
	}
	// Undetected or unsupported sources fall back to jpeg.
	if got := NegotiateFormat("", ""); got != FormatJPEG {
		t.Fatalf("expected jpeg fallback for undetected source, got %s", got)
	}
	if got := NegotiateFormat("gif", ""); got != FormatJPEG {
		t.Fatalf("expected jpeg fallback for gif source, got %s", got)
	}
}

func TestOutputFormatPolicy(t *testing.T) {
	if !FormatPNG.Lossless() || !FormatWEBP.Lossless() {
		t.Fatal("expected png and webp to be lossless-only")
	}
	if FormatJPEG.Lossless() || FormatAVIF.Lossless() {
		t.Fatal("expected jpeg and avif to accept quality")
	}

	types := map[OutputFormat]string{
		FormatJPEG: "image/jpeg",
		FormatPNG:  "image/png",
		FormatWEBP: "image/webp",
		FormatAVIF: "image/avif",
	}
	for format, want := range types {
		if got := format.ContentType(); got != want {
			t.Fatalf("expected %s content type %s, got %s", format, want, got)
		}
	}
}
