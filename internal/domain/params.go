package domain

import "strings"

const (
	// MaxDimension bounds requested and resolved output dimensions.
	MaxDimension = 4096

	// DefaultQuality applies to lossy formats when no quality is supplied.
	DefaultQuality = 80
)

// OutputFormat is the closed set of codecs the service will emit.
type OutputFormat string

const (
	FormatJPEG OutputFormat = "jpeg"
	FormatPNG  OutputFormat = "png"
	FormatWEBP OutputFormat = "webp"
	FormatAVIF OutputFormat = "avif"
)

// ParseOutputFormat maps the f query parameter to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	case "avif":
		return FormatAVIF, nil
	default:
		return "", Errorf(ErrInvalidParams, "unsupported format '%s'. supported: jpg, png, webp, avif", s)
	}
}

func (f OutputFormat) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatWEBP:
		return "image/webp"
	case FormatAVIF:
		return "image/avif"
	default:
		return "image/jpeg"
	}
}

// Lossless reports whether the format is encoded lossless-only. A quality
// parameter supplied alongside such a format is rejected, not ignored.
func (f OutputFormat) Lossless() bool {
	return f == FormatPNG || f == FormatWEBP
}

// NegotiateFormat picks the output codec. An explicitly requested format
// always wins; otherwise a supported detected source format is preserved;
// anything else falls back to JPEG so the service only ever emits one of
// its four known content types.
func NegotiateFormat(detected string, requested OutputFormat) OutputFormat {
	if requested != "" {
		return requested
	}
	switch f := OutputFormat(strings.ToLower(detected)); f {
	case FormatJPEG, FormatPNG, FormatWEBP, FormatAVIF:
		return f
	}
	return FormatJPEG
}

// TransformParams are the optional transform controls from the query string.
// A nil pointer (or empty Format) means the parameter was absent.
type TransformParams struct {
	Width   *int
	Height  *int
	Format  OutputFormat
	Quality *int
}

// NeedsTransform reports whether any transform parameter is present. When
// false the stored bytes are served unmodified with no codec work.
func (p TransformParams) NeedsTransform() bool {
	return p.Width != nil || p.Height != nil || p.Format != "" || p.Quality != nil
}

// Validate range-checks every present field. It runs before any network or
// codec work so cheaply invalid requests never cost a store fetch.
func (p TransformParams) Validate() error {
	if p.Quality != nil && (*p.Quality < 1 || *p.Quality > 100) {
		return Errorf(ErrInvalidParams, "quality must be 1-100, got %d", *p.Quality)
	}
	if p.Width != nil && (*p.Width < 1 || *p.Width > MaxDimension) {
		return Errorf(ErrInvalidParams, "width must be 1-%d, got %d", MaxDimension, *p.Width)
	}
	if p.Height != nil && (*p.Height < 1 || *p.Height > MaxDimension) {
		return Errorf(ErrInvalidParams, "height must be 1-%d, got %d", MaxDimension, *p.Height)
	}
	return nil
}
