package pipeline

import (
	"context"
	"fmt"

	"github.com/sendo-kakeru/image-resize/internal/domain"
)

// MaxSourcePixels caps the decoded pixel grid (4096*4096) regardless of the
// requested output size. A small encoded file can still decode to an
// oversized grid, so this is checked after decode, before any resize work.
const MaxSourcePixels = 16_777_216

// Result is one transformed output.
type Result struct {
	Data        []byte
	ContentType string
	Format      domain.OutputFormat
	Width       int
	Height      int
}

// Processor runs the decode -> resize -> encode pipeline. Those stages are
// CPU-bound with no suspension points, so concurrent transforms are bounded
// by a semaphore to keep codec work from starving request dispatch.
type Processor struct {
	codec Codec
	sem   chan struct{}
}

func NewProcessor(maxConcurrent int) (*Processor, error) {
	codec, err := newCodec()
	if err != nil {
		return nil, fmt.Errorf("build codec: %w", err)
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Processor{
		codec: codec,
		sem:   make(chan struct{}, maxConcurrent),
	}, nil
}

// Transform applies params to input, short-circuiting on the first failure.
// Embedded metadata (orientation, color profile tags) does not survive the
// decode/encode cycle.
func (p *Processor) Transform(ctx context.Context, input []byte, params domain.TransformParams) (Result, error) {
	if err := params.Validate(); err != nil {
		return Result{}, err
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-p.sem }()

	img, detected, err := p.codec.Decode(input)
	if err != nil {
		return Result{}, domain.Errorf(domain.ErrProcessingFailed, "failed to decode image: %v", err)
	}
	defer func() { img.Close() }()

	srcW, srcH := img.Width(), img.Height()
	if srcW < 1 || srcH < 1 {
		return Result{}, domain.Errorf(domain.ErrProcessingFailed, "source image has invalid dimensions")
	}
	if int64(srcW)*int64(srcH) > MaxSourcePixels {
		return Result{}, domain.Errorf(domain.ErrResolutionTooLarge,
			"image resolution %dx%d exceeds maximum %dx%d", srcW, srcH, domain.MaxDimension, domain.MaxDimension)
	}

	outW, outH := resolveContainDimensions(srcW, srcH, params.Width, params.Height)
	if outW > domain.MaxDimension || outH > domain.MaxDimension {
		return Result{}, domain.Errorf(domain.ErrResolutionTooLarge,
			"image resolution %dx%d exceeds maximum %dx%d", outW, outH, domain.MaxDimension, domain.MaxDimension)
	}

	// Resampling at scale=1 can introduce filtering artifacts, so the resize
	// stage is skipped entirely when the dimensions already match.
	if outW != srcW || outH != srcH {
		resized, err := p.codec.Resize(img, outW, outH)
		if err != nil {
			return Result{}, domain.Errorf(domain.ErrProcessingFailed, "failed to resize image: %v", err)
		}
		img = resized
	}

	format := domain.NegotiateFormat(detected, params.Format)

	quality := domain.DefaultQuality
	if format.Lossless() {
		if params.Quality != nil {
			return Result{}, domain.Errorf(domain.ErrInvalidParams,
				"quality parameter is not supported for %s (lossless only)", format)
		}
	} else if params.Quality != nil {
		quality = *params.Quality
	}

	data, err := p.codec.Encode(img, format, quality)
	if err != nil {
		return Result{}, domain.Errorf(domain.ErrProcessingFailed, "failed to encode image: %v", err)
	}

	return Result{
		Data:        data,
		ContentType: format.ContentType(),
		Format:      format,
		Width:       outW,
		Height:      outH,
	}, nil
}
