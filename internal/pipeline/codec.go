package pipeline

import "github.com/sendo-kakeru/image-resize/internal/domain"

// Image is a decoded pixel buffer held by one codec backend. Close releases
// backend resources; it is a no-op for the stdlib backend.
type Image interface {
	Width() int
	Height() int
	Close()
}

// Codec provides the decode/resize/encode primitives for one backend.
// Resize may mutate and return its input; callers close only the returned
// Image.
type Codec interface {
	Decode(data []byte) (Image, string, error)
	Resize(img Image, width, height int) (Image, error)
	Encode(img Image, format domain.OutputFormat, quality int) ([]byte, error)
}
