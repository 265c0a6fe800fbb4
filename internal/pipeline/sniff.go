package pipeline

import "bytes"

// SniffContentType infers a content type from the payload's magic bytes.
// Only the four supported image formats are recognized; anything else is
// served as a generic binary.
func SniffContentType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}):
		return "image/png"
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	case len(data) >= 12 && bytes.Equal(data[4:12], []byte("ftypavif")):
		return "image/avif"
	default:
		return "application/octet-stream"
	}
}
