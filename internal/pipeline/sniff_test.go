package pipeline

import "testing"

func TestSniffContentType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"avif", []byte("\x00\x00\x00\x20ftypavif\x00\x00"), "image/avif"},
		{"unknown", []byte("plain text"), "application/octet-stream"},
		{"empty", nil, "application/octet-stream"},
		{"short riff", []byte("RIFF"), "application/octet-stream"},
	}

	for _, tc := range cases {
		if got := SniffContentType(tc.data); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
