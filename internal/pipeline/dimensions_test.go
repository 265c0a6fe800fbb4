package pipeline

import "testing"

func intPtr(v int) *int { return &v }

func TestResolveContainDimensions(t *testing.T) {
	cases := []struct {
		name           string
		srcW, srcH     int
		targetW        *int
		targetH        *int
		wantW, wantH   int
	}{
		{"width only scales height", 1000, 500, intPtr(500), nil, 500, 250},
		{"height only keeps larger width", 1000, 500, nil, intPtr(500), 1000, 500},
		{"bounding box uses smaller scale", 1000, 500, intPtr(200), intPtr(200), 200, 100},
		{"neither leaves source unchanged", 100, 100, nil, nil, 100, 100},
		{"upscale width only", 100, 50, intPtr(400), nil, 400, 200},
		{"rounding half away from zero", 1000, 333, intPtr(500), nil, 500, 167},
		{"extreme ratio floors at one", 1000, 1, intPtr(10), nil, 10, 1},
	}

	for _, tc := range cases {
		gotW, gotH := resolveContainDimensions(tc.srcW, tc.srcH, tc.targetW, tc.targetH)
		if gotW != tc.wantW || gotH != tc.wantH {
			t.Fatalf("%s: expected %dx%d, got %dx%d", tc.name, tc.wantW, tc.wantH, gotW, gotH)
		}
	}
}
