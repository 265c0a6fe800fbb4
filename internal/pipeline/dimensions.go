package pipeline

import "math"

// resolveContainDimensions computes the output size for a "contain" fit:
// the image is scaled to fit entirely within the requested bounds with the
// aspect ratio preserved, no cropping, no padding.
//
// Rounding is half-away-from-zero with a floor of 1 so an extreme aspect
// ratio can never produce a zero dimension.
func resolveContainDimensions(srcW, srcH int, targetW, targetH *int) (int, int) {
	switch {
	case targetW != nil && targetH != nil:
		scaleW := float64(*targetW) / float64(srcW)
		scaleH := float64(*targetH) / float64(srcH)
		scale := math.Min(scaleW, scaleH)
		return atLeastOne(math.Round(float64(srcW) * scale)),
			atLeastOne(math.Round(float64(srcH) * scale))
	case targetW != nil:
		scale := float64(*targetW) / float64(srcW)
		return *targetW, atLeastOne(math.Round(float64(srcH) * scale))
	case targetH != nil:
		scale := float64(*targetH) / float64(srcH)
		return atLeastOne(math.Round(float64(srcW) * scale)), *targetH
	default:
		return srcW, srcH
	}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
