package domain

import "time"

// UsageLog records one completed transform for metering. The object key is
// stored server-side only and never echoed to clients.
type UsageLog struct {
	ObjectKey     string
	Format        string
	SourceBytes   int64
	OutputBytes   int64
	OutputPixels  int64
	ComputeTimeMS int64
	CreatedAt     time.Time
}
