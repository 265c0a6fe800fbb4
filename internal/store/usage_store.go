package store

import (
	"context"

	"github.com/sendo-kakeru/image-resize/internal/domain"
)

// UsageStore persists per-transform usage rows for metering. Writes are
// best-effort; a failed write never fails the request that produced it.
type UsageStore interface {
	CreateUsageLog(ctx context.Context, usage domain.UsageLog) error
}
