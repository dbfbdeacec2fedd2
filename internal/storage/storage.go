package storage

import (
	"context"

	"bondingCurve/internal/model"
)

// Sink receives committed pool events in sequence order.
type Sink interface {
	Publish(ctx context.Context, records []model.EventRecord) error
}
