package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bondingCurve/internal/model"
)

// Target is a named sink behind a Publisher.
type Target struct {
	Name string
	Sink Sink
}

// PublisherConfig controls retries for each target.
type PublisherConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	// OnFailure, when set, is called with the target name after its retries
	// are exhausted.
	OnFailure func(sink string)
}

// Publisher fans records out to every target, retrying each with
// exponential backoff. A failing target does not stop the others.
type Publisher struct {
	targets []Target
	cfg     PublisherConfig
	logger  *zap.Logger
}

func NewPublisher(cfg PublisherConfig, logger *zap.Logger, targets ...Target) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{targets: targets, cfg: cfg, logger: logger}
}

// Publish implements Sink. The returned error joins every target failure.
func (p *Publisher) Publish(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	var errs []error
	for _, target := range p.targets {
		err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.BaseDelay, func(ctx context.Context) error {
			return target.Sink.Publish(ctx, records)
		})
		if err != nil {
			p.logger.Warn("sink publish failed",
				zap.String("sink", target.Name),
				zap.Int("records", len(records)),
				zap.Error(err),
			)
			if p.cfg.OnFailure != nil {
				p.cfg.OnFailure(target.Name)
			}
			errs = append(errs, fmt.Errorf("%s: %w", target.Name, err))
		}
	}
	return errors.Join(errs...)
}

func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}
