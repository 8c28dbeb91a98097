package adapters

import (
	"context"
	"errors"
	"generate-avatar-video/application/ports/outbound"
	"generate-avatar-video/domain"
	"generate-avatar-video/poll_utils"
	"os"
	"time"
)

type fileStabilityWaiter struct {
	logger outbound.LoggerPort
}

// NewFileStabilityWaiter watches a path until its size has stopped changing.
// External downloads return control before the file is fully flushed, and
// the downstream media parser has zero tolerance for partial files, so a
// plain existence check is not enough.
func NewFileStabilityWaiter(logger outbound.LoggerPort) outbound.ArtifactWaiterPort {
	return &fileStabilityWaiter{
		logger: logger,
	}
}

func (w *fileStabilityWaiter) AwaitStable(ctx context.Context, path string, opts outbound.StabilityOptions) (domain.FileMeta, error) {
	var (
		appeared    bool
		lastSize    int64 = -1
		stableCount int
		meta        domain.FileMeta
	)

	interval := time.Duration(opts.Interval) * time.Millisecond

	err := poll_utils.Poll(ctx, interval, opts.MaxAttempts, func(attempt int) (bool, error) {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				// Transient until attempts run out: the producer may not
				// have created the file yet.
				lastSize = -1
				stableCount = 0
				return false, nil
			}
			return false, err
		}

		appeared = true
		size := info.Size()
		if size > 0 && size == lastSize {
			stableCount++
		} else {
			stableCount = 0
		}
		lastSize = size

		if stableCount >= opts.RequiredStableChecks {
			meta = domain.FileMeta{Path: path, Size: size}
			return true, nil
		}
		return false, nil
	})

	if err != nil {
		if errors.Is(err, poll_utils.ErrAttemptsExhausted) || errors.Is(err, context.DeadlineExceeded) {
			if appeared {
				w.logger.ErrorWithFields(err, "artifact appeared but never stabilized", map[string]interface{}{
					"path":     path,
					"lastSize": lastSize,
				})
				return domain.FileMeta{}, domain.NewKindError(domain.Timeout,
					"file %s appeared but never stabilized (last size %d)", path, lastSize)
			}
			w.logger.ErrorWithFields(err, "artifact never appeared", map[string]interface{}{
				"path": path,
			})
			return domain.FileMeta{}, domain.NewKindError(domain.Timeout, "file %s never appeared", path)
		}
		return domain.FileMeta{}, err
	}

	// Absorb filesystem buffering beneath the polling granularity before
	// handing the file to a strict parser.
	settle := time.Duration(opts.SettleDelay) * time.Millisecond
	if settle > 0 {
		select {
		case <-time.After(settle):
		case <-ctx.Done():
			return domain.FileMeta{}, ctx.Err()
		}
	}

	w.logger.DebugWithFields("artifact stable", map[string]interface{}{
		"path": path,
		"size": meta.Size,
	})
	return meta, nil
}
