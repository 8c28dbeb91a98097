package channel_utils

import (
	"generate-avatar-video/application/ports/outbound"
	"sync"
)

// MergeChannels fans values from every input channel into one output channel,
// closing the output once every input is drained. Drain goroutines run on the
// shared worker pool rather than bare goroutines.
func MergeChannels[T any](workerPool outbound.TaskDispatcher, channels ...<-chan T) (<-chan T, error) {
	merged := make(chan T)

	var wg sync.WaitGroup
	wg.Add(len(channels))

	for _, c := range channels {
		ch := c
		err := workerPool.Submit(func() {
			defer wg.Done()
			for val := range ch {
				merged <- val
			}
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	if err := workerPool.Submit(func() {
		wg.Wait()
		close(merged)
	}); err != nil {
		return nil, err
	}

	return merged, nil
}
