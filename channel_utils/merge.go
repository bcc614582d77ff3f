package channel_utils

import (
	"sync"

	"edge-speech-gateway/application/ports/outbound"
)

// MergeChannels fans the given channels into one. The merged channel closes
// once every input channel has closed.
func MergeChannels[T any](workerPool outbound.TaskDispatcher, channels ...<-chan T) (<-chan T, error) {
	var wg sync.WaitGroup
	merged := make(chan T)

	drain := func(c <-chan T) {
		defer wg.Done()
		for val := range c {
			merged <- val
		}
	}

	for _, c := range channels {
		ch := c
		wg.Add(1)
		if err := workerPool.Submit(func() { drain(ch) }); err != nil {
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
