package telegram

import (
	"sync"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

// dispatcher runs jobs for the same key in arrival order while different
// keys proceed in parallel. Each key tracks the tail of its queue as a
// channel; a new job waits for the previous tail before running, so
// within-key order is FIFO regardless of goroutine scheduling.
type dispatcher struct {
	mu    sync.Mutex
	tails map[models.SessionKey]chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{tails: make(map[models.SessionKey]chan struct{})}
}

func (d *dispatcher) enqueue(key models.SessionKey, fn func()) {
	d.mu.Lock()
	prev := d.tails[key]
	done := make(chan struct{})
	d.tails[key] = done
	d.mu.Unlock()

	go func() {
		if prev != nil {
			<-prev
		}
		fn()

		d.mu.Lock()
		if d.tails[key] == done {
			delete(d.tails, key)
		}
		d.mu.Unlock()
		close(done)
	}()
}
