package telegram

import (
	"sync"
	"testing"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	d := newDispatcher()
	keyA := models.SessionKey{ChatID: 1, UserID: 1}
	keyB := models.SessionKey{ChatID: 2, UserID: 2}

	const n = 200
	var mu sync.Mutex
	got := map[models.SessionKey][]int{}
	var wg sync.WaitGroup
	wg.Add(2 * n)

	for i := 0; i < n; i++ {
		i := i
		for _, key := range []models.SessionKey{keyA, keyB} {
			key := key
			d.enqueue(key, func() {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				wg.Done()
			})
		}
	}
	wg.Wait()

	for key, seq := range got {
		if len(seq) != n {
			t.Fatalf("key %v: ran %d jobs, want %d", key, len(seq), n)
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("key %v: job %d ran at position %d", key, v, i)
			}
		}
	}
}

func TestDispatcherReleasesIdleKeys(t *testing.T) {
	d := newDispatcher()
	key := models.SessionKey{ChatID: 1, UserID: 1}

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		d.enqueue(key, wg.Done)
	}
	wg.Wait()

	// The tail entry outlives the last job for an instant: the map cleanup
	// happens after fn and before close(done). Wait for the tail itself.
	d.mu.Lock()
	tail := d.tails[key]
	d.mu.Unlock()
	if tail != nil {
		<-tail
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tails) != 0 {
		t.Errorf("tails = %d entries, want 0 after the queue drains", len(d.tails))
	}
}
