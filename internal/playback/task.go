package playback

import (
	"sync"
	"time"
)

// task runs fn on a fixed period in its own goroutine. fn receives the
// zero-based tick count and returns false to end the task.
type task struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func every(period time.Duration, fn func(tick int) bool) *task {
	t := &task{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-t.stop:
				return
			default:
			}
			if !fn(i) {
				return
			}
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return t
}

// Cancel stops the task and waits for its goroutine to exit. It is safe to
// call more than once and on a nil task, but never from inside fn.
func (t *task) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
	<-t.done
}
