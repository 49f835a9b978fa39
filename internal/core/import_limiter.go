package core

// import_limiter.go bounds how many imports parse and write at once. An
// import that finds every slot taken queues for up to maxWait, then fails
// with ErrTooManyImports. Shutdown uses WaitForDrain to let running imports
// commit before the server stops.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyImports is returned when no import slot frees up in time.
var ErrTooManyImports = errors.New("too many concurrent imports, please try again later")

const (
	DefaultMaxConcurrentImports = 5
	DefaultImportWait           = 30 * time.Second
)

// ImportSlots is the limiter snapshot served by the health endpoint.
type ImportSlots struct {
	Active   int `json:"active"`
	Waiting  int `json:"waiting"`
	Capacity int `json:"capacity"`
}

// ImportLimiter hands out a fixed number of import slots.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	waiting int
	// idle is closed whenever active is zero.
	idle chan struct{}
}

func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultImportWait
	}

	idle := make(chan struct{})
	close(idle)
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot for one import. The returned release func gives it
// back and is safe to call more than once.
func (l *ImportLimiter) Acquire(ctx context.Context) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.waiting++
	l.mu.Unlock()

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = ErrTooManyImports
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.waiting--
	if err != nil {
		return nil, err
	}
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++

	var once sync.Once
	return func() { once.Do(l.release) }, nil
}

func (l *ImportLimiter) release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	<-l.slots
}

// WaitForDrain blocks until no import holds a slot or ctx is done.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *ImportLimiter) Status() ImportSlots {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ImportSlots{Active: l.active, Waiting: l.waiting, Capacity: cap(l.slots)}
}
