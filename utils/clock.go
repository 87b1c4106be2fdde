package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock is injected wherever a timestamp is recorded so tests can pin time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant unless advanced.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// IDGenerator returns a new opaque identifier.
type IDGenerator func() string

// NewID is the production generator.
func NewID() string {
	return uuid.New().String()
}

// SequentialIDs returns a deterministic generator: prefix-1, prefix-2, ...
func SequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
