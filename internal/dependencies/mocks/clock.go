package mocks

import (
	"sort"
	"sync"
	"time"

	"github.com/tcgconnect/tcgconnect-go/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Timers fire synchronously from Advance, never from a background goroutine.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []*mockTimer
	nextID      int
}

type mockTimer struct {
	id      int
	fireAt  time.Time
	fn      func()
	stopped bool
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// AfterFunc registers fn to fire once the clock advances past d
func (c *MockClock) AfterFunc(d time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{
		id:     c.nextID,
		fireAt: c.CurrentTime.Add(d),
		fn:     fn,
	}
	c.nextID++
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		t.stopped = true
	}
}

// Advance moves the clock forward and fires any due timers in order
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.CurrentTime = c.CurrentTime.Add(d)
	now := c.CurrentTime

	var due []*mockTimer
	var remaining []*mockTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fireAt.After(now) {
			due = append(due, t)
		} else if !t.stopped {
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].fireAt.Equal(due[j].fireAt) {
			return due[i].id < due[j].id
		}
		return due[i].fireAt.Before(due[j].fireAt)
	})
	for _, t := range due {
		t.fn()
	}
}

// Set sets the clock to the given time without firing timers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}

// PendingTimers returns the number of scheduled, unfired timers
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, t := range c.timers {
		if !t.stopped {
			count++
		}
	}
	return count
}
