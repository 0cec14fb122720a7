// Package listingtest provides fakes for exercising listing controllers in tests.
package listingtest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
)

// ErrFetcherClosed is returned to fetches still waiting when the fetcher closes.
var ErrFetcherClosed = errors.New("listingtest: fetcher closed")

// Item is a minimal resource.
type Item struct {
	ID   int64
	Name string
}

// ResourceID implements listing.Resource.
func (i Item) ResourceID() int64 { return i.ID }

// Items builds n items with ids starting at first.
func Items(first int64, n int) []Item {
	out := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Item{ID: first + int64(i), Name: "item"})
	}
	return out
}

// Page builds a page result.
func Page[T any](items []T, current, last, perPage, total int) listing.PageResult[T] {
	return listing.PageResult[T]{Items: items, CurrentPage: current, LastPage: last, PerPage: perPage, Total: total}
}

type reply[T any] struct {
	res listing.PageResult[T]
	err error
}

// Call is one pending fetch.
type Call[T any] struct {
	Query listing.Query
	Ctx   context.Context
	reply chan reply[T]
}

// Respond completes the fetch successfully.
func (c *Call[T]) Respond(res listing.PageResult[T]) {
	c.reply <- reply[T]{res: res}
}

// Fail completes the fetch with err.
func (c *Call[T]) Fail(err error) {
	c.reply <- reply[T]{err: err}
}

// Fetcher records every fetch and blocks it until the test answers.
// Context cancellation is ignored unless HonorCancel is set, which
// models a network that delivers responses for superseded requests.
type Fetcher[T any] struct {
	HonorCancel bool

	calls chan *Call[T]
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	queries []listing.Query
}

// NewFetcher creates a fetcher; it is closed when the test ends.
func NewFetcher[T any](t testing.TB) *Fetcher[T] {
	f := &Fetcher[T]{calls: make(chan *Call[T], 64), done: make(chan struct{})}
	t.Cleanup(f.Close)
	return f
}

// List implements listing.Fetcher.
func (f *Fetcher[T]) List(ctx context.Context, q listing.Query) (listing.PageResult[T], error) {
	call := &Call[T]{Query: q, Ctx: ctx, reply: make(chan reply[T], 1)}
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	f.calls <- call

	var cancelled <-chan struct{}
	if f.HonorCancel {
		cancelled = ctx.Done()
	}
	select {
	case r := <-call.reply:
		return r.res, r.err
	case <-cancelled:
		return listing.PageResult[T]{}, ctx.Err()
	case <-f.done:
		return listing.PageResult[T]{}, ErrFetcherClosed
	}
}

// Next waits for the next fetch.
func (f *Fetcher[T]) Next(t testing.TB) *Call[T] {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no fetch dispatched")
		return nil
	}
}

// ExpectNone asserts that no fetch is dispatched within d.
func (f *Fetcher[T]) ExpectNone(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case call := <-f.calls:
		require.FailNow(t, "unexpected fetch", "query: %+v", call.Query)
	case <-time.After(d):
	}
}

// Queries returns every query received so far.
func (f *Fetcher[T]) Queries() []listing.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listing.Query(nil), f.queries...)
}

// Close releases every blocked fetch.
func (f *Fetcher[T]) Close() {
	f.once.Do(func() { close(f.done) })
}

// WaitFor polls the controller until cond holds and returns the matching state.
func WaitFor[T listing.Resource](t testing.TB, c *listing.Controller[T], cond func(listing.State[T]) bool) listing.State[T] {
	t.Helper()
	var last listing.State[T]
	require.Eventually(t, func() bool {
		last = c.State()
		return cond(last)
	}, 2*time.Second, 5*time.Millisecond, "controller never reached expected state")
	return last
}

// Clock is a manually advanced listing.Clock.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
}

type timer struct {
	clock   *Clock
	at      time.Time
	fn      func()
	stopped bool
}

// Stop implements listing.Timer.
func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// NewClock returns a clock frozen at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

// Now implements listing.Clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements listing.Clock.
func (c *Clock) AfterFunc(d time.Duration, f func()) listing.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &timer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward and runs every timer that came due, in order.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, keep []*timer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(c.now):
			t.stopped = true
			due = append(due, t)
		default:
			keep = append(keep, t)
		}
	}
	c.timers = keep
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}
