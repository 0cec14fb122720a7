package listing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultDebounce is the search debounce window.
const DefaultDebounce = 300 * time.Millisecond

// Fetcher loads one page of resources for a query.
type Fetcher[T any] interface {
	List(ctx context.Context, q Query) (PageResult[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, q Query) (PageResult[T], error)

// List calls f.
func (f FetcherFunc[T]) List(ctx context.Context, q Query) (PageResult[T], error) {
	return f(ctx, q)
}

// MutationKind identifies a completed create, update or delete.
type MutationKind int

const (
	MutationCreated MutationKind = iota + 1
	MutationUpdated
	MutationDeleted
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreated:
		return "created"
	case MutationUpdated:
		return "updated"
	case MutationDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Mutation describes a successful change made outside the controller.
type Mutation struct {
	Kind MutationKind
	ID   int64
}

// Options configures a Controller.
type Options struct {
	// Scope is the initial external scope, empty when the screen is unscoped.
	Scope string
	// FilterKeys is the fixed set of filters the screen understands.
	FilterKeys []string
	// PageSizes is the allowed page size set; DefaultPageSizes when empty.
	PageSizes []int
	// DefaultPageSize must be in PageSizes, else DefaultPageSize (the package
	// constant) or PageSizes[0] is used.
	DefaultPageSize int
	// Debounce delays search dispatch after the last keystroke.
	Debounce time.Duration
	// FetchTimeout bounds a single fetch; zero disables the bound.
	FetchTimeout time.Duration
	// Clock schedules debounce timers; the real clock when nil.
	Clock  Clock
	Logger *slog.Logger
	// ErrorMessage renders a fetch error for display; err.Error() when nil.
	ErrorMessage func(error) string
}

// Stats counts dispatches and their outcome.
type Stats struct {
	Dispatched uint64
	Applied    uint64
	Discarded  uint64
}

// Controller owns the state of one list screen. It is safe for concurrent use;
// all transitions are serialised by a single mutex.
type Controller[T Resource] struct {
	fetcher    Fetcher[T]
	clock      Clock
	logger     *slog.Logger
	debounce   time.Duration
	timeout    time.Duration
	filterKeys []string
	pageSizes  []int
	errMessage func(error) string

	ctx       context.Context
	ctxCancel context.CancelFunc
	changes   chan struct{}

	mu         sync.Mutex
	state      State[T]
	dispatched uint64
	applied    uint64
	discarded  uint64
	inflight   context.CancelFunc
	timer      Timer
	timerGen   uint64
	closed     bool
}

// New creates a controller in the Idle state holding the default query.
// Call Start to issue the first fetch.
func New[T Resource](ctx context.Context, fetcher Fetcher[T], opts Options) *Controller[T] {
	pageSizes := opts.PageSizes
	if len(pageSizes) == 0 {
		pageSizes = DefaultPageSizes
	}
	pageSize := opts.DefaultPageSize
	if !slices.Contains(pageSizes, pageSize) {
		pageSize = pageSizes[0]
		if slices.Contains(pageSizes, DefaultPageSize) {
			pageSize = DefaultPageSize
		}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errMessage := opts.ErrorMessage
	if errMessage == nil {
		errMessage = func(err error) string { return err.Error() }
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Controller[T]{
		fetcher:    fetcher,
		clock:      clock,
		logger:     logger,
		debounce:   debounce,
		timeout:    opts.FetchTimeout,
		filterKeys: slices.Clone(opts.FilterKeys),
		pageSizes:  slices.Clone(pageSizes),
		errMessage: errMessage,
		ctx:        ctx,
		ctxCancel:  cancel,
		changes:    make(chan struct{}, 1),
		state: State[T]{
			Status: StatusIdle,
			Query: Query{
				Scope:    opts.Scope,
				Page:     DefaultPage,
				PageSize: pageSize,
			},
		},
	}
}

// Start dispatches the current query.
func (c *Controller[T]) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.dispatchLocked(c.state.Query)
}

// State returns a snapshot of the controller state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Query = c.state.Query.Clone()
	if c.state.Result != nil {
		r := c.state.Result.clone()
		s.Result = &r
	}
	if c.state.LastError != nil {
		e := *c.state.LastError
		s.LastError = &e
	}
	return s
}

// Stats returns dispatch counters.
func (c *Controller[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Dispatched: c.dispatched, Applied: c.applied, Discarded: c.discarded}
}

// Changes delivers a coalesced signal after every state transition.
// The channel is closed by Close.
func (c *Controller[T]) Changes() <-chan struct{} {
	return c.changes
}

// PageSizes returns the allowed page sizes.
func (c *Controller[T]) PageSizes() []int {
	return slices.Clone(c.pageSizes)
}

// FilterKeys returns the filters the controller accepts.
func (c *Controller[T]) FilterKeys() []string {
	return slices.Clone(c.filterKeys)
}

// SetSearchText echoes s immediately and schedules a dispatch once the
// debounce window elapses without further input.
func (c *Controller[T]) SetSearchText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.SearchInput = s
	c.stopTimerLocked()
	c.state.Debouncing = true
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.debounce, func() { c.fireSearch(gen) })
	c.notifyLocked()
}

// SetFilter sets or clears (empty value) a filter and resets the page.
func (c *Controller[T]) SetFilter(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !slices.Contains(c.filterKeys, key) {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	c.applyLocked(c.foldSearchLocked(c.state.Query.WithFilter(key, value)))
	return nil
}

// SetScope rebinds the controller to a new external scope without debouncing.
func (c *Controller[T]) SetScope(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.applyLocked(c.foldSearchLocked(c.state.Query.WithScope(scope)))
}

// SetPage moves to page p of the current result.
func (c *Controller[T]) SetPage(p int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if p < 1 {
		return fmt.Errorf("%w: %d", ErrPageOutOfRange, p)
	}
	if c.state.Result != nil && p > c.state.Result.LastPage {
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, p, c.state.Result.LastPage)
	}
	c.applyLocked(c.state.Query.WithPage(p))
	return nil
}

// NextPage advances one page when possible.
func (c *Controller[T]) NextPage() error {
	return c.SetPage(c.State().Query.Page + 1)
}

// PrevPage goes back one page when possible.
func (c *Controller[T]) PrevPage() error {
	return c.SetPage(c.State().Query.Page - 1)
}

// SetPageSize changes the page size and resets the page.
func (c *Controller[T]) SetPageSize(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if !slices.Contains(c.pageSizes, n) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	c.applyLocked(c.foldSearchLocked(c.state.Query.WithPageSize(n)))
	return nil
}

// Refresh re-dispatches the current query unchanged.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.dispatchLocked(c.state.Query)
}

// RequestMutationSync re-dispatches the current query after a successful
// mutation. A deleted item is removed from the displayed page right away;
// when that empties a page other than the first, the previous page is fetched.
func (c *Controller[T]) RequestMutationSync(m Mutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	q := c.state.Query
	if m.Kind == MutationDeleted && c.state.Result != nil {
		res := c.state.Result.clone()
		before := len(res.Items)
		res.Items = slices.DeleteFunc(res.Items, func(item T) bool {
			return item.ResourceID() == m.ID
		})
		if removed := before - len(res.Items); removed > 0 {
			res.Total = max(0, res.Total-removed)
		}
		c.state.Result = &res
		if len(res.Items) == 0 && q.Page > 1 {
			q = q.WithPage(q.Page - 1)
		}
	}
	c.logger.Debug("listing: mutation sync",
		slog.String("kind", m.Kind.String()),
		slog.Int64("id", m.ID),
		slog.Int("page", q.Page))
	c.dispatchLocked(q)
}

// Close stops pending timers and discards any in-flight or future response.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.state.Debouncing = false
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.dispatched++
	c.ctxCancel()
	close(c.changes)
}

func (c *Controller[T]) fireSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.timerGen || !c.state.Debouncing {
		return
	}
	c.timer = nil
	c.state.Debouncing = false
	if c.state.SearchInput == c.state.Query.Search && c.state.Status != StatusError {
		c.notifyLocked()
		return
	}
	c.applyLocked(c.state.Query.WithSearch(c.state.SearchInput))
}

// foldSearchLocked cancels a pending debounce and carries its text into q.
func (c *Controller[T]) foldSearchLocked(q Query) Query {
	if !c.state.Debouncing {
		return q
	}
	c.stopTimerLocked()
	c.state.Debouncing = false
	if q.Search != c.state.SearchInput {
		q = q.WithSearch(c.state.SearchInput)
	}
	return q
}

func (c *Controller[T]) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// applyLocked dispatches q unless it repeats the query already loading or shown.
func (c *Controller[T]) applyLocked(q Query) {
	if q.Equal(c.state.Query) && (c.state.Status == StatusLoading || c.state.Status == StatusReady) {
		c.notifyLocked()
		return
	}
	c.dispatchLocked(q)
}

func (c *Controller[T]) dispatchLocked(q Query) {
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.dispatched++
	seq := c.dispatched
	q = q.Clone()
	c.state.Query = q
	if !c.state.Debouncing {
		c.state.SearchInput = q.Search
	}
	c.state.Status = StatusLoading
	c.state.Seq = seq

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(c.ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(c.ctx)
	}
	c.inflight = cancel
	c.notifyLocked()

	go c.run(ctx, cancel, seq, q.Clone())
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, seq uint64, q Query) {
	defer cancel()
	res, err := c.fetcher.List(ctx, q)
	c.complete(seq, q, res, err)
}

func (c *Controller[T]) complete(seq uint64, q Query, res PageResult[T], err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.dispatched || seq <= c.applied {
		c.discarded++
		c.logger.Debug("listing: discard stale response",
			slog.Uint64("seq", seq),
			slog.Uint64("latest", c.dispatched),
			slog.Bool("closed", c.closed))
		return
	}
	c.applied = seq
	c.inflight = nil

	if err != nil {
		c.state.Status = StatusError
		c.state.LastError = &ErrorInfo{Message: c.errMessage(err), Err: err, At: c.clock.Now()}
		c.logger.Warn("listing: fetch failed", slog.Uint64("seq", seq), slog.Any("error", err))
		c.notifyLocked()
		return
	}

	res = res.Normalize()
	if res.Total > 0 && len(res.Items) == 0 && q.Page > res.LastPage {
		c.logger.Debug("listing: page beyond last page, clamping",
			slog.Int("page", q.Page),
			slog.Int("last_page", res.LastPage))
		c.dispatchLocked(q.WithPage(res.LastPage))
		return
	}
	c.state.Status = StatusReady
	c.state.Result = &res
	c.state.LastError = nil
	c.notifyLocked()
}

func (c *Controller[T]) notifyLocked() {
	if c.closed {
		return
	}
	select {
	case c.changes <- struct{}{}:
	default:
	}
}
