package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-backoffice/internal/listing"
	"github.com/odyssey-erp/odyssey-backoffice/internal/listing/listingtest"
)

type item = listingtest.Item

const debounce = 300 * time.Millisecond

func newController(t *testing.T, scope string) (*listing.Controller[item], *listingtest.Fetcher[item], *listingtest.Clock) {
	t.Helper()
	fetcher := listingtest.NewFetcher[item](t)
	clock := listingtest.NewClock()
	ctrl := listing.New[item](context.Background(), fetcher, listing.Options{
		Scope:      scope,
		FilterKeys: []string{"status", "category_id"},
		Debounce:   debounce,
		Clock:      clock,
	})
	t.Cleanup(ctrl.Close)
	return ctrl, fetcher, clock
}

// started returns a controller whose first page (of lastPage) is displayed.
func started(t *testing.T, lastPage int) (*listing.Controller[item], *listingtest.Fetcher[item], *listingtest.Clock) {
	t.Helper()
	ctrl, fetcher, clock := newController(t, "1")
	ctrl.Start()
	fetcher.Next(t).Respond(listingtest.Page(listingtest.Items(1, 10), 1, lastPage, 10, lastPage*10))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	return ctrl, fetcher, clock
}

func TestControllerStartDispatchesDefaultQuery(t *testing.T) {
	ctrl, fetcher, _ := newController(t, "7")

	state := ctrl.State()
	assert.Equal(t, listing.StatusIdle, state.Status)
	assert.Equal(t, listing.DisplayIdle, state.Display())

	ctrl.Start()
	call := fetcher.Next(t)
	assert.Equal(t, listing.Query{Scope: "7", Page: 1, PageSize: listing.DefaultPageSize}, call.Query)

	state = ctrl.State()
	assert.Equal(t, listing.StatusLoading, state.Status)
	assert.Equal(t, listing.DisplayLoading, state.Display())

	call.Respond(listingtest.Page(listingtest.Items(1, 3), 1, 1, 10, 3))
	state = listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	require.NotNil(t, state.Result)
	assert.Len(t, state.Items(), 3)
	assert.Equal(t, listing.DisplayItems, state.Display())
}

func TestControllerDiscardsSupersededResponse(t *testing.T) {
	ctrl, fetcher, clock := started(t, 1)

	ctrl.SetSearchText("a")
	clock.Advance(debounce)
	first := fetcher.Next(t)
	require.Equal(t, "a", first.Query.Search)

	ctrl.SetSearchText("ab")
	clock.Advance(debounce)
	second := fetcher.Next(t)
	require.Equal(t, "ab", second.Query.Search)

	second.Respond(listingtest.Page([]item{{ID: 42, Name: "ab"}}, 1, 1, 10, 1))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady && s.Query.Search == "ab" })

	first.Respond(listingtest.Page([]item{{ID: 1, Name: "a"}, {ID: 2, Name: "a"}}, 1, 1, 10, 2))
	require.Eventually(t, func() bool { return ctrl.Stats().Discarded == 1 }, time.Second, 5*time.Millisecond)

	state := ctrl.State()
	assert.Equal(t, listing.StatusReady, state.Status)
	assert.Equal(t, []item{{ID: 42, Name: "ab"}}, state.Items())
	assert.Equal(t, "ab", state.Query.Search)
}

func TestControllerDiscardsLateErrorFromSupersededQuery(t *testing.T) {
	ctrl, fetcher, _ := started(t, 3)

	require.NoError(t, ctrl.SetPage(2))
	stale := fetcher.Next(t)
	require.NoError(t, ctrl.SetPage(3))
	fresh := fetcher.Next(t)

	stale.Fail(errors.New("timeout"))
	require.Eventually(t, func() bool { return ctrl.Stats().Discarded == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, listing.StatusLoading, ctrl.State().Status)

	fresh.Respond(listingtest.Page(listingtest.Items(21, 10), 3, 3, 10, 30))
	state := listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	assert.Nil(t, state.LastError)
	assert.Equal(t, 3, state.Result.CurrentPage)
}

func TestControllerCancelsSupersededFetch(t *testing.T) {
	ctrl, fetcher, _ := started(t, 3)

	require.NoError(t, ctrl.SetPage(2))
	stale := fetcher.Next(t)
	require.NoError(t, ctrl.SetPage(3))
	fetcher.Next(t)

	select {
	case <-stale.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fetch context was not cancelled")
	}
}

func TestControllerDebounceCoalescesKeystrokes(t *testing.T) {
	ctrl, fetcher, clock := started(t, 5)
	require.NoError(t, ctrl.SetPage(4))
	fetcher.Next(t).Respond(listingtest.Page(listingtest.Items(31, 10), 4, 5, 10, 50))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

	for _, text := range []string{"s", "su", "sug", "suga", "sugar"} {
		ctrl.SetSearchText(text)
		assert.Equal(t, text, ctrl.State().SearchInput)
		assert.True(t, ctrl.State().Debouncing)
		clock.Advance(debounce - time.Millisecond)
	}
	fetcher.ExpectNone(t, 50*time.Millisecond)

	clock.Advance(time.Millisecond)
	call := fetcher.Next(t)
	assert.Equal(t, "sugar", call.Query.Search)
	assert.Equal(t, 1, call.Query.Page)
	fetcher.ExpectNone(t, 50*time.Millisecond)
	assert.False(t, ctrl.State().Debouncing)
}

func TestControllerSearchBackToCommittedTextDoesNotFetch(t *testing.T) {
	ctrl, fetcher, clock := started(t, 1)

	ctrl.SetSearchText("x")
	ctrl.SetSearchText("")
	clock.Advance(debounce)

	fetcher.ExpectNone(t, 50*time.Millisecond)
	assert.Equal(t, listing.StatusReady, ctrl.State().Status)
	assert.False(t, ctrl.State().Debouncing)
}

func TestControllerPageResetRules(t *testing.T) {
	ctrl, fetcher, clock := started(t, 5)

	require.NoError(t, ctrl.SetPage(3))
	call := fetcher.Next(t)
	assert.Equal(t, 3, call.Query.Page)
	call.Respond(listingtest.Page(listingtest.Items(21, 10), 3, 5, 10, 50))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

	require.NoError(t, ctrl.SetFilter("status", "active"))
	call = fetcher.Next(t)
	assert.Equal(t, 1, call.Query.Page)
	assert.Equal(t, map[string]string{"status": "active"}, call.Query.Filters)

	require.NoError(t, ctrl.SetPage(2))
	call = fetcher.Next(t)
	assert.Equal(t, 2, call.Query.Page)
	assert.Equal(t, "active", call.Query.Filters["status"])

	ctrl.SetScope("9")
	call = fetcher.Next(t)
	assert.Equal(t, 1, call.Query.Page)
	assert.Equal(t, "9", call.Query.Scope)

	require.NoError(t, ctrl.SetPage(2))
	fetcher.Next(t)
	require.NoError(t, ctrl.SetPageSize(25))
	call = fetcher.Next(t)
	assert.Equal(t, 1, call.Query.Page)
	assert.Equal(t, 25, call.Query.PageSize)

	require.NoError(t, ctrl.SetPage(2))
	fetcher.Next(t)
	ctrl.SetSearchText("kopi")
	clock.Advance(debounce)
	call = fetcher.Next(t)
	assert.Equal(t, 1, call.Query.Page)
	assert.Equal(t, "kopi", call.Query.Search)
	assert.Equal(t, "9", call.Query.Scope)
	assert.Equal(t, 25, call.Query.PageSize)
}

func TestControllerRejectsInvalidIntents(t *testing.T) {
	ctrl, fetcher, _ := started(t, 2)

	assert.ErrorIs(t, ctrl.SetPage(0), listing.ErrPageOutOfRange)
	assert.ErrorIs(t, ctrl.SetPage(3), listing.ErrPageOutOfRange)
	assert.ErrorIs(t, ctrl.SetPageSize(7), listing.ErrInvalidPageSize)
	assert.ErrorIs(t, ctrl.SetFilter("colour", "red"), listing.ErrUnknownFilter)
	assert.ErrorIs(t, ctrl.PrevPage(), listing.ErrPageOutOfRange)

	fetcher.ExpectNone(t, 50*time.Millisecond)
	assert.Equal(t, listing.StatusReady, ctrl.State().Status)
}

func TestControllerSuppressesDuplicateDispatch(t *testing.T) {
	ctrl, fetcher, _ := started(t, 2)

	ctrl.SetScope("1")
	require.NoError(t, ctrl.SetPage(1))
	require.NoError(t, ctrl.SetPageSize(listing.DefaultPageSize))
	require.NoError(t, ctrl.SetFilter("status", ""))

	fetcher.ExpectNone(t, 50*time.Millisecond)
	assert.Equal(t, uint64(1), ctrl.Stats().Dispatched)
}

func TestControllerScopeChangeFoldsPendingSearch(t *testing.T) {
	ctrl, fetcher, clock := started(t, 2)

	ctrl.SetSearchText("teh")
	ctrl.SetScope("2")
	call := fetcher.Next(t)
	assert.Equal(t, "teh", call.Query.Search)
	assert.Equal(t, "2", call.Query.Scope)
	assert.Equal(t, 1, call.Query.Page)
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(debounce)
	fetcher.ExpectNone(t, 50*time.Millisecond)
}

func TestControllerSetPageKeepsPendingSearch(t *testing.T) {
	ctrl, fetcher, clock := started(t, 3)

	ctrl.SetSearchText("gula")
	require.NoError(t, ctrl.SetPage(2))
	call := fetcher.Next(t)
	assert.Equal(t, "", call.Query.Search)
	assert.Equal(t, 2, call.Query.Page)
	assert.Equal(t, "gula", ctrl.State().SearchInput)

	clock.Advance(debounce)
	call = fetcher.Next(t)
	assert.Equal(t, "gula", call.Query.Search)
	assert.Equal(t, 1, call.Query.Page)
}

func TestControllerDeleteSync(t *testing.T) {
	t.Run("last item on page above one goes back a page", func(t *testing.T) {
		ctrl, fetcher, _ := started(t, 3)
		require.NoError(t, ctrl.SetPage(3))
		fetcher.Next(t).Respond(listingtest.Page([]item{{ID: 21}}, 3, 3, 10, 21))
		listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

		ctrl.RequestMutationSync(listing.Mutation{Kind: listing.MutationDeleted, ID: 21})
		state := ctrl.State()
		assert.Empty(t, state.Items())
		assert.Equal(t, 20, state.Result.Total)

		call := fetcher.Next(t)
		assert.Equal(t, 2, call.Query.Page)
	})

	t.Run("item on first page keeps the page", func(t *testing.T) {
		ctrl, fetcher, _ := newController(t, "")
		ctrl.Start()
		fetcher.Next(t).Respond(listingtest.Page([]item{{ID: 5}}, 1, 1, 10, 1))
		listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

		ctrl.RequestMutationSync(listing.Mutation{Kind: listing.MutationDeleted, ID: 5})
		call := fetcher.Next(t)
		assert.Equal(t, 1, call.Query.Page)
	})

	t.Run("remaining items keep the page", func(t *testing.T) {
		ctrl, fetcher, _ := started(t, 3)
		require.NoError(t, ctrl.SetPage(2))
		fetcher.Next(t).Respond(listingtest.Page(listingtest.Items(11, 10), 2, 3, 10, 30))
		listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

		ctrl.RequestMutationSync(listing.Mutation{Kind: listing.MutationDeleted, ID: 12})
		assert.Len(t, ctrl.State().Items(), 9)
		call := fetcher.Next(t)
		assert.Equal(t, 2, call.Query.Page)
	})
}

func TestControllerCreateSyncRedispatchesCurrentQuery(t *testing.T) {
	ctrl, fetcher, _ := started(t, 3)
	require.NoError(t, ctrl.SetFilter("category_id", "4"))
	before := fetcher.Next(t)
	before.Respond(listingtest.Page(listingtest.Items(1, 10), 1, 3, 10, 30))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })

	ctrl.RequestMutationSync(listing.Mutation{Kind: listing.MutationCreated, ID: 99})
	call := fetcher.Next(t)
	assert.True(t, before.Query.Equal(call.Query))
}

func TestControllerFailureKeepsStaleResult(t *testing.T) {
	ctrl, fetcher, _ := started(t, 2)

	require.NoError(t, ctrl.SetPage(2))
	fetcher.Next(t).Fail(errors.New("connection refused"))
	state := listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusError })

	require.NotNil(t, state.LastError)
	assert.Equal(t, "connection refused", state.LastError.Message)
	assert.Equal(t, listing.DisplayError, state.Display())
	require.NotNil(t, state.Result)
	assert.Len(t, state.Items(), 10)

	ctrl.Refresh()
	call := fetcher.Next(t)
	assert.Equal(t, 2, call.Query.Page)
	assert.Equal(t, listing.StatusLoading, ctrl.State().Status)
	assert.Equal(t, listing.DisplayItems, ctrl.State().Display())

	call.Respond(listingtest.Page(listingtest.Items(11, 10), 2, 2, 10, 20))
	state = listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	assert.Nil(t, state.LastError)
}

func TestControllerErrorAllowsSameQueryRetry(t *testing.T) {
	ctrl, fetcher, _ := newController(t, "")
	ctrl.Start()
	fetcher.Next(t).Fail(errors.New("boom"))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusError })

	require.NoError(t, ctrl.SetPage(1))
	call := fetcher.Next(t)
	assert.Equal(t, 1, call.Query.Page)
}

func TestControllerErrorAllowsSameScopeAndSearchRetry(t *testing.T) {
	ctrl, fetcher, clock := newController(t, "4")
	ctrl.Start()
	fetcher.Next(t).Fail(errors.New("boom"))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusError })

	ctrl.SetScope("4")
	call := fetcher.Next(t)
	assert.Equal(t, "4", call.Query.Scope)
	call.Fail(errors.New("still down"))
	listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusError })

	ctrl.SetSearchText("x")
	ctrl.SetSearchText("")
	clock.Advance(debounce)
	call = fetcher.Next(t)
	assert.Equal(t, "", call.Query.Search)
	assert.Equal(t, uint64(3), ctrl.Stats().Dispatched)
}

func TestControllerClampsPageBeyondLastPage(t *testing.T) {
	ctrl, fetcher, _ := started(t, 3)

	require.NoError(t, ctrl.SetPage(3))
	fetcher.Next(t).Respond(listingtest.Page([]item(nil), 3, 2, 10, 20))

	call := fetcher.Next(t)
	assert.Equal(t, 2, call.Query.Page)
	call.Respond(listingtest.Page(listingtest.Items(11, 10), 2, 2, 10, 20))
	state := listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	assert.Equal(t, 2, state.Query.Page)
}

func TestControllerEmptyResult(t *testing.T) {
	ctrl, fetcher, _ := newController(t, "")
	ctrl.Start()
	fetcher.Next(t).Respond(listingtest.Page([]item{}, 1, 1, 10, 0))

	state := listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusReady })
	assert.Equal(t, listing.DisplayEmpty, state.Display())
}

func TestControllerCloseDiscardsInflightResponse(t *testing.T) {
	ctrl, fetcher, clock := newController(t, "")
	ctrl.Start()
	call := fetcher.Next(t)
	ctrl.SetSearchText("pending")

	ctrl.Close()
	call.Respond(listingtest.Page(listingtest.Items(1, 1), 1, 1, 10, 1))
	require.Eventually(t, func() bool { return ctrl.Stats().Discarded == 1 }, time.Second, 5*time.Millisecond)

	assert.Nil(t, ctrl.State().Result)
	assert.ErrorIs(t, ctrl.SetPage(1), listing.ErrClosed)
	assert.ErrorIs(t, ctrl.SetFilter("status", "active"), listing.ErrClosed)

	clock.Advance(debounce)
	fetcher.ExpectNone(t, 50*time.Millisecond)

	for range ctrl.Changes() {
	}
	_, open := <-ctrl.Changes()
	assert.False(t, open)
}

func TestControllerSignalsChanges(t *testing.T) {
	ctrl, fetcher, _ := newController(t, "")
	ctrl.Start()
	<-ctrl.Changes()

	fetcher.Next(t).Respond(listingtest.Page(listingtest.Items(1, 1), 1, 1, 10, 1))
	select {
	case <-ctrl.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal after response")
	}
}

func TestControllerFetchTimeout(t *testing.T) {
	fetcher := listingtest.NewFetcher[item](t)
	fetcher.HonorCancel = true
	ctrl := listing.New[item](context.Background(), fetcher, listing.Options{FetchTimeout: 20 * time.Millisecond})
	t.Cleanup(ctrl.Close)

	ctrl.Start()
	fetcher.Next(t)
	state := listingtest.WaitFor(t, ctrl, func(s listing.State[item]) bool { return s.Status == listing.StatusError })
	assert.ErrorIs(t, state.LastError.Err, context.DeadlineExceeded)
}
