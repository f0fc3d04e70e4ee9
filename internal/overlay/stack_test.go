package overlay

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStack(t *testing.T) (*Stack, *clockwork.FakeClock, *metrics.OverlayMetrics) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	m := metrics.NewOverlayMetrics(prometheus.NewRegistry())
	return NewStack(clock, m), clock, m
}

func labels(entries []*Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label()
	}
	return out
}

func TestOpen_Defaults(t *testing.T) {
	s, _, m := newTestStack(t)

	e := s.Open("confirm", Static{View: "Delete post?"})

	assert.Equal(t, "confirm", e.Label())
	assert.True(t, e.AllowManualClose())
	assert.False(t, e.PreventStretch())
	assert.False(t, e.SuppressAutoFocus())
	assert.Equal(t, StateOpen, e.State())
	assert.Equal(t, "Delete post?", e.Render())
	assert.NotEqual(t, e.ID(), s.Open("other", nil).ID())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mounted))
}

func TestOpen_ProducerReceivesEntry(t *testing.T) {
	s, _, _ := newTestStack(t)

	e := s.Open("editor", Producer(func(e *Entry) View { return e.Label() + " body" }))

	assert.Equal(t, "editor body", e.Render())
}

func TestOpenBusyIndicator(t *testing.T) {
	s, _, _ := newTestStack(t)

	e := s.OpenBusyIndicator()

	assert.False(t, e.AllowManualClose())
	assert.True(t, e.PreventStretch())
	assert.True(t, e.SuppressAutoFocus())
	assert.Equal(t, ProgressIndicator{Indeterminate: true}, e.Render())
}

func TestClose_MarksClosedAndRemovesAfterDelay(t *testing.T) {
	s, clock, _ := newTestStack(t)
	var got any
	e := s.Open("confirm", nil, WithOnClose(func(result any) { got = result }))

	s.Close(e, true)

	assert.Equal(t, true, got)
	assert.True(t, e.Closed())
	assert.Equal(t, StateClosing, e.State())
	assert.Equal(t, 1, s.Len(), "closing entry stays mounted")

	clock.Advance(RemovalDelay - time.Millisecond)
	assert.Equal(t, 1, s.Len())

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, StateRemoved, e.State())
}

func TestClose_TwiceFiresCallbackOnce(t *testing.T) {
	s, _, m := newTestStack(t)
	calls := 0
	e := s.Open("confirm", nil, WithOnClose(func(any) { calls++ }))

	s.Close(e, nil)
	e.Close(nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Closed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseAlreadyClosed)))
}

func TestClose_MiddleEntryPreservesOrder(t *testing.T) {
	s, clock, _ := newTestStack(t)
	a := s.Open("a", nil)
	b := s.Open("b", nil)
	c := s.Open("c", nil)

	s.Close(b, nil)
	assert.Equal(t, []string{"a", "b", "c"}, labels(s.Entries()))

	clock.Advance(RemovalDelay)
	require.Eventually(t, func() bool { return s.Len() == 2 }, time.Second, time.Millisecond)

	entries := s.Entries()
	assert.Same(t, a, entries[0])
	assert.Same(t, c, entries[1])
}

func TestClose_PanickingCallbackIsIsolated(t *testing.T) {
	s, clock, m := newTestStack(t)
	bad := s.Open("bad", nil, WithOnClose(func(any) { panic("boom") }))
	otherClosed := false
	other := s.Open("other", nil, WithOnClose(func(any) { otherClosed = true }))

	assert.NotPanics(t, func() { s.Close(bad, nil) })
	assert.True(t, bad.Closed())

	s.Close(other, nil)
	assert.True(t, otherClosed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CallbackPanics))

	clock.Advance(RemovalDelay)
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
}

func TestClose_ReentrantOpenFromCallback(t *testing.T) {
	s, _, _ := newTestStack(t)
	var follow *Entry
	first := s.Open("first", nil, WithOnClose(func(any) {
		follow = s.Open("follow-up", Static{View: "Saved"})
	}))

	s.Close(first, nil)

	require.NotNil(t, follow)
	assert.Equal(t, []string{"first", "follow-up"}, labels(s.Entries()))
	assert.False(t, follow.Closed())
}

func TestClose_ReentrantCloseFromCallbackIsNoop(t *testing.T) {
	s, _, m := newTestStack(t)
	calls := 0
	var e *Entry
	e = s.Open("self", nil, WithOnClose(func(any) {
		calls++
		e.Close("again")
	}))

	s.Close(e, nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseAlreadyClosed)))
}

func TestClose_Misuse(t *testing.T) {
	s, _, m := newTestStack(t)
	other, _, _ := newTestStack(t)
	foreign := other.Open("foreign", nil)

	s.Close(nil, nil)
	s.Close(foreign, nil)
	var detached *Entry
	detached.Close(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseNilEntry)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseForeignEntry)))
	assert.False(t, foreign.Closed())
}

func TestClear_EmptiesSynchronouslyWithoutCallbacks(t *testing.T) {
	s, clock, m := newTestStack(t)
	calls := 0
	a := s.Open("a", nil, WithOnClose(func(any) { calls++ }))
	b := s.Open("b", nil, WithOnClose(func(any) { calls++ }))
	s.Close(a, nil)

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateRemoved, b.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Clears))

	// pending removal of a becomes a no-op
	clock.Advance(RemovalDelay)
	fresh := s.Open("fresh", nil)
	assert.Never(t, func() bool { return s.Len() != 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Same(t, fresh, s.Entries()[0])

	b.Close(nil)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseRemoved)))
}

func TestDismiss(t *testing.T) {
	s, _, m := newTestStack(t)
	busy := s.OpenBusyIndicator()
	dialog := s.Open("dialog", nil)

	assert.False(t, s.Dismiss(busy))
	assert.False(t, busy.Closed())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Misuse.WithLabelValues(misuseManualClose)))

	assert.True(t, s.Dismiss(dialog))
	assert.True(t, dialog.Closed())
	assert.False(t, s.Dismiss(dialog))
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	s, _, _ := newTestStack(t)
	var mu sync.Mutex
	var sizes []int
	unsubscribe := s.Subscribe(func(entries []*Entry) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(entries))
	})

	s.Open("a", nil)
	s.Open("b", nil)
	s.Clear()
	unsubscribe()
	s.Open("c", nil)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 0}, sizes)
}

func TestSubscribe_PanickingListenerDuringRemoval(t *testing.T) {
	s, clock, _ := newTestStack(t)
	s.Subscribe(func(entries []*Entry) {
		if len(entries) == 0 {
			panic("render failed")
		}
	})
	e := s.Open("toast", nil)

	s.Close(e, nil)
	clock.Advance(RemovalDelay)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, StateRemoved, e.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "removed", StateRemoved.String())
	assert.Equal(t, "unknown", State(9).String())
}
