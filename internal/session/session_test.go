package session

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

// block returns a one-word paragraph whose measured height is h
func block(h float64) *document.Node {
	p := document.NewParagraph(document.NewText("x"))
	p.Attrs = map[string]any{"h": h}
	return p
}

var byAttr = layout.MeasureFunc(func(n *document.Node) (float64, error) {
	h, _ := n.Attrs["h"].(float64)
	return h, nil
})

func fastOptions() Options {
	o := DefaultOptions()
	o.Debounce = 5 * time.Millisecond
	o.Settle = 2 * time.Millisecond
	o.Measurer = byAttr
	return o
}

func newSession(t *testing.T, doc *document.Document) *Session {
	t.Helper()
	s := New("test", doc, fastOptions())
	t.Cleanup(s.Close)
	return s
}

func TestReduce(t *testing.T) {
	s := InitialState()
	assert.Equal(t, State{CurrentPage: 1, TotalPages: 1, AutoPagination: true, ShowPageBoundaries: true}, s)

	s = Reduce(s, Action{Type: ActionToggleDebug})
	s = Reduce(s, Action{Type: ActionTogglePreviewMode})
	s = Reduce(s, Action{Type: ActionTogglePageBoundaries})
	s = Reduce(s, Action{Type: ActionToggleAutoPagination})
	s = Reduce(s, Action{Type: ActionSetTotalPages, Value: 4})
	s = Reduce(s, Action{Type: ActionSetCurrentPage, Value: 3})
	s = Reduce(s, Action{Type: ActionSetWordCount, Value: 120})
	assert.Equal(t, State{
		Debug:       true,
		CurrentPage: 3,
		TotalPages:  4,
		PreviewMode: true,
		WordCount:   120,
	}, s)

	assert.Equal(t, 1, Reduce(s, Action{Type: ActionSetCurrentPage, Value: 0}).CurrentPage)
	assert.Equal(t, s, Reduce(s, Action{Type: "unknown"}))

	reset := Reduce(s, Action{Type: ActionResetUI})
	assert.Equal(t, State{
		CurrentPage:        3,
		TotalPages:         4,
		AutoPagination:     true,
		ShowPageBoundaries: true,
		WordCount:          120,
	}, reset)
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, Action{Type: ActionResetUI}.Validate())
	assert.Error(t, Action{Type: "explode"}.Validate())
}

func TestSessionPaginatesAfterDebounce(t *testing.T) {
	doc := document.New(block(400), block(400), block(400))
	s := newSession(t, doc)

	assert.Equal(t, 3, s.State().WordCount)
	require.Eventually(t, func() bool { return s.State().TotalPages == 2 }, waitFor, tick)

	got := s.Document()
	require.Equal(t, 4, got.Len())
	assert.True(t, got.Block(2).IsAutoBreak())

	// the pagination transaction itself does not schedule another pass
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, s.Scheduler().Passes())
}

func TestSessionSkipsUnchangedContent(t *testing.T) {
	s := newSession(t, document.New(block(400), block(400), block(400)))
	require.Eventually(t, func() bool { return s.State().TotalPages == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return !s.Scheduler().Busy() }, waitFor, tick)

	s.SetContent(s.Document())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, s.Scheduler().Passes())

	s.SetContent(document.New(block(400)))
	require.Eventually(t, func() bool { return s.Scheduler().Passes() == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return s.State().TotalPages == 1 }, waitFor, tick)
}

func TestSessionAutoPaginationToggle(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Dispatch(Action{Type: ActionToggleAutoPagination})
	require.NoError(t, err)

	s.SetContent(document.New(block(500), block(500)))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, s.Scheduler().Passes())
	assert.Equal(t, 1, s.State().TotalPages)

	_, err = s.Dispatch(Action{Type: ActionToggleAutoPagination})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.State().TotalPages == 2 }, waitFor, tick)

	_, err = s.Dispatch(Action{Type: "bogus"})
	assert.Error(t, err)
}

func TestSessionSelectionTracksPage(t *testing.T) {
	// p(0..3) p(3..6) p(6..9)
	o := fastOptions()
	o.Debounce = 50 * time.Millisecond
	s := New("selection", document.New(block(400), block(400), block(400)), o)
	t.Cleanup(s.Close)
	sel := s.SetSelection(document.Cursor(7))
	assert.Equal(t, document.Cursor(7), sel)
	assert.Equal(t, 1, s.State().CurrentPage)

	require.Eventually(t, func() bool { return s.State().TotalPages == 2 }, waitFor, tick)

	// the marker went in at 6, so the cursor moved along with its block
	assert.Equal(t, document.Cursor(8), s.Selection())
	assert.Equal(t, 2, s.State().CurrentPage)

	s.SetSelection(document.Cursor(2))
	assert.Equal(t, 1, s.State().CurrentPage)

	assert.Equal(t, document.Cursor(10), s.SetSelection(document.Cursor(99)), "clamped to the document")
}

func TestSessionPaginationKeepsCursorBeforeMarker(t *testing.T) {
	// p(0..3) auto(3) p(4..7) stale auto(7) p(8..11)
	doc := func() *document.Document {
		return document.New(block(600), document.NewAutoBreak(), block(600), document.NewAutoBreak(), block(10))
	}
	o := fastOptions()
	o.Debounce = time.Hour

	tests := []struct {
		name   string
		cursor int
		page   int
	}{
		{"end of first block", 3, 1},
		{"start of second block", 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("boundary", doc(), o)
			t.Cleanup(s.Close)
			s.SetSelection(document.Cursor(tt.cursor))
			require.Equal(t, tt.page, s.State().CurrentPage)

			res, err := s.Paginate()
			require.NoError(t, err)
			require.True(t, res.Changed)
			assert.Equal(t, []pagination.Break{{Pos: 3}}, res.Breaks)

			assert.Equal(t, document.Cursor(tt.cursor), s.Selection())
			assert.Equal(t, tt.page, s.State().CurrentPage)
		})
	}
}

func TestSessionInsertPageBreak(t *testing.T) {
	s := newSession(t, document.New(document.NewParagraph(document.NewText("hello world"))))
	s.SetSelection(document.Cursor(6))

	sel, err := s.InsertPageBreak()
	require.NoError(t, err)
	assert.Equal(t, document.Cursor(8), sel)
	assert.Equal(t, 2, s.State().CurrentPage)
	assert.Equal(t, 2, s.State().WordCount)

	res, err := s.Paginate()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []pagination.Break{{Pos: 7, Manual: true}}, s.Snapshot().Breaks)
}

func TestSessionMeasurementFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	o := fastOptions()
	o.Measurer = layout.MeasureFunc(func(n *document.Node) (float64, error) {
		if fail.Load() {
			return 0, errors.New("not attached")
		}
		return 500, nil
	})
	doc := document.New(block(0), block(0))
	s := New("fail", doc, o)
	t.Cleanup(s.Close)

	_, err := s.Paginate()
	require.ErrorIs(t, err, pagination.ErrMeasureUnavailable)
	assert.Equal(t, 2, s.Document().Len())
	assert.Contains(t, s.Snapshot().LastError, "not attached")

	fail.Store(false)
	res, err := s.Paginate()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Empty(t, s.Snapshot().LastError)
}

func TestSessionWithoutDocument(t *testing.T) {
	s := newSession(t, nil)

	res, err := s.Paginate()
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	assert.Equal(t, document.Cursor(0), s.SetSelection(document.Cursor(5)))
	assert.Equal(t, 1, s.State().CurrentPage)

	_, err = s.InsertPageBreak()
	assert.ErrorIs(t, err, document.ErrNoDocument)
	assert.Nil(t, s.Document())
	assert.Nil(t, s.Snapshot().Document)
}

func TestSessionResetKeepsContent(t *testing.T) {
	s := newSession(t, document.New(block(10)))
	_, _ = s.Dispatch(Action{Type: ActionTogglePreviewMode})
	_, _ = s.Dispatch(Action{Type: ActionToggleDebug})

	st := s.Reset()
	assert.False(t, st.PreviewMode)
	assert.False(t, st.Debug)
	assert.Equal(t, 1, st.WordCount)
	assert.Equal(t, 1, s.Document().Len())
}

func TestSchedulerDebounces(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(10*time.Millisecond, time.Millisecond, func() { calls.Add(1) }, nil)
	defer s.Stop()

	for i := 0; i < 5; i++ {
		s.Trigger()
	}
	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, tick)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchedulerCoalescesTriggersDuringPass(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	unblock := make(chan struct{})
	s := NewScheduler(time.Millisecond, time.Millisecond, func() {
		if calls.Add(1) == 1 {
			close(started)
			<-unblock
		}
	}, nil)
	defer s.Stop()

	s.Trigger()
	<-started
	for i := 0; i < 3; i++ {
		s.Trigger()
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, int32(1), calls.Load(), "no pass runs while the lock is held")

	close(unblock)
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), calls.Load(), "one follow-up pass")
}

func TestSchedulerRecoversFromPanic(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(time.Millisecond, time.Millisecond, func() {
		if calls.Add(1) == 1 {
			panic("boom")
		}
	}, nil)
	defer s.Stop()

	s.Trigger()
	require.Eventually(t, func() bool { return !s.Busy() }, waitFor, tick)
	s.Trigger()
	require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, tick)
}

func TestSchedulerStop(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(20*time.Millisecond, time.Millisecond, func() { calls.Add(1) }, nil)
	s.Trigger()
	s.Stop()
	s.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, s.Busy())
}
