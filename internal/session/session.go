// Package session keeps an open document in sync with its pagination and
// UI state. Content changes schedule a debounced pagination pass, selection
// changes update the current page and every state change goes through
// Reduce.
package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gompdf/pagedit/internal/command"
	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/layout"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/res"
	"github.com/gompdf/pagedit/internal/text"
)

// ErrSessionNotFound is returned by the store for unknown or expired ids
var ErrSessionNotFound = errors.New("session not found")

// Options configures a session
type Options struct {
	Pagination pagination.Options
	Debounce   time.Duration
	Settle     time.Duration
	// Debug starts the session with the debug toggle on
	Debug bool
	// Measurer overrides the layout measurer
	Measurer layout.Measurer
	// Loader resolves image sources for measurement
	Loader *res.Loader
	Logger *slog.Logger
}

// DefaultOptions returns A4 pagination with the editor's timings
func DefaultOptions() Options {
	return Options{
		Pagination: pagination.DefaultOptions(),
		Debounce:   DefaultDebounce,
		Settle:     DefaultSettle,
	}
}

// Session is one open document
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	doc         *document.Document
	sel         document.Selection
	state       State
	lastContent string
	lastResult  pagination.Result
	lastErr     error
	updatedAt   time.Time

	engine    *pagination.Engine
	scheduler *Scheduler
	logger    *slog.Logger
}

// New opens a session on doc. A nil doc is allowed; pagination and page
// tracking do nothing until content is set.
func New(id string, doc *document.Document, opts Options) *Session {
	if opts.Pagination.PageHeight == 0 {
		opts.Pagination = pagination.DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	measurer := opts.Measurer
	if measurer == nil {
		measurer = layout.NewCachedMeasurer(layout.NewEngine(layout.Options{
			Width:  opts.Pagination.ContentWidth(),
			Loader: opts.Loader,
		}), 0)
	}

	engine := pagination.NewEngine(measurer)
	engine.SetOptions(opts.Pagination)

	now := time.Now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		updatedAt: now,
		state:     InitialState(),
		engine:    engine,
		logger:    logger.With("session", id),
	}
	s.state.Debug = opts.Debug
	s.scheduler = NewScheduler(opts.Debounce, opts.Settle, s.paginatePass, s.logger)

	s.mu.Lock()
	s.doc = doc
	if doc != nil {
		s.state = Reduce(s.state, Action{Type: ActionSetWordCount, Value: text.WordCount(doc.Text())})
		s.contentChanged(false)
	}
	s.mu.Unlock()
	return s
}

// Close stops background pagination
func (s *Session) Close() {
	s.scheduler.Stop()
}

// Scheduler returns the pagination scheduler
func (s *Session) Scheduler() *Scheduler {
	return s.scheduler
}

// State returns the current UI state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selection returns the current selection
func (s *Session) Selection() document.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Document returns a copy of the current document, nil when there is none
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Clone()
}

// UpdatedAt returns the time of the last change
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// SetContent replaces the document. The selection is clamped to the new
// content.
func (s *Session) SetContent(doc *document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.touch()
	if doc == nil {
		s.sel = document.Cursor(0)
		return
	}
	s.sel = s.sel.Clamp(doc.Size())
	s.contentChanged(false)
	s.updateCurrentPage()
}

// SetSelection moves the selection and updates the current page
func (s *Session) SetSelection(sel document.Selection) document.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.doc == nil {
		return s.sel
	}
	s.sel = sel.Clamp(s.doc.Size())
	s.updateCurrentPage()
	return s.sel
}

// InsertPageBreak inserts a manual page break at the selection
func (s *Session) InsertPageBreak() (document.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return s.sel, document.ErrNoDocument
	}
	sel, err := command.InsertManualBreak(s.doc, s.sel)
	if err != nil {
		return s.sel, err
	}
	s.sel = sel
	s.touch()
	s.contentChanged(false)
	s.updateCurrentPage()
	return sel, nil
}

// Dispatch applies a UI action. Turning automatic pagination on schedules
// a pass.
func (s *Session) Dispatch(a Action) (State, error) {
	if err := a.Validate(); err != nil {
		return s.State(), err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wasAuto := s.state.AutoPagination
	s.state = Reduce(s.state, a)
	s.touch()
	if !wasAuto && s.state.AutoPagination && s.doc != nil {
		s.scheduler.Trigger()
	}
	return s.state, nil
}

// Reset puts the UI toggles back to their defaults. Content is untouched.
func (s *Session) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, Action{Type: ActionResetUI})
	s.touch()
	return s.state
}

// Paginate runs a pagination pass now
func (s *Session) Paginate() (pagination.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repaginate()
}

// paginatePass is the scheduled pass. Failures are logged and retried on
// the next trigger.
func (s *Session) paginatePass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.repaginate()
}

func (s *Session) repaginate() (pagination.Result, error) {
	if s.doc == nil {
		return pagination.Result{Skipped: true}, nil
	}
	start := time.Now()
	anchor, head := blockOffset(s.doc, s.sel.Anchor), blockOffset(s.doc, s.sel.Head)

	result, err := s.engine.Repaginate(s.doc)
	if err != nil {
		s.lastErr = err
		s.logger.Warn("pagination failed", "error", err)
		return result, err
	}
	s.lastErr = nil
	s.lastResult = result

	if result.Changed {
		s.sel = document.Selection{Anchor: anchor.resolve(s.doc), Head: head.resolve(s.doc)}
		s.touch()
		s.contentChanged(true)
	}
	s.state = Reduce(s.state, Action{Type: ActionSetTotalPages, Value: result.Pages})
	s.updateCurrentPage()

	s.logger.Debug("pagination pass",
		"pages", result.Pages,
		"changed", result.Changed,
		"duration", time.Since(start),
	)
	return result, nil
}

// contentChanged refreshes the word count and schedules pagination when
// the serialized content differs from the last seen content. Pagination's
// own transactions only record the new content.
func (s *Session) contentChanged(fromPagination bool) {
	s.state = Reduce(s.state, Action{Type: ActionSetWordCount, Value: text.WordCount(s.doc.Text())})
	if s.state.Debug {
		if raw, err := json.Marshal(s.doc); err == nil {
			s.logger.Debug("content updated", "doc", string(raw))
		}
	}
	if !s.state.AutoPagination {
		return
	}
	content, err := html.RenderDocument(s.doc)
	if err != nil || content == s.lastContent {
		return
	}
	s.lastContent = content
	if fromPagination {
		return
	}
	s.scheduler.Trigger()
}

func (s *Session) updateCurrentPage() {
	if s.doc == nil {
		return
	}
	page := pagination.CurrentPage(s.doc, s.sel.Head)
	s.state = Reduce(s.state, Action{Type: ActionSetCurrentPage, Value: page})
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}

// Snapshot is a JSON-safe copy of the session
type Snapshot struct {
	ID        string             `json:"id"`
	State     State              `json:"state"`
	Selection document.Selection `json:"selection"`
	Document  json.RawMessage    `json:"document,omitempty"`
	Breaks    []pagination.Break `json:"breaks"`
	LastError string             `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.ID,
		State:     s.state,
		Selection: s.sel,
		Breaks:    []pagination.Break{},
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
	if s.doc != nil {
		if raw, err := json.Marshal(s.doc); err == nil {
			snap.Document = raw
		}
		for _, m := range s.doc.Markers() {
			snap.Breaks = append(snap.Breaks, pagination.Break{Pos: m.Pos, Manual: m.Manual})
		}
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

// anchorPoint locates a position by the content block it falls in,
// counting only blocks that pagination never touches
type anchorPoint struct {
	block  int
	offset int
}

func blockOffset(doc *document.Document, pos int) anchorPoint {
	at, k, prev := 0, 0, 0
	for _, b := range doc.Blocks() {
		if b.IsAutoBreak() {
			if pos <= at {
				// a cursor in front of a marker stays with the block before it
				if k > 0 {
					return anchorPoint{block: k - 1, offset: prev}
				}
				break
			}
			at += b.Size()
			continue
		}
		if pos < at+b.Size() {
			return anchorPoint{block: k, offset: pos - at}
		}
		at += b.Size()
		prev = b.Size()
		k++
	}
	return anchorPoint{block: k, offset: max(0, pos-at)}
}

func (p anchorPoint) resolve(doc *document.Document) int {
	at, k := 0, 0
	for _, b := range doc.Blocks() {
		if b.IsAutoBreak() {
			at += b.Size()
			continue
		}
		if k == p.block {
			return at + p.offset
		}
		at += b.Size()
		k++
	}
	return min(at, doc.Size())
}
