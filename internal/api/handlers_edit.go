package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/gompdf/pagedit/internal/session"
)

// handleInsertPageBreak inserts a manual break at the session's selection,
// or at the selection given in the body.
func (s *Server) handleInsertPageBreak(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var sel *document.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid selection: "+err.Error(), http.StatusBadRequest)
		return
	}
	if sel != nil {
		sess.SetSelection(*sel)
	}

	cursor, err := sess.InsertPageBreak()
	if err != nil {
		if errors.Is(err, document.ErrNoDocument) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": cursor,
		"state":     sess.State(),
	})
}

// handlePaginate runs a pagination pass without waiting for the debounce.
func (s *Server) handlePaginate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	result, err := sess.Paginate()
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pagination.ErrMeasureUnavailable) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}
	if result.Breaks == nil {
		result.Breaks = []pagination.Break{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": result,
		"state":  sess.State(),
	})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var action session.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		jsonError(w, "invalid action: "+err.Error(), http.StatusBadRequest)
		return
	}
	st, err := sess.Dispatch(action)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": st})
}

// handleReset puts the session's view state back to its defaults after a
// client-side failure. The document is untouched.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.log.Info("session ui reset", "session", sess.ID)
	writeJSON(w, http.StatusOK, map[string]any{"state": sess.Reset()})
}
