package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gompdf/pagedit/internal/document"
	"github.com/gompdf/pagedit/internal/parser"
	"github.com/gompdf/pagedit/internal/parser/html"
	"github.com/gompdf/pagedit/internal/session"
)

// contentRequest carries a document either as TipTap JSON or as HTML.
// Neither means the session has no document.
type contentRequest struct {
	Document json.RawMessage `json:"document,omitempty"`
	HTML     string          `json:"html,omitempty"`
	Debug    bool            `json:"debug,omitempty"`
}

// errTooLarge is returned for uploads over the configured limit
var errTooLarge = errors.New("file exceeds max size")

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ids := s.store.IDs()
	docs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		sess, err := s.store.Get(id)
		if err != nil {
			// removed since IDs was taken
			continue
		}
		st := sess.State()
		docs = append(docs, map[string]any{
			"id":          sess.ID,
			"total_pages": st.TotalPages,
			"word_count":  st.WordCount,
			"created_at":  sess.CreatedAt,
			"updated_at":  sess.UpdatedAt(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleCreateDocument opens a session from a JSON body or an uploaded file.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	doc, debug, err := s.readContent(w, r)
	if err != nil {
		contentError(w, err)
		return
	}
	sess := s.store.Create(doc, s.sessionOptions(debug))
	s.log.Info("session created", "session", sess.ID, "empty", doc == nil)

	w.Header().Set("Location", "/api/documents/"+sess.ID)
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "docID")); err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetContent replaces the document of a session. Pagination follows
// after the debounce delay.
func (s *Server) handleSetContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, _, err := s.readContent(w, r)
	if err != nil {
		contentError(w, err)
		return
	}
	sess.SetContent(doc)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var sel document.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		jsonError(w, "invalid selection: "+err.Error(), http.StatusBadRequest)
		return
	}
	sel = sess.SetSelection(sel)
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": sel,
		"state":     sess.State(),
	})
}

// session looks up the session named in the URL, writing a 404 when there
// is none
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

// readContent decodes a document from the request body: a multipart upload
// in any importable format, or a JSON contentRequest.
func (s *Server) readContent(w http.ResponseWriter, r *http.Request) (*document.Document, bool, error) {
	// extra 1MB for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readUpload(r)
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("invalid request body: %w", err)
	}
	switch {
	case len(req.Document) > 0 && string(req.Document) != "null":
		doc, err := document.ParseJSON(bytes.NewReader(req.Document))
		return doc, req.Debug, err
	case req.HTML != "":
		doc, err := html.NewParser().Import(strings.NewReader(req.HTML))
		return doc, req.Debug, err
	}
	return nil, req.Debug, nil
}

func (s *Server) readUpload(r *http.Request) (*document.Document, bool, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, false, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, false, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, false, fmt.Errorf("%w: %s", parser.ErrUnsupportedFormat, filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, false, fmt.Errorf("%w (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}

	doc, err := parser.ParseFile(bytes.NewReader(data), filename)
	if err != nil {
		return nil, false, err
	}
	return doc, r.FormValue("debug") == "true", nil
}

func contentError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, errTooLarge), errors.As(err, &maxErr):
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, parser.ErrUnsupportedFormat):
		jsonError(w, err.Error(), http.StatusUnsupportedMediaType)
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
