package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gompdf/pagedit/internal/render/htmldoc"
	"github.com/gompdf/pagedit/internal/render/pdf"
)

// handleExportHTML downloads the print-ready HTML page. An empty document
// has nothing to export.
func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	page, err := htmldoc.ExportHTML(sess.Document(), htmldoc.Options{
		Title:      s.cfg.ExportTitle,
		HeaderText: s.cfg.HeaderText,
		PageSize:   s.cfg.PageSize,
	})
	if errors.Is(err, htmldoc.ErrNothingToExport) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", htmldoc.FileName))
	w.Write([]byte(page))
}

// handleExportPDF prints the document with the session's page geometry.
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	renderer := pdf.NewRenderer()
	renderer.Layout = s.cfg.Pagination()
	renderer.Loader = s.loader
	renderer.Logger = s.log.With("session", sess.ID)

	var buf bytes.Buffer
	err := renderer.Render(sess.Document(), &buf, pdf.RenderOptions{
		Title:      s.cfg.ExportTitle,
		HeaderText: s.cfg.HeaderText,
		Creator:    "pagedit",
	})
	if errors.Is(err, pdf.ErrNothingToRender) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		jsonError(w, "export failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	name := strings.TrimSuffix(htmldoc.FileName, ".html") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(buf.Bytes())
}
