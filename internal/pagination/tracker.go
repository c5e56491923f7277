package pagination

import "github.com/gompdf/pagedit/internal/document"

// CurrentPage returns the 1-based page holding cursor: one more than the
// number of markers, manual or automatic, that start before it. It only
// looks at document structure, so it is cheap enough to run on every
// selection change.
func CurrentPage(doc *document.Document, cursor int) int {
	if doc == nil {
		return 1
	}
	page := 1
	for _, m := range doc.Markers() {
		if m.Pos >= cursor {
			break
		}
		page++
	}
	return page
}
