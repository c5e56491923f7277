package res

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestLoadDataURL(t *testing.T) {
	l := NewLoader("")
	res, err := l.Load(context.Background(), "data:text/plain,Hello%20World")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", string(res.Data))
	assert.Equal(t, ResourceTypeDocument, res.Type)
	assert.Equal(t, "", res.Name())

	img := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 30, 20))
	w, h, err := l.ImageSize(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
}

func TestLoadLocalAndSearchPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# hi"), 0o644))
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "seal.png"), pngBytes(t, 4, 8), 0o644))

	l := NewLoader(filepath.Join(dir, "index.html"))
	res, err := l.Load(context.Background(), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(res.Data))
	assert.Equal(t, "notes.md", res.Name())
	assert.Equal(t, ResourceTypeDocument, res.Type)

	_, _, err = l.ImageSize(context.Background(), "seal.png")
	require.Error(t, err)

	l.AddSearchPath(other)
	w, h, err := l.ImageSize(context.Background(), "seal.png")
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 8, h)

	_, err = l.LoadImage(context.Background(), "notes.md")
	assert.Error(t, err)
}

func TestLoadRemote(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<p>remote</p>"))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL + "/docs/")
	res, err := l.Load(context.Background(), "contract.html")
	require.NoError(t, err)
	assert.Equal(t, "text/html", res.MimeType)
	assert.Equal(t, "contract.html", res.Name())

	_, err = l.Load(context.Background(), "contract.html")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second load is served from cache")

	_, err = l.Load(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestLoadSizeLimit(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(p, bytes.Repeat([]byte("x"), 100), 0o644))

	l := NewLoader("")
	l.MaxBytes = 10
	_, err := l.Load(context.Background(), p)
	assert.ErrorIs(t, err, ErrTooLarge)
}
