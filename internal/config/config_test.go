package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gompdf/pagedit/internal/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8095", cfg.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.PaginationDebounce)
	assert.Equal(t, 100*time.Millisecond, cfg.PaginationSettle)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
	assert.Equal(t, pagination.DefaultOptions(), cfg.Pagination())
	assert.Equal(t, 861.0, cfg.Pagination().ContentHeight())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PAGEDIT_API_KEY", "secret")
	t.Setenv("PAGE_SIZE", "letter")
	t.Setenv("CONTENT_HEIGHT_PX", "700")
	t.Setenv("PAGINATION_DEBOUNCE", "1s")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("MAX_UPLOAD_BYTES", "not a number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, pagination.PageSizeLetter.Width, cfg.PageWidthPx)
	assert.Equal(t, 700.0, cfg.Pagination().ContentHeight())
	assert.Equal(t, time.Second, cfg.PaginationDebounce)
	assert.Equal(t, time.Hour, cfg.SessionTTL, "non-positive TTL falls back")
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagedit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "7000"
page_size = "A5"
page_margin_px = 40
pagination_debounce = "150ms"
header_text = "Acme Corp"
`), 0o644))
	t.Setenv("HEADER_TEXT", "From env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, pagination.PageSizeA5.Height, cfg.PageHeightPx)
	assert.Equal(t, 40.0, cfg.PageMarginPx)
	assert.Equal(t, 150*time.Millisecond, cfg.PaginationDebounce)
	assert.Equal(t, "From env", cfg.HeaderText)

	t.Setenv("PAGEDIT_CONFIG", path)
	viaEnv, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, viaEnv)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("colour = \"red\"\n"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "unknown key colour")
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.HeaderHeightPx = 2000
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.PaginationSettle = -time.Second
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Port = ""
	assert.Error(t, cfg.Validate())
}
