package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gompdf/pagedit/internal/pagination"
)

type Config struct {
	Port string `toml:"port"`

	// Auth; empty disables bearer authentication
	APIKey string `toml:"api_key"`

	// Page geometry in CSS pixels
	PageSize        string  `toml:"page_size"`
	PageWidthPx     float64 `toml:"page_width_px"`
	PageHeightPx    float64 `toml:"page_height_px"`
	PageMarginPx    float64 `toml:"page_margin_px"`
	HeaderHeightPx  float64 `toml:"header_height_px"`
	FooterHeightPx  float64 `toml:"footer_height_px"`
	ContentHeightPx float64 `toml:"content_height_px"`

	// Pagination scheduling
	PaginationDebounce time.Duration `toml:"pagination_debounce"`
	PaginationSettle   time.Duration `toml:"pagination_settle"`

	// Session state
	SessionTTL      time.Duration `toml:"session_ttl"`
	CleanupInterval time.Duration `toml:"cleanup_interval"`

	// Upload limits
	MaxUploadBytes int64 `toml:"max_upload_bytes"`

	// Export
	ExportTitle  string `toml:"export_title"`
	HeaderText   string `toml:"header_text"`
	ResourcePath string `toml:"resource_path"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Port:               "8095",
		PageSize:           "A4",
		PageWidthPx:        pagination.PageSizeA4.Width,
		PageHeightPx:       pagination.PageSizeA4.Height,
		PageMarginPx:       76,
		HeaderHeightPx:     60,
		FooterHeightPx:     50,
		PaginationDebounce: 300 * time.Millisecond,
		PaginationSettle:   100 * time.Millisecond,
		SessionTTL:         1 * time.Hour,
		CleanupInterval:    5 * time.Minute,
		MaxUploadBytes:     10485760, // 10MB
		ExportTitle:        "Legal Document Export",
		HeaderText:         "Legal Document",
	}
}

// Load reads the configuration from the environment. PAGEDIT_CONFIG names
// an optional TOML file whose values the environment overrides.
func Load() (Config, error) {
	base := Defaults()
	if path := os.Getenv("PAGEDIT_CONFIG"); path != "" {
		var err error
		if base, err = decodeFile(path, base); err != nil {
			return Config{}, err
		}
	}
	return fromEnv(base), nil
}

// LoadFile reads a TOML file on top of the defaults, then applies the
// environment
func LoadFile(path string) (Config, error) {
	cfg, err := decodeFile(path, Defaults())
	if err != nil {
		return Config{}, err
	}
	return fromEnv(cfg), nil
}

func decodeFile(path string, base Config) (Config, error) {
	md, err := toml.DecodeFile(path, &base)
	if err != nil {
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	// explicit dimensions win over a named size
	if md.IsDefined("page_size") && !md.IsDefined("page_width_px") && !md.IsDefined("page_height_px") {
		base = base.withPageSize(base.PageSize)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0])
	}
	return base, nil
}

func fromEnv(base Config) Config {
	cfg := base
	cfg.Port = envOr("PORT", base.Port)
	cfg.APIKey = envOr("PAGEDIT_API_KEY", base.APIKey)

	if name := os.Getenv("PAGE_SIZE"); name != "" {
		cfg = cfg.withPageSize(name)
	}
	cfg.PageWidthPx = envFloat("PAGE_WIDTH_PX", cfg.PageWidthPx)
	cfg.PageHeightPx = envFloat("PAGE_HEIGHT_PX", cfg.PageHeightPx)
	cfg.PageMarginPx = envFloat("PAGE_MARGIN_PX", base.PageMarginPx)
	cfg.HeaderHeightPx = envFloat("PAGE_HEADER_PX", base.HeaderHeightPx)
	cfg.FooterHeightPx = envFloat("PAGE_FOOTER_PX", base.FooterHeightPx)
	cfg.ContentHeightPx = envFloat("CONTENT_HEIGHT_PX", base.ContentHeightPx)

	cfg.PaginationDebounce = envDuration("PAGINATION_DEBOUNCE", base.PaginationDebounce)
	cfg.PaginationSettle = envDuration("PAGINATION_SETTLE", base.PaginationSettle)
	cfg.SessionTTL = envDuration("SESSION_TTL", base.SessionTTL)
	cfg.CleanupInterval = envDuration("CLEANUP_INTERVAL", base.CleanupInterval)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", base.MaxUploadBytes)

	cfg.ExportTitle = envOr("EXPORT_TITLE", base.ExportTitle)
	cfg.HeaderText = envOr("HEADER_TEXT", base.HeaderText)
	cfg.ResourcePath = envOr("RESOURCE_PATH", base.ResourcePath)

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	return cfg
}

// withPageSize sets the page dimensions from a named size; unknown names
// keep the current dimensions
func (c Config) withPageSize(name string) Config {
	if size, ok := pagination.PageSizeByName(name); ok {
		c.PageSize = name
		c.PageWidthPx = size.Width
		c.PageHeightPx = size.Height
	}
	return c
}

// Pagination returns the page geometry as pagination options
func (c Config) Pagination() pagination.Options {
	return pagination.Options{
		PageWidth:             c.PageWidthPx,
		PageHeight:            c.PageHeightPx,
		MarginTop:             c.PageMarginPx,
		MarginRight:           c.PageMarginPx,
		MarginBottom:          c.PageMarginPx,
		MarginLeft:            c.PageMarginPx,
		HeaderHeight:          c.HeaderHeightPx,
		FooterHeight:          c.FooterHeightPx,
		ContentHeightOverride: c.ContentHeightPx,
	}
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if err := c.Pagination().Validate(); err != nil {
		return err
	}
	if c.PaginationDebounce < 0 || c.PaginationSettle < 0 {
		return fmt.Errorf("pagination timings must not be negative")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
