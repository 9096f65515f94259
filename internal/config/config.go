package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// DocWidth is the fixed document width in document units. It is set once
	// per notebook session; ink coordinates are recorded against it and never
	// rescaled by zoom.
	DocWidth int `json:"doc_width"`

	// PageHeight is the initial page height in document units. The page grows
	// by HeightIncrement as ink or content approaches the bottom edge.
	PageHeight int `json:"page_height"`

	// HeightIncrement is the fixed amount the page grows by.
	HeightIncrement int `json:"height_increment"`

	// BottomMargin is the distance from the bottom edge that triggers growth.
	BottomMargin int `json:"bottom_margin"`

	// AutosaveDebounceMs is the quiet period after the last edit before an
	// autosave fires.
	AutosaveDebounceMs int `json:"autosave_debounce_ms"`

	// MinZoom and MaxZoom bound the display zoom factor. Zoom is pure display
	// scale and never affects stored coordinates.
	MinZoom float64 `json:"min_zoom"`
	MaxZoom float64 `json:"max_zoom"`

	// ExportScale is the rasterization scale factor for PDF export,
	// independent of the on-screen zoom.
	ExportScale float64 `json:"export_scale"`

	// ExportPageHeight is the height of one exported PDF page in document
	// units. The composite image is sliced into pages of this height.
	ExportPageHeight int `json:"export_page_height"`

	// ImageLoadTimeoutMs bounds how long export waits for an inline image.
	ImageLoadTimeoutMs int `json:"image_load_timeout_ms"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel sets the logging verbosity (logrus level names).
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DocWidth:           850,
		PageHeight:         1100,
		HeightIncrement:    400,
		BottomMargin:       100,
		AutosaveDebounceMs: 1500,
		MinZoom:            0.25,
		MaxZoom:            4.0,
		ExportScale:        2.0,
		ExportPageHeight:   1100,
		ImageLoadTimeoutMs: 3000,
		LogLevel:           "info",
	}
}

// AutosaveDebounce returns the debounce window as a duration.
func (c *Config) AutosaveDebounce() time.Duration {
	return time.Duration(c.AutosaveDebounceMs) * time.Millisecond
}

// ImageLoadTimeout returns the export image wait bound as a duration.
func (c *Config) ImageLoadTimeout() time.Duration {
	return time.Duration(c.ImageLoadTimeoutMs) * time.Millisecond
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.notebook.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DocWidth = overlayInt(base.DocWidth, overlay.DocWidth)
	result.PageHeight = overlayInt(base.PageHeight, overlay.PageHeight)
	result.HeightIncrement = overlayInt(base.HeightIncrement, overlay.HeightIncrement)
	result.BottomMargin = overlayInt(base.BottomMargin, overlay.BottomMargin)
	result.AutosaveDebounceMs = overlayInt(base.AutosaveDebounceMs, overlay.AutosaveDebounceMs)
	result.ExportPageHeight = overlayInt(base.ExportPageHeight, overlay.ExportPageHeight)
	result.ImageLoadTimeoutMs = overlayInt(base.ImageLoadTimeoutMs, overlay.ImageLoadTimeoutMs)
	result.DBMaxOpenConns = overlayInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = overlayInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.MinZoom = overlayFloat(base.MinZoom, overlay.MinZoom)
	result.MaxZoom = overlayFloat(base.MaxZoom, overlay.MaxZoom)
	result.ExportScale = overlayFloat(base.ExportScale, overlay.ExportScale)

	result.LogLevel = overlayString(base.LogLevel, overlay.LogLevel)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func overlayString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func overlayInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func overlayFloat(base, overlay float64) float64 {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
