package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds runtime configuration for detection and app behavior.
// Fields may be loaded from a JSON or TOML file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug" toml:"debug"`

	// HUD border color as "#RRGGBB". ChannelOrder "bgr" swaps red and blue before
	// comparing, which reproduces captures normalized to BGR.
	TargetColor  string `json:"target_color" toml:"target_color"`
	ChannelOrder string `json:"channel_order" toml:"channel_order"`
	Tolerance    int    `json:"tolerance" toml:"tolerance"`

	// Scan area as fractions of the screen size.
	ScanLeft   float64 `json:"scan_left" toml:"scan_left"`
	ScanTop    float64 `json:"scan_top" toml:"scan_top"`
	ScanWidth  float64 `json:"scan_width" toml:"scan_width"`
	ScanHeight float64 `json:"scan_height" toml:"scan_height"`

	CropWidth         int     `json:"crop_width" toml:"crop_width"`
	DetectionStartX   int     `json:"detection_start_x" toml:"detection_start_x"`
	DetectionWidthPct float64 `json:"detection_width_pct" toml:"detection_width_pct"`

	// Matching parameters
	MinScale        float64 `json:"min_scale" toml:"min_scale"`
	MaxScale        float64 `json:"max_scale" toml:"max_scale"`
	ScaleSteps      int     `json:"scale_steps" toml:"scale_steps"`
	IntensityWeight float64 `json:"intensity_weight" toml:"intensity_weight"`
	EdgeWeight      float64 `json:"edge_weight" toml:"edge_weight"`
	CannyLow        float64 `json:"canny_low" toml:"canny_low"`
	CannyHigh       float64 `json:"canny_high" toml:"canny_high"`
	HighlightCutoff int     `json:"highlight_cutoff" toml:"highlight_cutoff"`
	Threshold       float64 `json:"threshold" toml:"threshold"`
	TemplateWorkers int     `json:"template_workers" toml:"template_workers"`
	ScaleWorkers    int     `json:"scale_workers" toml:"scale_workers"`

	TemplateDir    string `json:"template_dir" toml:"template_dir"`
	TemplateGlob   string `json:"template_glob" toml:"template_glob"`
	CacheTemplates bool   `json:"cache_templates" toml:"cache_templates"`
	WatchTemplates bool   `json:"watch_templates" toml:"watch_templates"`

	DiagnosticsDir  string `json:"diagnostics_dir" toml:"diagnostics_dir"`
	SaveDiagnostics bool   `json:"save_diagnostics" toml:"save_diagnostics"`

	// Trigger
	ScanKeys      []string `json:"scan_keys" toml:"scan_keys"`
	ExitKey       string   `json:"exit_key" toml:"exit_key"`
	SettleDelayMS int      `json:"settle_delay_ms" toml:"settle_delay_ms"`
	PollMS        int      `json:"poll_ms" toml:"poll_ms"`
	// Scan keys are ignored unless the foreground window title contains
	// FocusWindow. Empty disables the check.
	FocusWindow string `json:"focus_window" toml:"focus_window"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:             false,
		TargetColor:       "#EAFF05",
		ChannelOrder:      "rgb",
		Tolerance:         15,
		ScanLeft:          0.75,
		ScanTop:           0.75,
		ScanWidth:         0.25,
		ScanHeight:        0.25,
		CropWidth:         200,
		DetectionStartX:   10,
		DetectionWidthPct: 0.45,
		MinScale:          0.1,
		MaxScale:          1.5,
		ScaleSteps:        15,
		IntensityWeight:   0.7,
		EdgeWeight:        0.3,
		CannyLow:          50,
		CannyHigh:         150,
		HighlightCutoff:   240,
		Threshold:         0.3,
		TemplateWorkers:   0,
		ScaleWorkers:      1,
		TemplateDir:       "templates",
		TemplateGlob:      "*.png",
		CacheTemplates:    true,
		WatchTemplates:    false,
		DiagnosticsDir:    ".",
		SaveDiagnostics:   true,
		ScanKeys:          []string{"1", "2"},
		ExitKey:           "ESC",
		SettleDelayMS:     2000,
		PollMS:            30,
	}
}

// Validate clamps/normalizes values to safe ranges. It only returns an error for
// values that cannot be repaired, such as an unparsable target color.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if _, err := colorful.Hex(c.TargetColor); err != nil {
		return fmt.Errorf("target_color %q: %w", c.TargetColor, err)
	}
	c.ChannelOrder = strings.ToLower(strings.TrimSpace(c.ChannelOrder))
	switch c.ChannelOrder {
	case "rgb", "bgr":
	case "":
		c.ChannelOrder = "rgb"
	default:
		return fmt.Errorf("channel_order %q: want rgb or bgr", c.ChannelOrder)
	}
	if c.Tolerance < 0 || c.Tolerance > 255 {
		c.Tolerance = def.Tolerance
	}
	if !fraction(c.ScanLeft) || !fraction(c.ScanTop) {
		c.ScanLeft, c.ScanTop = def.ScanLeft, def.ScanTop
	}
	if c.ScanWidth <= 0 || c.ScanLeft+c.ScanWidth > 1 {
		c.ScanWidth = 1 - c.ScanLeft
	}
	if c.ScanHeight <= 0 || c.ScanTop+c.ScanHeight > 1 {
		c.ScanHeight = 1 - c.ScanTop
	}
	if c.CropWidth <= 0 {
		c.CropWidth = def.CropWidth
	}
	if c.DetectionStartX < 0 {
		c.DetectionStartX = 0
	}
	if c.DetectionWidthPct <= 0 || c.DetectionWidthPct > 1 {
		c.DetectionWidthPct = def.DetectionWidthPct
	}
	if c.MinScale <= 0 {
		c.MinScale = def.MinScale
	}
	if c.MaxScale <= 0 || c.MaxScale < c.MinScale {
		c.MaxScale = c.MinScale
	}
	if c.ScaleSteps < 2 {
		c.ScaleSteps = 2
	}
	if c.IntensityWeight < 0 || c.EdgeWeight < 0 || c.IntensityWeight+c.EdgeWeight == 0 {
		c.IntensityWeight, c.EdgeWeight = def.IntensityWeight, def.EdgeWeight
	}
	if c.CannyLow < 0 || c.CannyHigh <= 0 {
		c.CannyLow, c.CannyHigh = def.CannyLow, def.CannyHigh
	}
	if c.CannyLow > c.CannyHigh {
		c.CannyLow, c.CannyHigh = c.CannyHigh, c.CannyLow
	}
	if c.HighlightCutoff <= 0 || c.HighlightCutoff > 255 {
		c.HighlightCutoff = def.HighlightCutoff
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		c.Threshold = def.Threshold
	}
	if c.TemplateWorkers < 0 {
		c.TemplateWorkers = 0
	}
	if c.ScaleWorkers <= 0 {
		c.ScaleWorkers = 1
	}
	if c.TemplateDir == "" {
		c.TemplateDir = def.TemplateDir
	}
	if c.TemplateGlob == "" {
		c.TemplateGlob = def.TemplateGlob
	}
	if len(c.ScanKeys) == 0 {
		c.ScanKeys = def.ScanKeys
	}
	if c.ExitKey == "" {
		c.ExitKey = def.ExitKey
	}
	if c.SettleDelayMS < 0 {
		c.SettleDelayMS = 0
	}
	if c.PollMS <= 0 {
		c.PollMS = def.PollMS
	}
	return nil
}

func fraction(v float64) bool { return v >= 0 && v < 1 }

// TargetRGB returns the target color components in the order pixels are compared.
func (c *Config) TargetRGB() (r, g, b uint8, err error) {
	col, err := colorful.Hex(c.TargetColor)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("target_color %q: %w", c.TargetColor, err)
	}
	r, g, b = col.RGB255()
	if c.ChannelOrder == "bgr" {
		r, b = b, r
	}
	return r, g, b, nil
}

// SettleDelay is the pause between a trigger and the capture.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// PollInterval is the keyboard polling period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollMS) * time.Millisecond
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load attempts to read configuration from the given JSON or TOML file path. If the
// file does not exist it returns DefaultConfig(). On decode error it returns defaults
// with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if isTOML(path) {
		err = toml.Unmarshal(b, cfg)
	} else {
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the configuration to the given path, as TOML for a .toml extension
// and indented JSON otherwise.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if isTOML(path) {
		return toml.NewEncoder(f).Encode(c)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
