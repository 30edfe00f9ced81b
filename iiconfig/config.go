// Package iiconfig merges command-line flags with an optional YAML
// sidecar config into the settings an Encoder run needs, the way a
// batch transcoder CLI does: flags win over the file, the file wins
// over built-in defaults.
package iiconfig

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	defaultTickRate    = 14340
	defaultCyclesPerTick = 73
	defaultMode        = "hgr"
	defaultPalette     = "ntsc"
)

// Config holds everything cmd/iiencode needs to run one encoding job.
type Config struct {
	InputVideo  string
	InputAudio  string
	FrameDir    string
	SymbolFile  string
	CacheDir    string
	Output      string
	Mode        string
	Palette     string
	TickRate    int
	FrameRate   float64
	MaxBytesOut int64
	Normalization float64
	Verbose     bool
}

// yamlConfig is the on-disk sidecar shape; only fields actually present
// in the YAML file override Config's defaults before flags are applied.
type yamlConfig struct {
	FrameDir      string  `yaml:"frame_dir"`
	SymbolFile    string  `yaml:"symbol_file"`
	CacheDir      string  `yaml:"cache_dir"`
	Mode          string  `yaml:"mode"`
	Palette       string  `yaml:"palette"`
	TickRate      int     `yaml:"tick_rate"`
	FrameRate     float64 `yaml:"frame_rate"`
	MaxBytesOut   int64   `yaml:"max_bytes_out"`
	Normalization float64 `yaml:"normalization"`
}

// defaults returns a Config with every built-in default filled in.
func defaults() Config {
	return Config{
		CacheDir: ".ii-vision-cache",
		Mode:     defaultMode,
		Palette:  defaultPalette,
		TickRate: defaultTickRate,
	}
}

// Parse builds a Config from a config file (if configPath is non-empty)
// layered with command-line flags from args, flags taking precedence.
func Parse(args []string, configPath string) (Config, error) {
	cfg := defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("iiconfig: reading %s: %w", configPath, err)
		}
		var yc yamlConfig
		if err := yaml.Unmarshal(data, &yc); err != nil {
			return Config{}, fmt.Errorf("iiconfig: parsing %s: %w", configPath, err)
		}
		applyYAML(&cfg, yc)
	}

	fs := pflag.NewFlagSet("iiencode", pflag.ContinueOnError)
	video := fs.StringP("video", "i", "", "input video file (frame-converted to --frame-dir externally)")
	audio := fs.StringP("audio", "a", "", "input WAV audio file")
	frameDir := fs.String("frame-dir", cfg.FrameDir, "directory of pre-converted %08d.bin/.aux frame dumps")
	symbolFile := fs.String("symbol-file", cfg.SymbolFile, "decoder debug symbol file (cc65 .dbg format)")
	cacheDir := fs.String("cache-dir", cfg.CacheDir, "directory for distance-table cache files")
	output := fs.StringP("output", "o", "", "output stream file (- for stdout)")
	mode := fs.String("mode", cfg.Mode, "display mode: hgr or dhgr")
	palette := fs.String("palette", cfg.Palette, "color palette: ntsc or rgb")
	tickRate := fs.Int("tick-rate", cfg.TickRate, "audio samples per second (recorded in the config only; audio is always resampled to 14340 Hz)")
	frameRate := fs.Float64("frame-rate", cfg.FrameRate, "input video frame rate")
	maxBytes := fs.Int64("max-bytes", cfg.MaxBytesOut, "stop after this many output bytes (0 = unbounded)")
	normalization := fs.Float64("audio-normalization", cfg.Normalization, "override auto-detected audio normalization factor (0 = autodetect)")
	verbose := fs.BoolP("verbose", "v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *video != "" {
		cfg.InputVideo = *video
	}
	if *audio != "" {
		cfg.InputAudio = *audio
	}
	cfg.FrameDir = *frameDir
	cfg.SymbolFile = *symbolFile
	cfg.CacheDir = *cacheDir
	if *output != "" {
		cfg.Output = *output
	}
	cfg.Mode = *mode
	cfg.Palette = *palette
	cfg.TickRate = *tickRate
	cfg.FrameRate = *frameRate
	cfg.MaxBytesOut = *maxBytes
	cfg.Normalization = *normalization
	cfg.Verbose = *verbose

	return cfg, cfg.Validate()
}

func applyYAML(cfg *Config, yc yamlConfig) {
	if yc.FrameDir != "" {
		cfg.FrameDir = yc.FrameDir
	}
	if yc.SymbolFile != "" {
		cfg.SymbolFile = yc.SymbolFile
	}
	if yc.CacheDir != "" {
		cfg.CacheDir = yc.CacheDir
	}
	if yc.Mode != "" {
		cfg.Mode = yc.Mode
	}
	if yc.Palette != "" {
		cfg.Palette = yc.Palette
	}
	if yc.TickRate != 0 {
		cfg.TickRate = yc.TickRate
	}
	if yc.FrameRate != 0 {
		cfg.FrameRate = yc.FrameRate
	}
	if yc.MaxBytesOut != 0 {
		cfg.MaxBytesOut = yc.MaxBytesOut
	}
	if yc.Normalization != 0 {
		cfg.Normalization = yc.Normalization
	}
}

// Validate checks the merged config is complete enough to construct an
// Encoder, returning a descriptive error naming the missing or invalid
// field rather than failing deep inside the pipeline.
func (c Config) Validate() error {
	if c.FrameDir == "" {
		return fmt.Errorf("iiconfig: --frame-dir is required")
	}
	if c.SymbolFile == "" {
		return fmt.Errorf("iiconfig: --symbol-file is required")
	}
	if c.Output == "" {
		return fmt.Errorf("iiconfig: --output is required")
	}
	if c.Mode != "hgr" && c.Mode != "dhgr" {
		return fmt.Errorf("iiconfig: --mode must be hgr or dhgr, got %q", c.Mode)
	}
	if c.Palette != "ntsc" && c.Palette != "rgb" {
		return fmt.Errorf("iiconfig: --palette must be ntsc or rgb, got %q", c.Palette)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("iiconfig: --frame-rate must be positive, got %v", c.FrameRate)
	}
	return nil
}
