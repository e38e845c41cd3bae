package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ib-77/cbd/pkg/filter"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Data      DataConfig      `yaml:"data"`
	Run       RunConfig       `yaml:"run"`
	Store     StoreConfig     `yaml:"store"`
	Plot      PlotConfig      `yaml:"plot"`
	Filter    *filter.Filter  `yaml:"filter,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type DataConfig struct {
	UpperBound int64 `yaml:"upper_bound" validate:"gte=2"`
	// Limit is the chase floor; 0 means UpperBound.
	Limit           int64 `yaml:"limit" validate:"gte=0"`
	IncludeBackbone bool  `yaml:"include_backbone"`
}

type RunConfig struct {
	// Processes is the worker count per stage; 0 means runtime.NumCPU().
	Processes int    `yaml:"processes" validate:"gte=0,ne=1"`
	MaxSteps  int    `yaml:"max_steps" validate:"gte=0"`
	LogMode   string `yaml:"log_mode" validate:"omitempty,oneof=development dev production prod nop test"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite badger none"`
	Path   string `yaml:"path" validate:"required_unless=Driver none"`
}

type PlotConfig struct {
	Width        int     `yaml:"width" validate:"gte=100"`
	Height       int     `yaml:"height" validate:"gte=100"`
	PointSize    float64 `yaml:"point_size" validate:"gt=0"`
	PaletteRange int     `yaml:"palette_range" validate:"gte=1,lte=256"`
	YAxis        string  `yaml:"y_axis" validate:"oneof=distance distance_to_bb vertebrae peak peak_slope"`
	Colorization string  `yaml:"colorization" validate:"oneof=distance distance_to_bb value vertebrae peak peak_slope odd_parent"`
	Output       string  `yaml:"output" validate:"required"`
}

type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=stdout none"`
	MetricsFile   string `yaml:"metrics_file"`
}

func Defaults() Config {
	return Config{
		Data: DataConfig{
			UpperBound: 10_000,
		},
		Run: RunConfig{
			MaxSteps: 100_000,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "cbd.db",
		},
		Plot: PlotConfig{
			Width:        1600,
			Height:       900,
			PointSize:    1.5,
			PaletteRange: 10,
			YAxis:        "distance_to_bb",
			Colorization: "distance",
			Output:       "cbd.png",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
		},
	}
}

// Load reads path over Defaults, applies CBD_* environment overrides,
// validates and normalizes. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Normalize()
	return cfg, nil
}

var validate = validator.New()

// Validate checks field tags, the filter and the cross-field rule
// 2 <= limit <= upper_bound.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Data.Limit != 0 && (c.Data.Limit < 2 || c.Data.Limit > c.Data.UpperBound) {
		return fmt.Errorf("%w: limit %d must be within [2, %d]", ErrInvalidConfig, c.Data.Limit, c.Data.UpperBound)
	}
	if c.Filter != nil {
		if err := c.Filter.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Normalize resolves zero values to their effective settings.
func (c *Config) Normalize() {
	if c.Data.Limit == 0 {
		c.Data.Limit = c.Data.UpperBound
	}
	if c.Run.Processes == 0 {
		c.Run.Processes = max(runtime.NumCPU(), 2)
	}
}

type lookupFunc func(key string) (string, bool)

func applyEnv(c *Config, lookup lookupFunc) error {
	ints := map[string]*int{
		"CBD_PROCESSES":    &c.Run.Processes,
		"CBD_MAX_STEPS":    &c.Run.MaxSteps,
		"CBD_PLOT_WIDTH":   &c.Plot.Width,
		"CBD_PLOT_HEIGHT":  &c.Plot.Height,
		"CBD_PALETTE_SIZE": &c.Plot.PaletteRange,
	}
	int64s := map[string]*int64{
		"CBD_UPPER_BOUND": &c.Data.UpperBound,
		"CBD_LIMIT":       &c.Data.Limit,
	}
	strs := map[string]*string{
		"CBD_LOG_MODE":       &c.Run.LogMode,
		"CBD_STORE_DRIVER":   &c.Store.Driver,
		"CBD_STORE_PATH":     &c.Store.Path,
		"CBD_PLOT_OUTPUT":    &c.Plot.Output,
		"CBD_PLOT_Y_AXIS":    &c.Plot.YAxis,
		"CBD_COLORIZATION":   &c.Plot.Colorization,
		"CBD_TRACE_EXPORTER": &c.Telemetry.TraceExporter,
		"CBD_METRICS_FILE":   &c.Telemetry.MetricsFile,
	}

	for key, dst := range ints {
		if raw, ok := lookup(key); ok {
			v, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, key, raw, err)
			}
			*dst = v
		}
	}
	for key, dst := range int64s {
		if raw, ok := lookup(key); ok {
			v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, key, raw, err)
			}
			*dst = v
		}
	}
	for key, dst := range strs {
		if raw, ok := lookup(key); ok {
			*dst = strings.TrimSpace(raw)
		}
	}
	if raw, ok := lookup("CBD_INCLUDE_BACKBONE"); ok {
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: CBD_INCLUDE_BACKBONE=%q: %w", ErrInvalidConfig, raw, err)
		}
		c.Data.IncludeBackbone = v
	}
	return nil
}
