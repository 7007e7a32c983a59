// Package config loads the experiment configuration with Viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/object-cueing/internal/layout"
	"github.com/rcliao/object-cueing/internal/milestone"
	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/trial"
)

// FileName is the config file name searched for without its extension.
const FileName = "object-cueing"

// EnvPrefix prefixes environment overrides, e.g. OBJCUE_EXPERIMENT_MODE.
const EnvPrefix = "OBJCUE"

// Config is the top-level configuration structure.
type Config struct {
	Experiment ExperimentConfig `mapstructure:"experiment" yaml:"experiment"`
	Display    DisplayConfig    `mapstructure:"display" yaml:"display"`
	Gaze       GazeConfig       `mapstructure:"gaze" yaml:"gaze"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
}

// ExperimentConfig holds session and trial timing settings. Zero Blocks or
// TrialsPerBlock take the response mode's defaults.
type ExperimentConfig struct {
	Mode           string                `mapstructure:"mode" yaml:"mode"`
	Blocks         int                   `mapstructure:"blocks" yaml:"blocks"`
	TrialsPerBlock int                   `mapstructure:"trials_per_block" yaml:"trials_per_block"`
	Milestones     []milestone.Milestone `mapstructure:"milestones" yaml:"milestones"`
	ResponseKey    string                `mapstructure:"response_key" yaml:"response_key"`
	PostResponseMS int                   `mapstructure:"post_response_ms" yaml:"post_response_ms"`
	Seed           int64                 `mapstructure:"seed" yaml:"seed"`
	TrialsFile     string                `mapstructure:"trials_file" yaml:"trials_file"`
}

// DisplayConfig describes the monitor and viewing geometry.
type DisplayConfig struct {
	WidthPx        int     `mapstructure:"width_px" yaml:"width_px"`
	HeightPx       int     `mapstructure:"height_px" yaml:"height_px"`
	WidthCM        float64 `mapstructure:"width_cm" yaml:"width_cm"`
	ViewDistanceCM float64 `mapstructure:"view_distance_cm" yaml:"view_distance_cm"`
	// RefreshStepMS is how far the simulated clock moves per poll.
	RefreshStepMS int64 `mapstructure:"refresh_step_ms" yaml:"refresh_step_ms"`
}

// GazeConfig holds the eye-tracking geometry and saccade settings.
type GazeConfig struct {
	BoundaryDeg          float64 `mapstructure:"boundary_deg" yaml:"boundary_deg"`
	PlaceholderOffsetDeg float64 `mapstructure:"placeholder_offset_deg" yaml:"placeholder_offset_deg"`
	SaccadeCorrectionMS  int64   `mapstructure:"saccade_correction_ms" yaml:"saccade_correction_ms"`
	MaxSaccades          int     `mapstructure:"max_saccades" yaml:"max_saccades"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory" yaml:"directory"`
	Level      string `mapstructure:"level" yaml:"level"`
	Console    bool   `mapstructure:"console" yaml:"console"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Experiment defaults
	v.SetDefault("experiment.mode", string(model.ModeSaccade))
	v.SetDefault("experiment.blocks", 0)
	v.SetDefault("experiment.trials_per_block", 0)
	var ms []map[string]interface{}
	for _, m := range milestone.Default() {
		ms = append(ms, map[string]interface{}{"name": m.Name, "offset_ms": m.Offset})
	}
	v.SetDefault("experiment.milestones", ms)
	v.SetDefault("experiment.response_key", string(model.Spacebar))
	v.SetDefault("experiment.post_response_ms", 1000)
	v.SetDefault("experiment.seed", 0)
	v.SetDefault("experiment.trials_file", "")

	// Display defaults
	v.SetDefault("display.width_px", 1920)
	v.SetDefault("display.height_px", 1080)
	v.SetDefault("display.width_cm", 53.0)
	v.SetDefault("display.view_distance_cm", 57.0)
	v.SetDefault("display.refresh_step_ms", 1)

	// Gaze defaults
	v.SetDefault("gaze.boundary_deg", 3.0)
	v.SetDefault("gaze.placeholder_offset_deg", 4.8)
	v.SetDefault("gaze.saccade_correction_ms", 4)
	v.SetDefault("gaze.max_saccades", 3)

	// Logging defaults
	v.SetDefault("logging.directory", filepath.Join(homeDir(), ".object-cueing", "logs"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.max_size", 10)   // MB
	v.SetDefault("logging.max_backups", 3) // files
	v.SetDefault("logging.max_age", 7)     // days
	v.SetDefault("logging.compress", true)

	// Database defaults
	v.SetDefault("database.path", filepath.Join(homeDir(), ".object-cueing", "experiment.db"))
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// ModeDefaults returns the block count and block length for a response mode.
func ModeDefaults(mode model.ResponseMode) (blocks, trialsPerBlock int) {
	if mode == model.ModeKeypress {
		return 10, 40
	}
	return 12, 32
}

// Load reads the configuration. With an empty path, object-cueing.yaml is
// searched for in the working directory and ~/.object-cueing; a missing
// file is not an error. Environment variables override both.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(homeDir(), ".object-cueing"))
		v.SetConfigName(FileName)
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in configuration for mode.
func Default(mode model.ResponseMode) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.Set("experiment.mode", string(mode))
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetMode switches the response mode. Block sizes that were left to the
// mode defaults follow the new mode.
func (c *Config) SetMode(mode model.ResponseMode) {
	oldBlocks, oldTrials := ModeDefaults(c.ResponseMode())
	newBlocks, newTrials := ModeDefaults(mode)
	if c.Experiment.Blocks == oldBlocks {
		c.Experiment.Blocks = newBlocks
	}
	if c.Experiment.TrialsPerBlock == oldTrials {
		c.Experiment.TrialsPerBlock = newTrials
	}
	c.Experiment.Mode = string(mode)
}

func (c *Config) resolve() error {
	mode, err := model.ParseResponseMode(c.Experiment.Mode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.Experiment.Mode = string(mode)
	blocks, trials := ModeDefaults(mode)
	if c.Experiment.Blocks == 0 {
		c.Experiment.Blocks = blocks
	}
	if c.Experiment.TrialsPerBlock == 0 {
		c.Experiment.TrialsPerBlock = trials
	}
	return c.Validate()
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	e := c.Experiment
	if e.Blocks < 0 || e.TrialsPerBlock < 0 {
		return fmt.Errorf("config: blocks and trials_per_block must not be negative")
	}
	if e.PostResponseMS < 0 {
		return fmt.Errorf("config: post_response_ms must not be negative")
	}
	if e.ResponseKey == "" {
		return fmt.Errorf("config: response_key is required")
	}
	sched := milestone.NewSchedule(zeroClock{})
	if err := sched.Register(e.Milestones); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, name := range []string{milestone.CueOn, milestone.CueOff, milestone.TargetOn, milestone.TaskEnd} {
		if _, err := sched.Offset(name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	d := c.Display
	if d.WidthPx <= 0 || d.HeightPx <= 0 || d.WidthCM <= 0 || d.ViewDistanceCM <= 0 {
		return fmt.Errorf("config: display dimensions must be positive")
	}
	if c.Gaze.BoundaryDeg <= 0 || c.Gaze.PlaceholderOffsetDeg <= 0 {
		return fmt.Errorf("config: gaze boundary and placeholder offset must be positive")
	}
	return nil
}

type zeroClock struct{}

func (zeroClock) Now() int64 { return 0 }

// ResponseMode returns the configured response mode.
func (c *Config) ResponseMode() model.ResponseMode {
	return model.ResponseMode(c.Experiment.Mode)
}

// PxPerDeg returns the display resolution in pixels per degree.
func (c *Config) PxPerDeg() float64 {
	return layout.PixelsPerDegree(c.Display.ViewDistanceCM, c.Display.WidthCM, c.Display.WidthPx)
}

// Layout builds the stimulus layout for the configured display.
func (c *Config) Layout() (*layout.Layout, error) {
	return layout.New(layout.Options{
		WidthPx:   c.Display.WidthPx,
		HeightPx:  c.Display.HeightPx,
		PxPerDeg:  c.PxPerDeg(),
		OffsetDeg: c.Gaze.PlaceholderOffsetDeg,
	})
}

// Trial returns the trial runner settings.
func (c *Config) Trial() trial.Config {
	return trial.Config{
		Mode:              c.ResponseMode(),
		Milestones:        c.Experiment.Milestones,
		ResponseKey:       model.Key(c.Experiment.ResponseKey),
		PostResponse:      time.Duration(c.Experiment.PostResponseMS) * time.Millisecond,
		BoundaryRadius:    c.Gaze.BoundaryDeg * c.PxPerDeg(),
		SaccadeCorrection: c.Gaze.SaccadeCorrectionMS,
		MaxSaccades:       c.Gaze.MaxSaccades,
	}
}

// Write encodes c as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

// WriteFile writes c to path, refusing to overwrite an existing file unless
// force is set.
func (c *Config) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	return c.Write(f)
}
