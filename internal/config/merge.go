// Package config holds the run configuration of the merger. Values are
// layered by viper: built-in defaults, an optional config file, GTMERGE_*
// environment variables and finally command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/banshee-data/gtmerge/internal/preprocess"
)

// EnvPrefix prefixes every environment override, e.g. GTMERGE_TOLERANCE.
const EnvPrefix = "GTMERGE"

// Config keys. Flags share these names.
const (
	KeyConfig              = "config"
	KeyOBAFile             = "obaFile"
	KeyGTFile              = "gtFile"
	KeyOutputDir           = "outputDir"
	KeyMinActivityDuration = "minActivityDuration"
	KeyMinTripLength       = "minTripLength"
	KeyTolerance           = "tolerance"
	KeyIterateOverTol      = "iterateOverTol"
	KeyToleranceStep       = "toleranceStep"
	KeyToleranceFirst      = "toleranceFirst"
	KeyToleranceList       = "toleranceList"
	KeyRemoveStillMode     = "removeStillMode"
	KeyMergeOneToOne       = "mergeOneToOne"
	KeyRepeatGTRows        = "repeatGtRows"
	KeyDeviceList          = "deviceList"
	KeyPlot                = "plot"
	KeyLogLevel            = "logLevel"
	KeyLogFormat           = "logFormat"
)

// MergeConfig is the effective configuration of one run.
type MergeConfig struct {
	OBAFile   string `mapstructure:"obaFile" json:"obaFile"`
	GTFile    string `mapstructure:"gtFile" json:"gtFile"`
	OutputDir string `mapstructure:"outputDir" json:"outputDir"`

	// MinActivityDuration is in minutes, MinTripLength in meters.
	MinActivityDuration float64 `mapstructure:"minActivityDuration" json:"minActivityDuration"`
	MinTripLength       float64 `mapstructure:"minTripLength" json:"minTripLength"`

	// Tolerances are in milliseconds.
	Tolerance      int64 `mapstructure:"tolerance" json:"tolerance"`
	IterateOverTol bool  `mapstructure:"iterateOverTol" json:"iterateOverTol"`
	ToleranceStep  int64 `mapstructure:"toleranceStep" json:"toleranceStep"`
	ToleranceFirst int64 `mapstructure:"toleranceFirst" json:"toleranceFirst"`
	// ToleranceList overrides the stepped sweep with "min:max:step" or a
	// comma list when set.
	ToleranceList string `mapstructure:"toleranceList" json:"toleranceList,omitempty"`

	RemoveStillMode bool   `mapstructure:"removeStillMode" json:"removeStillMode"`
	MergeOneToOne   bool   `mapstructure:"mergeOneToOne" json:"mergeOneToOne"`
	RepeatGTRows    bool   `mapstructure:"repeatGtRows" json:"repeatGtRows"`
	DeviceList      string `mapstructure:"deviceList" json:"deviceList,omitempty"`

	Plot      bool   `mapstructure:"plot" json:"plot"`
	LogLevel  string `mapstructure:"logLevel" json:"logLevel"`
	LogFormat string `mapstructure:"logFormat" json:"logFormat"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() MergeConfig {
	return MergeConfig{
		OutputDir:           "merger_output",
		MinActivityDuration: 2,
		MinTripLength:       20,
		Tolerance:           3600000,
		ToleranceStep:       30000,
		ToleranceFirst:      30000,
		MergeOneToOne:       true,
		Plot:                true,
		LogLevel:            "info",
		LogFormat:           "console",
	}
}

// Validate checks that the configuration values are valid.
func (c *MergeConfig) Validate() error {
	var errs []error
	if c.OBAFile == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyOBAFile))
	}
	if c.GTFile == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyGTFile))
	}
	if c.OutputDir == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", KeyOutputDir))
	}
	if c.MinActivityDuration < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %g", KeyMinActivityDuration, c.MinActivityDuration))
	}
	if c.MinTripLength < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %g", KeyMinTripLength, c.MinTripLength))
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("%s must be non-negative, got %d", KeyTolerance, c.Tolerance))
	}
	if c.IterateOverTol && c.ToleranceList == "" {
		if c.ToleranceStep <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyToleranceStep, c.ToleranceStep))
		}
		if c.ToleranceFirst < 0 || c.ToleranceFirst > c.Tolerance {
			errs = append(errs, fmt.Errorf("%s must be within [0, %s], got %d", KeyToleranceFirst, KeyTolerance, c.ToleranceFirst))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%s must be console or json, got %q", KeyLogFormat, c.LogFormat))
	}
	return errors.Join(errs...)
}

// ToleranceDuration returns the base tolerance as a duration.
func (c *MergeConfig) ToleranceDuration() time.Duration {
	return time.Duration(c.Tolerance) * time.Millisecond
}

// GTOptions returns the ground truth normalizer options. Interval matching
// needs a destination time on every trip.
func (c *MergeConfig) GTOptions() preprocess.GTOptions {
	return preprocess.GTOptions{
		RemoveStill:       c.RemoveStillMode,
		RequireAllColumns: !c.MergeOneToOne,
	}
}

// OBAOptions returns the OBA normalizer options for the given whitelist.
func (c *MergeConfig) OBAOptions(devices map[string]struct{}) preprocess.OBAOptions {
	return preprocess.OBAOptions{
		MinActivityDuration: c.MinActivityDuration,
		MinTripLength:       c.MinTripLength,
		RemoveStill:         c.RemoveStillMode,
		Devices:             devices,
	}
}

// BindFlags defines the command-line flags on fs with their defaults.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(KeyConfig, "", "optional config file (json, toml or yaml)")
	fs.String(KeyOBAFile, "", "path to the OBA travel behavior CSV export")
	fs.String(KeyGTFile, "", "path to the ground truth XLSX workbook")
	fs.String(KeyOutputDir, d.OutputDir, "directory for logs and merged data")
	fs.Float64(KeyMinActivityDuration, d.MinActivityDuration, "shortest OBA activity kept, in minutes")
	fs.Float64(KeyMinTripLength, d.MinTripLength, "shortest OBA origin-destination distance kept, in meters")
	fs.Int64(KeyTolerance, d.Tolerance, "match tolerance in milliseconds; upper bound of a sweep")
	fs.Bool(KeyIterateOverTol, d.IterateOverTol, "sweep tolerances from toleranceFirst to tolerance")
	fs.Int64(KeyToleranceStep, d.ToleranceStep, "sweep step in milliseconds")
	fs.Int64(KeyToleranceFirst, d.ToleranceFirst, "first swept tolerance in milliseconds")
	fs.String(KeyToleranceList, "", "explicit sweep as min:max:step or a comma list, in milliseconds")
	fs.Bool(KeyRemoveStillMode, d.RemoveStillMode, "drop STILL trips and activities before matching")
	fs.Bool(KeyMergeOneToOne, d.MergeOneToOne, "nearest-time one-to-one matching; false selects interval matching")
	fs.Bool(KeyRepeatGTRows, d.RepeatGTRows, "repeat the full ground truth row on every interval match")
	fs.String(KeyDeviceList, "", "file with comma-separated device ids to keep")
	fs.Bool(KeyPlot, d.Plot, "write the time difference box plot and sweep chart")
	fs.String(KeyLogLevel, d.LogLevel, "log level: debug, info, warn or error")
	fs.String(KeyLogFormat, d.LogFormat, "log format: console or json")
}

// Load resolves the configuration from defaults, the optional config file,
// the environment and the parsed flags in fs.
func Load(v *viper.Viper, fs *pflag.FlagSet) (MergeConfig, error) {
	d := Defaults()
	for key, val := range map[string]any{
		KeyOutputDir:           d.OutputDir,
		KeyMinActivityDuration: d.MinActivityDuration,
		KeyMinTripLength:       d.MinTripLength,
		KeyTolerance:           d.Tolerance,
		KeyIterateOverTol:      d.IterateOverTol,
		KeyToleranceStep:       d.ToleranceStep,
		KeyToleranceFirst:      d.ToleranceFirst,
		KeyRemoveStillMode:     d.RemoveStillMode,
		KeyMergeOneToOne:       d.MergeOneToOne,
		KeyRepeatGTRows:        d.RepeatGTRows,
		KeyPlot:                d.Plot,
		KeyLogLevel:            d.LogLevel,
		KeyLogFormat:           d.LogFormat,
	} {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return MergeConfig{}, fmt.Errorf("binding flags: %w", err)
		}
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return MergeConfig{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg MergeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return MergeConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
