// Package config loads partgen settings and part parameter override files.
//
// Settings come from viper: an optional .partgen.yaml in $HOME or the
// working directory, then PARTGEN_* environment variables. Parameter
// overrides are flat name to number maps read from YAML or HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Output formats accepted by output.format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DefaultMeshCells is the marching cubes resolution used when none is set.
const DefaultMeshCells = 200

// ErrUnsupportedFormat reports a parameter file extension or output
// format that is not understood.
var ErrUnsupportedFormat = errors.New("unsupported format")

// LoadError reports a configuration or parameter file that could not be
// used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Settings are the resolved partgen settings.
type Settings struct {
	MeshCells    int
	OutputFormat string
	LogLevel     string
	Strict       bool

	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance with partgen's defaults, search paths and
// environment binding. An explicit cfgFile replaces the search.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	v.SetDefault("mesh.cells", DefaultMeshCells)
	v.SetDefault("output.format", FormatTable)
	v.SetDefault("log.level", "info")
	v.SetDefault("strict", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".partgen")
	}

	v.SetEnvPrefix("PARTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings. A missing config file is not an error unless
// cfgFile names it explicitly.
func Load(cfgFile string) (*Settings, error) {
	return FromViper(New(cfgFile), cfgFile != "")
}

// FromViper reads and validates settings from v. When required is false a
// config file that cannot be found is skipped.
func FromViper(v *viper.Viper, required bool) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if required || !errors.As(err, &notFound) {
			return nil, &LoadError{Path: v.ConfigFileUsed(), Err: err}
		}
	}

	s := &Settings{
		MeshCells:    v.GetInt("mesh.cells"),
		OutputFormat: strings.ToLower(v.GetString("output.format")),
		LogLevel:     strings.ToLower(v.GetString("log.level")),
		Strict:       v.GetBool("strict"),
		File:         v.ConfigFileUsed(),
	}
	if err := s.Validate(); err != nil {
		return nil, &LoadError{Path: s.File, Err: err}
	}
	return s, nil
}

// Validate checks the settings.
func (s *Settings) Validate() error {
	if s.MeshCells < 1 {
		return fmt.Errorf("mesh.cells must be positive, got %d", s.MeshCells)
	}
	if err := CheckFormat(s.OutputFormat); err != nil {
		return err
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", s.LogLevel)
	}
	return nil
}

// CheckFormat reports whether f is a known output format.
func CheckFormat(f string) error {
	switch f {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("output format %q: %w", f, ErrUnsupportedFormat)
}
