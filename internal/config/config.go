// Package config holds the index builder configuration.
//
// Values are layered: Defaults, then a YAML (or JSON) file, then ABI_INDEX_*
// environment variables, then command line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const EnvPrefix = "ABI_INDEX_"

type Config struct {
	ABIDir          string `yaml:"abi_dir"`
	OutDir          string `yaml:"out_dir"`
	FunctionDir     string `yaml:"function_dir"`
	EventDir        string `yaml:"event_dir"`
	ManifestFile    string `yaml:"manifest_file"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	AtomicWrites    bool   `yaml:"atomic_writes"`
	Log             Log    `yaml:"log"`
}

type Log struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // console or json
	File       string `yaml:"file"`   // optional, rotated
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func Defaults() Config {
	return Config{
		ABIDir:       "ABIs",
		OutDir:       "dist",
		FunctionDir:  "q",
		EventDir:     "c",
		ManifestFile: "contracts.json",
		AtomicWrites: true,
		Log: Log{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the file at p over base. Unknown keys are rejected.
func Load(base Config, p string) (Config, error) {
	f, err := os.Open(p)
	if err != nil {
		return base, err
	}
	defer f.Close()
	return Decode(base, f)
}

// Decode reads a YAML document from r over base.
func Decode(base Config, r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return base, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return base, nil
	}

	out := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&out); err != nil {
		return base, fmt.Errorf("decoding config: %w", err)
	}
	return out, nil
}

// ApplyEnv overlays ABI_INDEX_* variables from environ (os.Environ format).
func ApplyEnv(cfg Config, environ []string) (Config, error) {
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		var err error
		switch strings.TrimPrefix(key, EnvPrefix) {
		case "ABI_DIR":
			cfg.ABIDir = val
		case "OUT_DIR":
			cfg.OutDir = val
		case "FUNCTION_DIR":
			cfg.FunctionDir = val
		case "EVENT_DIR":
			cfg.EventDir = val
		case "MANIFEST_FILE":
			cfg.ManifestFile = val
		case "CONTINUE_ON_ERROR":
			cfg.ContinueOnError, err = strconv.ParseBool(val)
		case "ATOMIC_WRITES":
			cfg.AtomicWrites, err = strconv.ParseBool(val)
		case "LOG_LEVEL":
			cfg.Log.Level = val
		case "LOG_FORMAT":
			cfg.Log.Format = val
		case "LOG_FILE":
			cfg.Log.File = val
		}
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", key, err)
		}
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	var errs []error
	if strings.TrimSpace(cfg.ABIDir) == "" {
		errs = append(errs, errors.New("abi_dir is required"))
	}
	if strings.TrimSpace(cfg.OutDir) == "" {
		errs = append(errs, errors.New("out_dir is required"))
	}
	for _, name := range []struct{ key, val string }{
		{"function_dir", cfg.FunctionDir},
		{"event_dir", cfg.EventDir},
		{"manifest_file", cfg.ManifestFile},
	} {
		if err := validRelative(name.val); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name.key, err))
		}
	}
	if path.Clean(cfg.FunctionDir) == path.Clean(cfg.EventDir) {
		errs = append(errs, errors.New("function_dir and event_dir must differ"))
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level '%s'", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format '%s'", cfg.Log.Format))
	}

	return errors.Join(errs...)
}

func validRelative(p string) error {
	if strings.TrimSpace(p) == "" {
		return errors.New("must not be empty")
	}
	c := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if path.IsAbs(c) || c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return fmt.Errorf("'%s' must be relative to out_dir", p)
	}
	return nil
}
