package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	EnvFileEnvVar = "SCREENSHOT_OCR"

	CaptureBackendPortal = "portal"
	CaptureBackendScreen = "screen"

	LogSinkSyslog = "syslog"
	LogSinkStderr = "stderr"
	LogSinkFile   = "file"
	LogSinkNone   = "none"

	DefaultCopyGrace    = 2100 * time.Millisecond
	DefaultStartupDelay = 100 * time.Millisecond
	DefaultRetakeDelay  = 150 * time.Millisecond
)

// LoadOptions carries command line overrides. Zero values mean "not given".
type LoadOptions struct {
	RetainFile     bool
	KeepOpen       bool
	Lang           string
	SaveLocation   string
	CaptureBackend string
	LogSink        string
}

type Config struct {
	RetainFile        bool
	KeepOpen          bool
	Lang              string
	SaveLocation      string
	LogSink           string
	EnableFileLogging bool
	CaptureBackend    string
	TessdataPrefix    string
	CopyGrace         time.Duration
	StartupDelay      time.Duration
	RetakeDelay       time.Duration

	// Warnings holds ConfigErrors that were downgraded to defaults.
	Warnings []error
}

// ConfigError reports a setting that was rejected and replaced by its default.
type ConfigError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %q: %s, using default", e.Key, e.Value, e.Reason)
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREENSHOT_OCR env var as a path to a config file
	// Flags in opts win over both.
	if envPath := resolveEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		RetainFile:        opts.RetainFile || envBool("ENABLE_SAVING"),
		KeepOpen:          opts.KeepOpen || envBool("NO_CLOSE_ON_ACTION"),
		Lang:              firstNonEmpty(opts.Lang, os.Getenv("OCR_LANG")),
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		TessdataPrefix:    strings.TrimSpace(os.Getenv("TESSDATA_PREFIX")),
		CopyGrace:         DefaultCopyGrace,
		StartupDelay:      DefaultStartupDelay,
		RetakeDelay:       DefaultRetakeDelay,
	}

	if v := os.Getenv("COPY_GRACE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CopyGrace = time.Duration(n) * time.Millisecond
		} else {
			cfg.warn("COPY_GRACE_MS", v, "not a non-negative integer")
		}
	}

	cfg.CaptureBackend = cfg.resolveCaptureBackend(firstNonEmpty(opts.CaptureBackend, os.Getenv("CAPTURE_BACKEND")))
	cfg.LogSink = cfg.resolveLogSink(firstNonEmpty(opts.LogSink, os.Getenv("LOG_SINK")))
	cfg.SaveLocation = cfg.resolveSaveLocation(firstNonEmpty(opts.SaveLocation, os.Getenv("SAVE_LOCATION")))

	return cfg, nil
}

// InitialSaveDir returns the folder the save chooser opens in: the configured
// save location, else the user's documents directory, else "".
func (c *Config) InitialSaveDir() string {
	if c.SaveLocation != "" {
		return c.SaveLocation
	}
	return documentsDir()
}

// DefaultSaveName is the file name suggested by the save chooser.
func DefaultSaveName(t time.Time) string {
	return "clipboard_" + t.Format("15-04_06-01") + ".txt"
}

func (c *Config) warn(key, value, reason string) {
	c.Warnings = append(c.Warnings, &ConfigError{Key: key, Value: value, Reason: reason})
}

func (c *Config) resolveSaveLocation(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	st, err := os.Stat(value)
	if err != nil || !st.IsDir() {
		c.warn("save-location", value, "not a valid directory")
		return ""
	}
	if !writable(value) {
		// Still honoured; the save itself will report the failure.
		c.warn("save-location", value, "directory is not writable")
	}
	return value
}

func (c *Config) resolveCaptureBackend(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", CaptureBackendPortal:
		return CaptureBackendPortal
	case CaptureBackendScreen:
		return CaptureBackendScreen
	default:
		c.warn("capture-backend", value, "unknown backend")
		return CaptureBackendPortal
	}
}

func (c *Config) resolveLogSink(value string) string {
	if c.EnableFileLogging && strings.TrimSpace(value) == "" {
		return LogSinkFile
	}
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case "":
		return LogSinkSyslog
	case LogSinkSyslog, LogSinkStderr, LogSinkFile, LogSinkNone:
		return v
	default:
		c.warn("log-sink", value, "unknown sink")
		return LogSinkSyslog
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func documentsDir() string {
	dir := xdg.UserDirs.Documents
	if dir == "" {
		return ""
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return ""
	}
	return dir
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
