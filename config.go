package fileops

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Configuration keys. They double as command-line flag names; the matching
// environment variables are FILEOPS_LOG_LEVEL and so on.
const (
	ConfigKeyLogLevel   = "log-level"
	ConfigKeyLogFormat  = "log-format"
	ConfigKeyLogBackend = "log-backend"

	envPrefix = "FILEOPS"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	LogBackendLogrus = "logrus"
	LogBackendZap    = "zap"
	LogBackendSlog   = "slog"
	LogBackendStd    = "std"
	LogBackendNone   = "none"
)

// Config controls diagnostics only. Protocol behaviour is not configurable.
type Config struct {
	LogLevel   string
	LogFormat  string
	LogBackend string
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogLevel:   "warn",
		LogFormat:  LogFormatText,
		LogBackend: LogBackendLogrus,
	}
}

// NewConfigViper returns a viper instance with defaults and environment
// lookups registered. Callers may bind flags to it before LoadConfig.
func NewConfigViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault(ConfigKeyLogLevel, defaults.LogLevel)
	v.SetDefault(ConfigKeyLogFormat, defaults.LogFormat)
	v.SetDefault(ConfigKeyLogBackend, defaults.LogBackend)
	return v
}

// LoadConfig reads and validates the configuration held by v.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogLevel:   strings.ToLower(v.GetString(ConfigKeyLogLevel)),
		LogFormat:  strings.ToLower(v.GetString(ConfigKeyLogFormat)),
		LogBackend: strings.ToLower(v.GetString(ConfigKeyLogBackend)),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := logLevelNames[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	switch c.LogBackend {
	case LogBackendLogrus, LogBackendZap, LogBackendSlog, LogBackendStd, LogBackendNone:
	default:
		return fmt.Errorf("invalid log backend %q: must be one of logrus, zap, slog, std, none", c.LogBackend)
	}
	return nil
}

// NewLogger builds the Logger described by cfg, writing to w.
func NewLogger(cfg Config, w io.Writer) (Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.LogBackend {
	case LogBackendLogrus:
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(level)
		if cfg.LogFormat == LogFormatJSON {
			l.SetFormatter(&logrus.JSONFormatter{})
		} else {
			l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
		}
		return NewLogrusLogger(l), nil

	case LogBackendZap:
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		var encoder zapcore.Encoder
		if cfg.LogFormat == LogFormatJSON {
			encoder = zapcore.NewJSONEncoder(encoderConfig)
		} else {
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}
		core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
		return NewZapLogger(zap.New(core)), nil

	case LogBackendSlog:
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler
		if cfg.LogFormat == LogFormatJSON {
			handler = slog.NewJSONHandler(w, opts)
		} else {
			handler = slog.NewTextHandler(w, opts)
		}
		return NewSlogLogger(slog.New(handler)), nil

	case LogBackendStd:
		return NewDefaultLoggerWithWriter(w, cfg.LogLevel), nil

	default:
		return NewNullLogger(), nil
	}
}
