package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Backend drivers
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendPebble = "pebble"
	BackendBadger = "badger"
)

// Publish drivers
const (
	PublishNone   = "none"
	PublishKafka  = "kafka"
	PublishSarama = "sarama"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Errors
var (
	ErrUnknownBackend   = errors.New("unknown backend driver")
	ErrUnknownPublisher = errors.New("unknown publish driver")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Config represents the application configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Replay    ReplayConfig    `yaml:"replay"`
	Backend   BackendConfig   `yaml:"backend"`
	Log       LogConfig       `yaml:"log"`
	Publish   PublishConfig   `yaml:"publish"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Output    OutputConfig    `yaml:"output"`
}

// InputConfig selects the capture to replay
type InputConfig struct {
	// Path of the capture, "-" or empty reads stdin. A .gz suffix is decompressed.
	Path          string `yaml:"path"`
	SkipMalformed bool   `yaml:"skip_malformed"`
	MaxLineSize   int    `yaml:"max_line_size"`
}

// ReplayConfig tunes the replay
type ReplayConfig struct {
	TopN int `yaml:"top_n"`
	// DiagnosticsPerSecond caps logged diagnostics, zero logs all of them
	DiagnosticsPerSecond int `yaml:"diagnostics_per_second"`
}

// BackendConfig selects where the book lives
type BackendConfig struct {
	Driver string      `yaml:"driver"`
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PublishConfig selects where the report is sent
type PublishConfig struct {
	Driver     string `yaml:"driver"`
	BrokerAddr string `yaml:"broker_addr"`
	Topic      string `yaml:"topic"`
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// OutputConfig selects how the report is printed
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg := &Config{}
	cfg.Input.Path = "-"
	cfg.Replay.TopN = 10
	cfg.Replay.DiagnosticsPerSecond = 20
	cfg.Backend.Driver = BackendMemory
	cfg.Backend.Redis.Addr = "localhost:6379"
	cfg.Backend.Redis.Prefix = "pitch"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Publish.Driver = PublishNone
	cfg.Publish.BrokerAddr = "localhost:9092"
	cfg.Publish.Topic = "pitch-top-volume"
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.ServiceName = "pitch-replay"
	cfg.Output.Format = FormatTable
	return cfg
}

// flagValues holds command line values before they are applied
type flagValues struct {
	configFile    string
	input         string
	skipMalformed bool
	maxLineSize   int
	topN          int
	backend       string
	backendPath   string
	redisAddr     string
	logLevel      string
	logFormat     string
	publish       string
	broker        string
	topic         string
	telemetry     bool
	jsonOutput    bool
}

// Load builds the configuration from defaults, an optional YAML file,
// PITCH_* environment variables and finally command line flags.
// A positional argument names the capture file.
func Load(args []string) (*Config, error) {
	return load(args, os.Stderr)
}

func load(args []string, usage io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("pitchtop", flag.ContinueOnError)
	fs.SetOutput(usage)

	var fv flagValues
	fs.StringVar(&fv.configFile, "config", "", "Path to config file (YAML)")
	fs.StringVar(&fv.input, "input", "-", "Capture file, - for stdin")
	fs.BoolVar(&fv.skipMalformed, "skip_malformed", false, "Report malformed records and continue")
	fs.IntVar(&fv.maxLineSize, "max_line_size", 0, "Longest accepted capture line in bytes")
	fs.IntVar(&fv.topN, "top", 10, "Number of symbols to report")
	fs.StringVar(&fv.backend, "backend", BackendMemory, "Book backend: memory, redis, pebble, badger")
	fs.StringVar(&fv.backendPath, "backend_path", "", "Directory for pebble or badger")
	fs.StringVar(&fv.redisAddr, "redis_addr", "localhost:6379", "Redis address")
	fs.StringVar(&fv.logLevel, "log_level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&fv.logFormat, "log_format", "pretty", "Log format: json, pretty")
	fs.StringVar(&fv.publish, "publish", PublishNone, "Publish the report: none, kafka, sarama")
	fs.StringVar(&fv.broker, "broker", "localhost:9092", "Kafka broker address")
	fs.StringVar(&fv.topic, "topic", "pitch-top-volume", "Kafka topic")
	fs.BoolVar(&fv.telemetry, "telemetry", false, "Export traces and metrics over OTLP")
	fs.BoolVar(&fv.jsonOutput, "json", false, "Print the report as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	// Load configuration from file if specified
	if fv.configFile != "" {
		yamlFile, err := os.ReadFile(fv.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		applyFlag(cfg, &fv, f.Name)
	})
	if fs.NArg() > 0 {
		cfg.Input.Path = fs.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlag(cfg *Config, fv *flagValues, name string) {
	switch name {
	case "input":
		cfg.Input.Path = fv.input
	case "skip_malformed":
		cfg.Input.SkipMalformed = fv.skipMalformed
	case "max_line_size":
		cfg.Input.MaxLineSize = fv.maxLineSize
	case "top":
		cfg.Replay.TopN = fv.topN
	case "backend":
		cfg.Backend.Driver = fv.backend
	case "backend_path":
		cfg.Backend.Path = fv.backendPath
	case "redis_addr":
		cfg.Backend.Redis.Addr = fv.redisAddr
	case "log_level":
		cfg.Log.Level = fv.logLevel
	case "log_format":
		cfg.Log.Format = fv.logFormat
	case "publish":
		cfg.Publish.Driver = fv.publish
	case "broker":
		cfg.Publish.BrokerAddr = fv.broker
	case "topic":
		cfg.Publish.Topic = fv.topic
	case "telemetry":
		cfg.Telemetry.Enabled = fv.telemetry
	case "json":
		if fv.jsonOutput {
			cfg.Output.Format = FormatJSON
		} else {
			cfg.Output.Format = FormatTable
		}
	}
}

// envKeys lists every setting that PITCH_<SECTION>_<KEY> can override
var envKeys = []string{
	"input.path",
	"input.skip_malformed",
	"input.max_line_size",
	"replay.top_n",
	"replay.diagnostics_per_second",
	"backend.driver",
	"backend.path",
	"backend.redis.addr",
	"backend.redis.password",
	"backend.redis.db",
	"backend.redis.prefix",
	"backend.redis.ttl",
	"log.level",
	"log.format",
	"publish.driver",
	"publish.broker_addr",
	"publish.topic",
	"telemetry.enabled",
	"telemetry.endpoint",
	"telemetry.service_name",
	"output.format",
}

func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix("PITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	for _, key := range envKeys {
		if !v.IsSet(key) {
			continue
		}
		switch key {
		case "input.path":
			cfg.Input.Path = v.GetString(key)
		case "input.skip_malformed":
			cfg.Input.SkipMalformed = v.GetBool(key)
		case "input.max_line_size":
			cfg.Input.MaxLineSize = v.GetInt(key)
		case "replay.top_n":
			cfg.Replay.TopN = v.GetInt(key)
		case "replay.diagnostics_per_second":
			cfg.Replay.DiagnosticsPerSecond = v.GetInt(key)
		case "backend.driver":
			cfg.Backend.Driver = v.GetString(key)
		case "backend.path":
			cfg.Backend.Path = v.GetString(key)
		case "backend.redis.addr":
			cfg.Backend.Redis.Addr = v.GetString(key)
		case "backend.redis.password":
			cfg.Backend.Redis.Password = v.GetString(key)
		case "backend.redis.db":
			cfg.Backend.Redis.DB = v.GetInt(key)
		case "backend.redis.prefix":
			cfg.Backend.Redis.Prefix = v.GetString(key)
		case "backend.redis.ttl":
			cfg.Backend.Redis.TTL = v.GetDuration(key)
		case "log.level":
			cfg.Log.Level = v.GetString(key)
		case "log.format":
			cfg.Log.Format = v.GetString(key)
		case "publish.driver":
			cfg.Publish.Driver = v.GetString(key)
		case "publish.broker_addr":
			cfg.Publish.BrokerAddr = v.GetString(key)
		case "publish.topic":
			cfg.Publish.Topic = v.GetString(key)
		case "telemetry.enabled":
			cfg.Telemetry.Enabled = v.GetBool(key)
		case "telemetry.endpoint":
			cfg.Telemetry.Endpoint = v.GetString(key)
		case "telemetry.service_name":
			cfg.Telemetry.ServiceName = v.GetString(key)
		case "output.format":
			cfg.Output.Format = v.GetString(key)
		}
	}
	return nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case BackendMemory, BackendPebble, BackendBadger:
	case BackendRedis:
		if c.Backend.Redis.Addr == "" {
			return fmt.Errorf("%w: backend.redis.addr must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend.Driver)
	}

	switch c.Publish.Driver {
	case PublishNone:
	case PublishKafka, PublishSarama:
		if c.Publish.BrokerAddr == "" {
			return fmt.Errorf("%w: publish.broker_addr must not be empty", ErrInvalidConfig)
		}
		if c.Publish.Topic == "" {
			return fmt.Errorf("%w: publish.topic must not be empty", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPublisher, c.Publish.Driver)
	}

	if c.Replay.TopN < 0 {
		return fmt.Errorf("%w: replay.top_n must not be negative", ErrInvalidConfig)
	}
	if c.Input.MaxLineSize < 0 {
		return fmt.Errorf("%w: input.max_line_size must not be negative", ErrInvalidConfig)
	}
	switch c.Log.Format {
	case "json", "pretty":
	default:
		return fmt.Errorf("%w: log.format must be json or pretty", ErrInvalidConfig)
	}
	switch c.Output.Format {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("%w: output.format must be table or json", ErrInvalidConfig)
	}
	return nil
}
