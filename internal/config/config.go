package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/peterxing/exo/internal/model"
)

// MemoryOverrideEnv holds an operator-provided memory ceiling in MB. It is
// read on every poll so a changed value applies on the next tick.
const MemoryOverrideEnv = "OVERRIDE_MEMORY_MB"

const (
	DefaultMemoryPollInterval = 500 * time.Millisecond
	DefaultNodePollInterval   = 1 * time.Second
	DefaultNodeTickTimeout    = 30 * time.Second
	DefaultBackendLibrary     = "libmlx_bridge.dylib"
	AgentVersion              = "v0.3.0"
)

type Config struct {
	AgentID             string
	AgentVersion        string
	LogLevel            string
	LogJSON             bool
	MemoryPollInterval  time.Duration
	NodePollInterval    time.Duration
	NodeTickTimeout     time.Duration
	ShutdownTimeout     time.Duration
	ProbeListenAddr     string
	MacmonPath          string
	BackendLibrary      string
	LibvirtURI          string
	ReconnectInterval   time.Duration
	MaxReconnectJitter  time.Duration
	NotifyNodeExhausted bool
}

// fileConfig is the optional YAML layer. Environment variables win over it.
type fileConfig struct {
	AgentID             string  `yaml:"agent_id"`
	LogLevel            string  `yaml:"log_level"`
	LogJSON             *bool   `yaml:"log_json"`
	MemoryPollInterval  string  `yaml:"memory_poll_interval"`
	NodePollInterval    string  `yaml:"node_poll_interval"`
	NodeTickTimeout     string  `yaml:"node_tick_timeout"`
	ShutdownTimeout     string  `yaml:"shutdown_timeout"`
	ProbeListenAddr     *string `yaml:"probe_addr"`
	MacmonPath          string  `yaml:"macmon_path"`
	BackendLibrary      string  `yaml:"backend_library"`
	LibvirtURI          string  `yaml:"libvirt_uri"`
	NotifyNodeExhausted *bool   `yaml:"notify_node_exhausted"`
}

// LoadEnvFile loads a .env file into the process environment. With an empty
// path it tries ./.env and ignores its absence.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load builds the agent configuration from the environment, using the YAML
// file at path (if any) for defaults.
func Load(path string) (Config, error) {
	fc, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	probeAddr := "127.0.0.1:7443"
	if fc.ProbeListenAddr != nil {
		probeAddr = *fc.ProbeListenAddr
	}

	cfg := Config{
		AgentID:             env("EXO_AGENT_ID", orDefault(fc.AgentID, uuid.NewString())),
		AgentVersion:        AgentVersion,
		LogLevel:            strings.ToLower(env("EXO_LOG_LEVEL", orDefault(fc.LogLevel, "info"))),
		LogJSON:             envBool("EXO_LOG_JSON", boolOr(fc.LogJSON, false)),
		MemoryPollInterval:  envDuration("EXO_MEMORY_POLL_INTERVAL", durationOr(fc.MemoryPollInterval, DefaultMemoryPollInterval)),
		NodePollInterval:    envDuration("EXO_NODE_POLL_INTERVAL", durationOr(fc.NodePollInterval, DefaultNodePollInterval)),
		NodeTickTimeout:     envDuration("EXO_NODE_TICK_TIMEOUT", durationOr(fc.NodeTickTimeout, DefaultNodeTickTimeout)),
		ShutdownTimeout:     envDuration("EXO_SHUTDOWN_TIMEOUT", durationOr(fc.ShutdownTimeout, 10*time.Second)),
		ProbeListenAddr:     envAllowEmpty("EXO_PROBE_ADDR", probeAddr),
		MacmonPath:          env("EXO_MACMON_PATH", orDefault(fc.MacmonPath, "macmon")),
		BackendLibrary:      env("EXO_BACKEND_LIBRARY", orDefault(fc.BackendLibrary, DefaultBackendLibrary)),
		LibvirtURI:          env("EXO_LIBVIRT_URI", fc.LibvirtURI),
		ReconnectInterval:   envDuration("EXO_LIBVIRT_RECONNECT_INTERVAL", 4*time.Second),
		MaxReconnectJitter:  envDuration("EXO_LIBVIRT_RECONNECT_MAX_JITTER", 900*time.Millisecond),
		NotifyNodeExhausted: envBool("EXO_NOTIFY_NODE_EXHAUSTED", boolOr(fc.NotifyNodeExhausted, false)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AgentID) == "" {
		return errors.New("EXO_AGENT_ID must not be empty")
	}
	if c.MemoryPollInterval <= 0 || c.NodePollInterval <= 0 {
		return errors.New("poll intervals must be > 0")
	}
	if c.NodeTickTimeout <= 0 {
		return errors.New("EXO_NODE_TICK_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("EXO_SHUTDOWN_TIMEOUT must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	if strings.TrimSpace(c.MacmonPath) == "" {
		return errors.New("EXO_MACMON_PATH must not be empty")
	}
	return nil
}

// MemoryOverride returns the configured memory ceiling, or nil when unset.
func MemoryOverride() (*model.Memory, error) {
	raw := strings.TrimSpace(os.Getenv(MemoryOverrideEnv))
	if raw == "" {
		return nil, nil
	}
	mb, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s=%q: %w", MemoryOverrideEnv, raw, err)
	}
	m := model.MemoryFromMB(mb)
	return &m, nil
}

func readFile(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

func durationOr(v string, fallback time.Duration) time.Duration {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// envAllowEmpty distinguishes "unset" from "set to empty", which disables the
// probe listener.
func envAllowEmpty(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
