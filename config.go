package resque

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Statistics implementations accepted by Config.StatisticsImplementation.
const (
	StatisticsStore  = "store"
	StatisticsMemory = "memory"
)

// Config holds configuration for a Resque handle.
type Config struct {
	// KeyPrefix namespaces every key written to the backing store. Two
	// handles sharing a store but using different prefixes never see each
	// other's data. It must be non-empty and must not contain ':'.
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`

	// ProcessEnumerationCommand is the command line used to list worker
	// processes. The shell-escaped pattern is appended to it.
	ProcessEnumerationCommand string `json:"processEnumerationCommand" yaml:"processEnumerationCommand"`

	// ProcessEnumerationPattern is the match pattern passed to the
	// enumeration command.
	ProcessEnumerationPattern string `json:"processEnumerationPattern" yaml:"processEnumerationPattern"`

	// StatisticsImplementation selects the counter backend: "store" keeps
	// counters in the backing store, "memory" keeps them in this process.
	// Empty means "store".
	StatisticsImplementation string `json:"statisticsImplementation" yaml:"statisticsImplementation"`

	// StatusTTL is how long a status record survives after reaching a
	// terminal state. Zero keeps terminal records forever.
	StatusTTL time.Duration `json:"statusTTL" yaml:"statusTTL"`

	// RedisURL is used by the CLI to build a Redis-backed store.
	RedisURL string `json:"redisURL" yaml:"redisURL"`

	// DataDir, when set, makes the CLI use an embedded Pebble store in
	// this directory instead of Redis.
	DataDir string `json:"dataDir" yaml:"dataDir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeyPrefix:                 "resque",
		ProcessEnumerationCommand: "pgrep -fl",
		ProcessEnumerationPattern: "resque",
		StatisticsImplementation:  StatisticsStore,
		StatusTTL:                 24 * time.Hour,
		RedisURL:                  "redis://localhost:6379/0",
	}
}

// Validate reports whether the configuration can be used.
func (c Config) Validate() error {
	if err := ValidatePrefix(c.KeyPrefix); err != nil {
		return err
	}
	switch c.StatisticsImplementation {
	case StatisticsStore, StatisticsMemory, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatistics, c.StatisticsImplementation)
	}
	if c.StatusTTL < 0 {
		return fmt.Errorf("%w: negative status ttl %s", ErrInvalidArgument, c.StatusTTL)
	}
	return nil
}

// ValidatePrefix checks that prefix can serve as an isolated key namespace.
// A single trailing ':' is tolerated and ignored.
func ValidatePrefix(prefix string) error {
	p := strings.TrimSuffix(prefix, ":")
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	}
	if strings.Contains(p, ":") {
		return fmt.Errorf("%w: %q contains ':'", ErrInvalidPrefix, prefix)
	}
	return nil
}

// LoadConfig reads configuration from a JSON or YAML file (by extension)
// on top of the defaults. If path is empty, the defaults are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("resque: read config: %w", err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("resque: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ConfigFromEnv overlays RESQUE_* environment variables onto cfg. An
// unparsable duration leaves cfg.StatusTTL unchanged and is reported.
func ConfigFromEnv(cfg *Config) error {
	if v := os.Getenv("RESQUE_KEY_PREFIX"); v != "" {
		cfg.KeyPrefix = v
	}
	if v := os.Getenv("RESQUE_PROCESS_ENUMERATION_COMMAND"); v != "" {
		cfg.ProcessEnumerationCommand = v
	}
	if v := os.Getenv("RESQUE_PROCESS_ENUMERATION_PATTERN"); v != "" {
		cfg.ProcessEnumerationPattern = v
	}
	if v := os.Getenv("RESQUE_STATISTICS_IMPLEMENTATION"); v != "" {
		cfg.StatisticsImplementation = v
	}
	if v := os.Getenv("RESQUE_STATUS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: RESQUE_STATUS_TTL %q: %w", ErrInvalidArgument, v, err)
		}
		cfg.StatusTTL = d
	}
	if v := os.Getenv("RESQUE_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("RESQUE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	return nil
}
