package collective

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/collective/types"
)

// NATSConfig configures the NATS JetStream KV transport.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`

	// Bucket is the KV bucket holding run mailboxes. All participants of a
	// run must use the same bucket.
	Bucket string `yaml:"bucket"`

	// BucketTTL is how long run keys survive in the bucket (0 = no expiration).
	// Keys are never deleted explicitly, so this is the cleanup mechanism.
	BucketTTL time.Duration `yaml:"bucketTtl"`

	// BucketRetries is the number of attempts to create or open the bucket.
	BucketRetries int `yaml:"bucketRetries"`
}

// MetricsConfig configures metrics exposition.
type MetricsConfig struct {
	// Addr is the listen address of the Prometheus /metrics endpoint.
	// Empty disables the endpoint.
	Addr string `yaml:"addr"`
}

// Config configures one participant.
//
// Every participant of a run must use the same RunID, MaxParticipants and
// Root. Timeouts are local and may differ.
type Config struct {
	// RunID scopes all transport keys of one run. Letters, digits, '-' and '_' only.
	RunID string `yaml:"runId"`

	// MaxParticipants is the largest group size accepted.
	// Default: 8
	MaxParticipants int `yaml:"maxParticipants"`

	// Root is the rank that owns the dataset and collects results.
	// Only rank 0 is supported.
	Root int `yaml:"root"`

	// OperationTimeout bounds every blocking scatter, broadcast and receive.
	// A call exceeding it fails with ErrStalled.
	//
	// Default: 0 (block until the peer arrives)
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// StartupTimeout bounds transport bootstrap (bucket creation and group join).
	// Default: 30 seconds
	StartupTimeout time.Duration `yaml:"startupTimeout"`

	// NATS configures the NATS transport.
	NATS NATSConfig `yaml:"nats"`

	// Metrics configures metrics exposition.
	Metrics MetricsConfig `yaml:"metrics"`
}

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		RunID:            "collective",
		MaxParticipants:  8,
		Root:             types.CoordinatorRank,
		OperationTimeout: 0,
		StartupTimeout:   30 * time.Second,
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			Bucket:        "collective-runs",
			BucketTTL:     10 * time.Minute,
			BucketRetries: 3,
		},
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.RunID == "" {
		cfg.RunID = defaults.RunID
	}
	if cfg.MaxParticipants == 0 {
		cfg.MaxParticipants = defaults.MaxParticipants
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = defaults.NATS.URL
	}
	if cfg.NATS.Bucket == "" {
		cfg.NATS.Bucket = defaults.NATS.Bucket
	}
	if cfg.NATS.BucketTTL == 0 {
		cfg.NATS.BucketTTL = defaults.NATS.BucketTTL
	}
	if cfg.NATS.BucketRetries == 0 {
		cfg.NATS.BucketRetries = defaults.NATS.BucketRetries
	}
	// OperationTimeout of 0 is meaningful (block forever), so no default is applied
}

// Validate checks configuration constraints.
//
// Hard Validation Rules:
//   - RunID matches [A-Za-z0-9_-]+ (it becomes part of KV keys)
//   - MaxParticipants >= 1
//   - Root == 0
//   - OperationTimeout >= 0, StartupTimeout >= 0
//   - NATS.BucketRetries >= 0
//
// Returns:
//   - error: Error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if !runIDPattern.MatchString(cfg.RunID) {
		return fmt.Errorf("%w: runId %q may only contain letters, digits, '-' and '_'", ErrInvalidConfig, cfg.RunID)
	}
	if cfg.MaxParticipants < 1 {
		return fmt.Errorf("%w: maxParticipants must be >= 1, got %d", ErrInvalidConfig, cfg.MaxParticipants)
	}
	if cfg.Root != types.CoordinatorRank {
		return fmt.Errorf("%w: root must be %d, got %d", ErrInvalidConfig, types.CoordinatorRank, cfg.Root)
	}
	if cfg.OperationTimeout < 0 {
		return fmt.Errorf("%w: operationTimeout must be >= 0, got %v", ErrInvalidConfig, cfg.OperationTimeout)
	}
	if cfg.StartupTimeout < 0 {
		return fmt.Errorf("%w: startupTimeout must be >= 0, got %v", ErrInvalidConfig, cfg.StartupTimeout)
	}
	if cfg.NATS.BucketRetries < 0 {
		return fmt.Errorf("%w: nats.bucketRetries must be >= 0, got %d", ErrInvalidConfig, cfg.NATS.BucketRetries)
	}

	return nil
}

// ValidateWithWarnings logs warnings for legal but risky values.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.OperationTimeout == 0 {
		logger.Debug("operationTimeout is 0, a missing peer blocks the run indefinitely")
	} else if cfg.OperationTimeout < 100*time.Millisecond {
		logger.Warn(
			"operationTimeout is very short, slow peers will be reported as stalled",
			"operation_timeout", cfg.OperationTimeout,
			"recommended", "1s or higher",
		)
	}

	if cfg.NATS.BucketTTL > 0 && cfg.OperationTimeout > 0 && cfg.NATS.BucketTTL < 2*cfg.OperationTimeout {
		logger.Warn(
			"nats.bucketTtl is shorter than two operation timeouts, messages may expire before they are read",
			"bucket_ttl", cfg.NATS.BucketTTL,
			"operation_timeout", cfg.OperationTimeout,
		)
	}
}

// TestConfig returns a configuration for fast test execution.
//
// A bounded OperationTimeout turns a protocol mistake into a test failure
// instead of a hung test.
//
// Returns:
//   - Config: Configuration with short timeouts
//
// Example:
//
//	cfg := collective.TestConfig()
//	cfg.RunID = "test-run"
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.OperationTimeout = 5 * time.Second
	cfg.StartupTimeout = 5 * time.Second
	cfg.NATS.BucketTTL = time.Minute

	return cfg
}

// ParseConfig decodes a YAML document and applies defaults.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Decoded configuration with defaults applied
//   - error: Error wrapping ErrInvalidConfig on decode or validation failure
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// Parameters:
//   - path: File path
//
// Returns:
//   - Config: Decoded configuration with defaults applied
//   - error: Read, decode or validation error
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}
