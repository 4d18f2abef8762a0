// Package config provides configuration loading and management for the bridge server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/mbean-bridge/internal/attribute"
	"github.com/stacklok/mbean-bridge/internal/telemetry"
)

const (
	// EnvPrefix is the prefix for environment variables read by the bridge
	EnvPrefix = "MBEAN_BRIDGE"

	// BackendTypeJolokia is the type for JMX agents reached over Jolokia HTTP
	BackendTypeJolokia = "jolokia"

	// BackendTypeStatic is the type for in-memory object registries loaded from YAML
	BackendTypeStatic = "static"

	// DefaultMacroToken is the macro placeholder resolving to the pooled data source
	DefaultMacroToken = "_C3P0_"

	// DefaultMacroPattern is the discovery pattern for DefaultMacroToken
	DefaultMacroPattern = "com.mchange.v2.c3p0:type=PooledDataSource,*"

	defaultFileStorageBaseDir = "./data"
	defaultHistoryPath        = "./data/history"
)

// StorageType identifies the property store implementation.
type StorageType string

const (
	// StorageTypeFile stores properties as JSON files
	StorageTypeFile StorageType = "file"

	// StorageTypeDatabase stores properties in PostgreSQL
	StorageTypeDatabase StorageType = "database"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Backends    []BackendConfig    `yaml:"backends"`
	Macros      []MacroConfig      `yaml:"macros,omitempty"`
	Targets     []TargetConfig     `yaml:"targets"`
	FileStorage *FileStorageConfig `yaml:"fileStorage,omitempty"`
	Database    *DatabaseConfig    `yaml:"database,omitempty"`
	History     *HistoryConfig     `yaml:"history,omitempty"`
	Telemetry   *telemetry.Config  `yaml:"telemetry,omitempty"`
}

// BackendConfig defines a single management backend
type BackendConfig struct {
	// Name is the identifier targets use to reference this backend
	Name string `yaml:"name"`

	// Type-specific configurations (only one should be set)
	Jolokia *JolokiaConfig `yaml:"jolokia,omitempty"`
	Static  *StaticConfig  `yaml:"static,omitempty"`

	// CircuitBreaker guards reads against an unhealthy backend
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty"`
}

// JolokiaConfig defines a Jolokia agent endpoint
type JolokiaConfig struct {
	// URL is the agent base URL, e.g. "http://localhost:8778/jolokia"
	URL string `yaml:"url"`

	// Username for basic authentication (optional)
	Username string `yaml:"username,omitempty"`

	// PasswordFile is the path to a file containing the agent password
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Timeout bounds each backend request (e.g. "5s")
	Timeout string `yaml:"timeout,omitempty"`
}

// StaticConfig defines an in-memory object registry loaded from a YAML file
type StaticConfig struct {
	Path string `yaml:"path"`
}

// CircuitBreakerConfig defines when backend calls are short-circuited
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker
	MaxFailures uint32 `yaml:"maxFailures,omitempty"`

	// OpenTimeout is how long the breaker stays open (e.g. "30s")
	OpenTimeout string `yaml:"openTimeout,omitempty"`
}

// MacroConfig binds an object-name placeholder to a discovery pattern
type MacroConfig struct {
	Token   string `yaml:"token"`
	Pattern string `yaml:"pattern"`
}

// TargetConfig defines a property container synchronized from a backend
type TargetConfig struct {
	// Name is the identifier for this target
	Name string `yaml:"name"`

	// Backend is the name of the backend the attributes are read from
	Backend string `yaml:"backend"`

	// Per-target sync policy
	SyncPolicy *SyncPolicyConfig `yaml:"syncPolicy,omitempty"`

	// Attributes are the property definitions bound to backend attributes
	Attributes []AttributeConfig `yaml:"attributes"`
}

// AttributeConfig defines one property bound to a backend attribute
type AttributeConfig struct {
	Name        string `yaml:"name"`
	Object      string `yaml:"object"`
	Type        string `yaml:"type"`
	CacheTimeMs *int64 `yaml:"cacheTimeMs,omitempty"`
	Logged      bool   `yaml:"logged,omitempty"`
	Category    string `yaml:"category,omitempty"`
}

// SyncPolicyConfig defines synchronization settings
type SyncPolicyConfig struct {
	Interval string `yaml:"interval"`
}

// FileStorageConfig defines file-based property storage settings
type FileStorageConfig struct {
	// BaseDir is the directory holding one subdirectory per target
	BaseDir string `yaml:"baseDir"`
}

// HistoryConfig defines the value history store
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`

	// Path is the badger data directory
	Path string `yaml:"path,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from MBEAN_BRIDGE_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		return readPasswordFile(d.PasswordFile)
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// GetPassword returns the agent password from PasswordFile, or an empty string.
func (j *JolokiaConfig) GetPassword() (string, error) {
	if j.PasswordFile == "" {
		return "", nil
	}
	return readPasswordFile(j.PasswordFile)
}

// GetTimeout returns the request timeout, zero when unset or invalid.
func (j *JolokiaConfig) GetTimeout() time.Duration {
	if j.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(j.Timeout)
	if err != nil {
		return 0
	}
	return d
}

func readPasswordFile(path string) (string, error) {
	// Use filepath.Clean to prevent path traversal attacks
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read password from file %s: %w", path, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorageType returns database when a database is configured, file otherwise
func (c *Config) GetStorageType() StorageType {
	if c.Database != nil {
		return StorageTypeDatabase
	}
	return StorageTypeFile
}

// GetFileStorageBaseDir returns the file storage directory, defaulting to ./data
func (c *Config) GetFileStorageBaseDir() string {
	if c.FileStorage == nil || c.FileStorage.BaseDir == "" {
		return defaultFileStorageBaseDir
	}
	return c.FileStorage.BaseDir
}

// IsHistoryEnabled reports whether logged properties are recorded
func (c *Config) IsHistoryEnabled() bool {
	return c.History != nil && c.History.Enabled
}

// GetHistoryPath returns the history store directory
func (c *Config) GetHistoryPath() string {
	if c.History == nil || c.History.Path == "" {
		return defaultHistoryPath
	}
	return c.History.Path
}

// GetMacros returns the configured macros. The default pooled data source macro
// is always present unless its token is redefined.
func (c *Config) GetMacros() []MacroConfig {
	macros := append([]MacroConfig{}, c.Macros...)
	for _, m := range macros {
		if m.Token == DefaultMacroToken {
			return macros
		}
	}
	return append(macros, MacroConfig{Token: DefaultMacroToken, Pattern: DefaultMacroPattern})
}

// GetTarget returns the named target configuration
func (c *Config) GetTarget(name string) (*TargetConfig, bool) {
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i], true
		}
	}
	return nil, false
}

// GetType returns the inferred type of the backend config based on which field is present
func (b *BackendConfig) GetType() string {
	if b.Jolokia != nil {
		return BackendTypeJolokia
	}
	if b.Static != nil {
		return BackendTypeStatic
	}
	return ""
}

// Definitions converts the target's attribute configuration into definitions.
// The configuration is expected to be validated.
func (t *TargetConfig) Definitions() []attribute.Definition {
	defs := make([]attribute.Definition, 0, len(t.Attributes))
	for _, a := range t.Attributes {
		vt, err := attribute.ParseValueType(a.Type)
		if err != nil {
			vt = attribute.TypeString
		}
		category := a.Category
		if category == "" {
			category = attribute.DefaultCategory
		}
		defs = append(defs, attribute.Definition{
			Name:      a.Name,
			Object:    a.Object,
			Type:      vt,
			CacheTime: a.CacheTimeMs,
			Logged:    a.Logged,
			Category:  category,
		})
	}
	return defs
}

// validate performs validation on the configuration
// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if len(c.Backends) == 0 {
		return fmt.Errorf("at least one backend must be configured")
	}

	backendNames := make(map[string]bool)
	for i := range c.Backends {
		b := &c.Backends[i]
		if b.Name == "" {
			return fmt.Errorf("backend[%d]: name is required", i)
		}
		if backendNames[b.Name] {
			return fmt.Errorf("backend[%d]: duplicate backend name '%s'", i, b.Name)
		}
		backendNames[b.Name] = true

		if err := validateBackendConfig(b, i); err != nil {
			return err
		}
	}

	if err := c.validateMacros(); err != nil {
		return err
	}

	targetNames := make(map[string]bool)
	for i := range c.Targets {
		t := &c.Targets[i]
		if t.Name == "" {
			return fmt.Errorf("target[%d]: name is required", i)
		}
		if targetNames[t.Name] {
			return fmt.Errorf("target[%d]: duplicate target name '%s'", i, t.Name)
		}
		targetNames[t.Name] = true

		if err := validateTargetConfig(t, i, backendNames); err != nil {
			return err
		}
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

// validateBackendConfig ensures exactly one backend type is configured
func validateBackendConfig(b *BackendConfig, index int) error {
	prefix := fmt.Sprintf("backend[%d] (%s)", index, b.Name)

	count := 0
	if b.Jolokia != nil {
		count++
	}
	if b.Static != nil {
		count++
	}
	if count == 0 {
		return fmt.Errorf("%s: one of jolokia or static configuration must be specified", prefix)
	}
	if count > 1 {
		return fmt.Errorf("%s: only one of jolokia or static configuration may be specified", prefix)
	}

	if b.Jolokia != nil {
		if b.Jolokia.URL == "" {
			return fmt.Errorf("%s: jolokia.url is required", prefix)
		}
		if _, err := url.ParseRequestURI(b.Jolokia.URL); err != nil {
			return fmt.Errorf("%s: jolokia.url is invalid: %w", prefix, err)
		}
		if b.Jolokia.Timeout != "" {
			if _, err := time.ParseDuration(b.Jolokia.Timeout); err != nil {
				return fmt.Errorf("%s: jolokia.timeout must be a valid duration: %w", prefix, err)
			}
		}
	}
	if b.Static != nil && b.Static.Path == "" {
		return fmt.Errorf("%s: static.path is required", prefix)
	}

	if b.CircuitBreaker != nil && b.CircuitBreaker.OpenTimeout != "" {
		if _, err := time.ParseDuration(b.CircuitBreaker.OpenTimeout); err != nil {
			return fmt.Errorf("%s: circuitBreaker.openTimeout must be a valid duration: %w", prefix, err)
		}
	}

	return nil
}

func (c *Config) validateMacros() error {
	tokens := make(map[string]bool)
	for i, m := range c.Macros {
		if m.Token == "" {
			return fmt.Errorf("macro[%d]: token is required", i)
		}
		if m.Pattern == "" {
			return fmt.Errorf("macro[%d] (%s): pattern is required", i, m.Token)
		}
		if tokens[m.Token] {
			return fmt.Errorf("macro[%d]: duplicate macro token '%s'", i, m.Token)
		}
		tokens[m.Token] = true
	}
	return nil
}

// validateTargetConfig validates a single target configuration
func validateTargetConfig(t *TargetConfig, index int, backends map[string]bool) error {
	prefix := fmt.Sprintf("target[%d] (%s)", index, t.Name)

	if t.Backend == "" {
		return fmt.Errorf("%s: backend is required", prefix)
	}
	if !backends[t.Backend] {
		return fmt.Errorf("%s: unknown backend '%s'", prefix, t.Backend)
	}

	if err := validateSyncPolicy(t.SyncPolicy, prefix); err != nil {
		return err
	}

	names := make(map[string]bool)
	for i, a := range t.Attributes {
		if a.Name == "" {
			return fmt.Errorf("%s: attributes[%d]: name is required", prefix, i)
		}
		if names[a.Name] {
			return fmt.Errorf("%s: attributes[%d]: duplicate attribute name '%s'", prefix, i, a.Name)
		}
		names[a.Name] = true
		if a.Object == "" {
			return fmt.Errorf("%s: attributes[%d] (%s): object is required", prefix, i, a.Name)
		}
		if _, err := attribute.ParseValueType(a.Type); err != nil {
			return fmt.Errorf("%s: attributes[%d] (%s): %w", prefix, i, a.Name, err)
		}
	}

	return nil
}

// validateSyncPolicy validates the sync policy configuration. A missing policy
// means the target is only refreshed on demand.
func validateSyncPolicy(policy *SyncPolicyConfig, prefix string) error {
	if policy == nil || policy.Interval == "" {
		return nil
	}

	if _, err := time.ParseDuration(policy.Interval); err != nil {
		return fmt.Errorf("%s: syncPolicy.interval must be a valid duration (e.g., '30s', '5m'): %w", prefix, err)
	}

	return nil
}
