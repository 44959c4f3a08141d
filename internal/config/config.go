// Package config provides configuration management for chunkstore.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/chunkstore-io/chunkstore/internal/constants"
)

// Config is the on-disk configuration for the CLI.
//
// Config file location:
//   - default: ~/.config/chunkstore/config
//   - override: CHUNKSTORE_CONFIG env var or the --config flag
//
// INI format:
//
//	[store]
//	backend = s3            ; s3 | azure | http
//	chunk_size = 261120
//
//	[s3]
//	bucket = my-chunks
//	prefix = files
//	region = us-east-1
//	endpoint =              ; optional, for MinIO/LocalStack
//	access_key_id =         ; optional, ambient chain when empty
//	secret_access_key =
//	session_token =
//	use_path_style = false
//
//	[azure]
//	account_url = https://acct.blob.core.windows.net
//	container = chunks
//	prefix =
//	sas_token = <sas>
//
//	[http]
//	base_url = https://chunks.example.com
//	api_key =
type Config struct {
	Store StoreConfig
	S3    S3Config
	Azure AzureConfig
	HTTP  HTTPConfig
}

// StoreConfig selects the backend and common sizing.
type StoreConfig struct {
	// Backend is the store implementation: "s3", "azure", or "http"
	Backend string `ini:"backend"`

	// ChunkSize is the chunk record size the CLI assumes for staging
	// tools. Bounded by constants.MinChunkSize/MaxChunkSize.
	ChunkSize int64 `ini:"chunk_size"`
}

// S3Config holds the S3 backend settings.
type S3Config struct {
	Bucket          string `ini:"bucket"`
	Prefix          string `ini:"prefix"`
	Region          string `ini:"region"`
	Endpoint        string `ini:"endpoint"`
	AccessKeyID     string `ini:"access_key_id"`
	SecretAccessKey string `ini:"secret_access_key"`
	SessionToken    string `ini:"session_token"`
	UsePathStyle    bool   `ini:"use_path_style"`
}

// AzureConfig holds the Azure backend settings.
type AzureConfig struct {
	AccountURL string `ini:"account_url"`
	Container  string `ini:"container"`
	Prefix     string `ini:"prefix"`
	SASToken   string `ini:"sas_token"`
}

// HTTPConfig holds the chunk-server backend settings.
type HTTPConfig struct {
	BaseURL string `ini:"base_url"`
	APIKey  string `ini:"api_key"`
}

// Validation errors
var (
	ErrMissingBackend   = errors.New("store backend is required")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrInvalidChunkSize = errors.New("chunk_size out of range")
)

// DefaultPath returns the default config file path, honoring the
// CHUNKSTORE_CONFIG override.
func DefaultPath() (string, error) {
	if p := os.Getenv("CHUNKSTORE_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "chunkstore", "config"), nil
}

// Load reads and validates the config file at path.
// An empty path loads from DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	cfg := &Config{
		Store: StoreConfig{ChunkSize: constants.DefaultChunkSize},
	}
	if err := iniFile.Section("store").MapTo(&cfg.Store); err != nil {
		return nil, fmt.Errorf("failed to parse [store] section: %w", err)
	}
	if err := iniFile.Section("s3").MapTo(&cfg.S3); err != nil {
		return nil, fmt.Errorf("failed to parse [s3] section: %w", err)
	}
	if err := iniFile.Section("azure").MapTo(&cfg.Azure); err != nil {
		return nil, fmt.Errorf("failed to parse [azure] section: %w", err)
	}
	if err := iniFile.Section("http").MapTo(&cfg.HTTP); err != nil {
		return nil, fmt.Errorf("failed to parse [http] section: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend selection and sizing bounds.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "":
		return ErrMissingBackend
	case "s3", "azure", "http":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}

	if c.Store.ChunkSize < constants.MinChunkSize || c.Store.ChunkSize > constants.MaxChunkSize {
		return fmt.Errorf("%w: %d (allowed %d..%d)",
			ErrInvalidChunkSize, c.Store.ChunkSize, constants.MinChunkSize, constants.MaxChunkSize)
	}

	return nil
}
