package cli

import (
	"context"
	"fmt"

	"github.com/chunkstore-io/chunkstore/internal/config"
	"github.com/chunkstore-io/chunkstore/internal/store"
	"github.com/chunkstore-io/chunkstore/internal/store/azure"
	"github.com/chunkstore-io/chunkstore/internal/store/httpapi"
	"github.com/chunkstore-io/chunkstore/internal/store/s3"
)

// loadConfig loads the config file, honoring the --config flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	// --store overrides the configured backend
	if storeBackend != "" {
		cfg.Store.Backend = storeBackend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newStore builds the configured store backend.
// The caller owns the returned store and must Close it.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	zlog := GetLogger().Zerolog()

	switch cfg.Store.Backend {
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
			UsePathStyle:    cfg.S3.UsePathStyle,
		}, zlog)
	case "azure":
		return azure.New(azure.Config{
			AccountURL: cfg.Azure.AccountURL,
			Container:  cfg.Azure.Container,
			Prefix:     cfg.Azure.Prefix,
			SASToken:   cfg.Azure.SASToken,
		}, zlog)
	case "http":
		return httpapi.New(httpapi.Config{
			BaseURL: cfg.HTTP.BaseURL,
			APIKey:  cfg.HTTP.APIKey,
		}, zlog)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Store.Backend)
	}
}
