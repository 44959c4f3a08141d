// Package s3 provides an S3-backed chunk store. Each file is laid out as a
// metadata object plus one object per chunk:
//
//	<prefix>/<fileID>/meta.json
//	<prefix>/<fileID>/chunks/<n>
//
// Chunk fetches are point GetObject lookups retried with exponential backoff
// for transient network failures.
package s3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/chunkstore-io/chunkstore/internal/models"
	"github.com/chunkstore-io/chunkstore/internal/store"
)

// Config holds the connection settings for an S3-backed store.
type Config struct {
	// Bucket is the S3 bucket holding the chunk records
	Bucket string
	// Prefix is prepended to every object key (may be empty)
	Prefix string
	// Region is the AWS region of the bucket
	Region string
	// Endpoint overrides the S3 endpoint (MinIO, LocalStack). Empty uses AWS.
	Endpoint string
	// AccessKeyID/SecretAccessKey/SessionToken configure static credentials.
	// When AccessKeyID is empty the ambient AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// UsePathStyle forces path-style addressing, required by most
	// S3-compatible endpoints
	UsePathStyle bool
}

// Store is an S3-backed chunk store. Safe for concurrent use; the underlying
// S3 client maintains its own connection pool.
type Store struct {
	client *s3.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates an S3 store, loading the AWS config with the region, optional
// static credentials, and optional custom endpoint from cfg.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 store: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Store{client: client, cfg: cfg, logger: logger}, nil
}

// OpenReadBinding opens a scoped read session. The session shares the
// store's client and connection pool.
func (s *Store) OpenReadBinding() store.ReadBinding {
	return &binding{store: s}
}

// Close releases the store handle. The SDK client needs no explicit shutdown.
func (s *Store) Close() error {
	return nil
}

// metaKey returns the object key of a file's metadata record.
func (s *Store) metaKey(fileID string) string {
	return s.join(fileID, "meta.json")
}

// chunkKey returns the object key of chunk n of a file.
func (s *Store) chunkKey(fileID string, n int64) string {
	return s.join(fileID, "chunks/"+strconv.FormatInt(n, 10))
}

func (s *Store) join(parts ...string) string {
	key := strings.TrimSuffix(s.cfg.Prefix, "/")
	for _, p := range parts {
		if key == "" {
			key = p
		} else {
			key = key + "/" + p
		}
	}
	return key
}

type binding struct {
	store    *Store
	released bool
}

func (b *binding) FetchFileInfo(ctx context.Context, fileID string) (*models.FileInfo, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}

	body, err := b.getObject(ctx, b.store.metaKey(fileID))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("file %s: %w", fileID, store.ErrFileNotFound)
		}
		return nil, fmt.Errorf("fetch metadata for file %s: %w", fileID, err)
	}

	var info models.FileInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode metadata for file %s: %w", fileID, err)
	}
	return &info, nil
}

func (b *binding) FetchChunk(ctx context.Context, fileID string, n int64) ([]byte, error) {
	if b.released {
		return nil, store.ErrBindingReleased
	}

	start := time.Now()
	data, err := b.getObject(ctx, b.store.chunkKey(fileID, n))
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("chunk %d of file %s: %w", n, fileID, store.ErrChunkNotFound)
		}
		return nil, fmt.Errorf("fetch chunk %d of file %s: %w", n, fileID, err)
	}

	b.store.logger.Debug().
		Str("file_id", fileID).
		Int64("chunk", n).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("s3 chunk fetch")

	return data, nil
}

func (b *binding) Release() error {
	b.released = true
	return nil
}

// getObject fetches one object fully into memory, retrying transient
// network failures with backoff.
func (b *binding) getObject(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := store.WithRetry(ctx, func() error {
		resp, err := b.store.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.store.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, err
}

// isNoSuchKey reports whether err is S3's missing-object error.
func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
