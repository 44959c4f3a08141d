// Package constants centralizes the size defaults shared across the store
// backends, the streaming engine, and the CLI.
package constants

const (
	// DefaultChunkSize - chunk record size used when writing files into a
	// store and assumed by the CLI when none is configured (255 KB).
	//
	// Trade-offs:
	// - Smaller chunks = more point lookups but finer-grained seeks
	// - Larger chunks = fewer lookups but more memory per buffered chunk
	DefaultChunkSize = 255 * 1024

	// CopyBufferSize - size of the pooled buffers used by bulk copy (1 MB)
	CopyBufferSize = 1 * 1024 * 1024

	// MinChunkSize - smallest chunk size the CLI accepts (1 KB)
	MinChunkSize = 1 * 1024

	// MaxChunkSize - largest chunk size the CLI accepts (16 MB)
	// Caps memory usage per buffered chunk.
	MaxChunkSize = 16 * 1024 * 1024
)

// Concurrency bounds for multi-file downloads
const (
	// DefaultMaxConcurrent - default concurrent file downloads
	DefaultMaxConcurrent = 5

	// MinMaxConcurrent / MaxMaxConcurrent - allowed --max-concurrent range
	MinMaxConcurrent = 1
	MaxMaxConcurrent = 32
)

// Retry behavior for transient backend failures
const (
	// MaxFetchRetries - attempts per chunk fetch before giving up
	MaxFetchRetries = 5

	// RetryBaseDelayMs - base delay for exponential backoff (milliseconds)
	RetryBaseDelayMs = 200
)
