package store

import (
	"errors"
	"strings"
)

// Common store operation errors
var (
	// ErrFileNotFound indicates the file metadata record does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrChunkNotFound indicates a chunk record is missing from the store
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrChunkCorrupt indicates a chunk's byte length does not match the
	// size expected from the file metadata
	ErrChunkCorrupt = errors.New("chunk data corrupt")
	// ErrFileCorrupt indicates the reassembled file content does not match
	// the recorded length or checksum
	ErrFileCorrupt = errors.New("file data corrupt")
	// ErrBindingReleased indicates a fetch was issued through a binding
	// that has already been released
	ErrBindingReleased = errors.New("read binding already released")
)

// IsNotFound reports whether err is a missing file or missing chunk.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrChunkNotFound)
}

// IsCorruption reports whether err is an integrity violation detected during
// fetch/verify. Corruption errors are never retried: retrying cannot fix
// stored-data inconsistency.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrChunkCorrupt) || errors.Is(err, ErrFileCorrupt)
}

// IsNetworkError checks if an error is network-related.
// Useful for determining if a fetch should be retried.
//
// Checks for common error strings across backends:
//   - connection refused/reset, dial and i/o timeouts
//   - unexpected EOF, broken pipe, TLS handshake failures
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if IsNotFound(err) || IsCorruption(err) {
		return false
	}

	errStr := strings.ToLower(err.Error())

	networkIndicators := []string{
		"connection",    // connection refused, connection reset, etc.
		"timeout",       // i/o timeout, dial timeout, etc.
		"network",       // network unreachable, network error, etc.
		"eof",           // unexpected EOF
		"broken pipe",   // broken pipe
		"tls handshake", // TLS handshake errors
	}

	for _, indicator := range networkIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
