// Package cerrors defines the shared error taxonomy used across every
// container parser so callers can errors.Is against a stable kind
// regardless of which format produced it.
package cerrors

import "errors"

// Error taxonomy kinds from the core's error handling design. Every parser
// package wraps one of these sentinels with fmt.Errorf("...: %w", err) so
// callers can errors.Is against a stable kind regardless of container
// format.
var (
	ErrNotFound              = errors.New("container: not found")
	ErrUnrecognizedContainer = errors.New("container: unrecognized container")
	ErrMissingSegment        = errors.New("container: missing segment")
	ErrMalformedHeader       = errors.New("container: malformed header")
	ErrOffsetOutOfRange      = errors.New("container: offset out of range")
	ErrDecompressionFailed   = errors.New("container: decompression failed")
	ErrUnsupportedAlgorithm  = errors.New("container: unsupported hash algorithm")
	ErrIOFailed              = errors.New("container: io failure")
	ErrPathTraversalBlocked  = errors.New("container: path traversal blocked")
	ErrNoUsefulCompanionData = errors.New("container: no useful companion data")
)
