package dist

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// InputError reports a caller-supplied option that failed validation. It is
// always returned before any filesystem or network access.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return errdefs.ErrInvalidArgument }

// DownloadError reports a non-200 response or a transport failure. When it
// is returned no partial file is left at the destination.
type DownloadError struct {
	URL        string
	StatusCode int // zero for transport errors
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{errdefs.ErrUnavailable}
	}
	return []error{errdefs.ErrUnavailable, e.Err}
}

// ChecksumMismatchError reports an artifact whose SHA-256 digest differs from
// the one listed in the release manifest.
type ChecksumMismatchError struct {
	Artifact string
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Artifact, e.Expected, e.Actual)
}

func (e *ChecksumMismatchError) Unwrap() error { return errdefs.ErrDataLoss }

// ChecksumMissingError reports a downloaded artifact that the release
// manifest has no entry for.
type ChecksumMissingError struct {
	Artifact string
}

func (e *ChecksumMissingError) Error() string {
	return fmt.Sprintf("checksum not found for %s", e.Artifact)
}

func (e *ChecksumMissingError) Unwrap() error { return errdefs.ErrNotFound }

// SignatureError reports a checksum manifest whose OpenPGP signature could
// not be verified against the configured keyring.
type SignatureError struct {
	Manifest string
	Err      error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("verify signature of %s: %v", e.Manifest, e.Err)
}

func (e *SignatureError) Unwrap() []error {
	return []error{errdefs.ErrUnauthenticated, e.Err}
}

// FilesystemError reports a failed directory creation, removal or copy.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() []error {
	return []error{errdefs.ErrInternal, e.Err}
}

// ExtractionError wraps an error returned by the Extractor unchanged.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
