package dist

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// VerifyRequest describes one checksum verification.
type VerifyRequest struct {
	// ManifestURL is the remote SHASUMS256.txt.
	ManifestURL string
	// ManifestPath is where the manifest is cached.
	ManifestPath string
	// CacheDir holds the artifacts named in Artifacts.
	CacheDir string
	// Artifacts are the cached file names that must match the manifest.
	Artifacts []string
	// Enabled false skips verification without touching the network.
	Enabled bool
	// Keyring optionally names an OpenPGP keyring; when set the manifest's
	// detached signature (ManifestURL + ".asc") must verify against it.
	Keyring string
}

// Verifier checks downloaded artifacts against a release checksum manifest.
type Verifier struct {
	downloader *Downloader
	logger     Logger
}

// NewVerifier creates a verifier fetching manifests through downloader.
func NewVerifier(downloader *Downloader, logger Logger) *Verifier {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Verifier{downloader: downloader, logger: logger}
}

// Verify fetches the manifest and compares the SHA-256 digest of every
// listed artifact with its entry. It returns a *ChecksumMismatchError or a
// *ChecksumMissingError naming the first artifact that fails.
func (v *Verifier) Verify(ctx context.Context, req VerifyRequest) error {
	if !req.Enabled {
		v.logger.Debug("checksum verification disabled")
		return nil
	}

	// The manifest is small and authoritative; never trust a cached copy.
	if err := os.Remove(req.ManifestPath); err != nil && !os.IsNotExist(err) {
		return &FilesystemError{Op: "remove", Path: req.ManifestPath, Err: err}
	}
	if err := v.downloader.Download(ctx, req.ManifestURL, req.ManifestPath); err != nil {
		return fmt.Errorf("fetch checksum manifest: %w", err)
	}

	if req.Keyring != "" {
		if err := v.verifyManifestSignature(ctx, req); err != nil {
			return err
		}
	}

	sums, err := parseChecksums(req.ManifestPath)
	if err != nil {
		return err
	}

	for _, name := range req.Artifacts {
		expected, ok := sums[name]
		if !ok {
			return &ChecksumMissingError{Artifact: name}
		}

		actual, err := calculateSHA256(filepath.Join(req.CacheDir, name))
		if err != nil {
			return &FilesystemError{Op: "hash", Path: filepath.Join(req.CacheDir, name), Err: err}
		}

		if !strings.EqualFold(actual, expected) {
			return &ChecksumMismatchError{Artifact: name, Expected: expected, Actual: actual}
		}
		v.logger.Debug("checksum verified", "artifact", name, "sha256", actual)
	}

	return nil
}

func (v *Verifier) verifyManifestSignature(ctx context.Context, req VerifyRequest) error {
	sigURL := req.ManifestURL + ".asc"
	sigPath := req.ManifestPath + ".asc"

	if err := os.Remove(sigPath); err != nil && !os.IsNotExist(err) {
		return &FilesystemError{Op: "remove", Path: sigPath, Err: err}
	}
	if err := v.downloader.Download(ctx, sigURL, sigPath); err != nil {
		return fmt.Errorf("fetch manifest signature: %w", err)
	}

	if err := verifyDetachedSignature(req.Keyring, req.ManifestPath, sigPath); err != nil {
		return &SignatureError{Manifest: req.ManifestPath, Err: err}
	}
	v.logger.Info("checksum manifest signature verified", "keyring", req.Keyring)
	return nil
}

// parseChecksums reads "hash  filename" lines into a map keyed by file
// name. Binary-mode markers ("*name") and directory prefixes are dropped.
func parseChecksums(manifestPath string) (map[string]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, &FilesystemError{Op: "open", Path: manifestPath, Err: err}
	}
	defer file.Close()

	sums := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimPrefix(parts[1], "*")
		sums[name] = parts[0]
		if base := path.Base(name); base != name {
			if _, ok := sums[base]; !ok {
				sums[base] = parts[0]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &FilesystemError{Op: "read", Path: manifestPath, Err: err}
	}
	return sums, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
