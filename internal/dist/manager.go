package dist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nwutils/nwget/internal/platform"
)

// VersionResolver turns a version alias ("latest", "stable", "lts") into a
// concrete version.
type VersionResolver interface {
	Resolve(ctx context.Context, version string) (string, error)
}

// Config holds the collaborators of a Manager. Every field is optional.
type Config struct {
	// Detector reports the host; defaults to platform.NewDetector().
	Detector platform.Detector
	// Resolver resolves version aliases; without one, aliases are rejected.
	Resolver VersionResolver
	// Extractor expands archives; defaults to NewExtractor().
	Extractor Extractor
	// HTTPClient is used for every download.
	HTTPClient *http.Client
	// Logger receives progress messages.
	Logger Logger
}

// Manager orchestrates acquisition runs.
type Manager struct {
	detector   platform.Detector
	resolver   VersionResolver
	downloader *Downloader
	verifier   *Verifier
	extractor  Extractor
	logger     Logger
}

// NewManager creates a new manager
func NewManager(config Config) (*Manager, error) {
	logger := config.Logger
	if logger == nil {
		logger = defaultLogger()
	}
	detector := config.Detector
	if detector == nil {
		detector = platform.NewDetector()
	}
	extractor := config.Extractor
	if extractor == nil {
		extractor = NewExtractor()
	}

	downloader := NewDownloader(config.HTTPClient, logger)
	return &Manager{
		detector:   detector,
		resolver:   config.Resolver,
		downloader: downloader,
		verifier:   NewVerifier(downloader, logger),
		extractor:  extractor,
		logger:     logger,
	}, nil
}

// Prepare validates opts against the host and resolves a version alias.
// Nothing is written to disk.
func (m *Manager) Prepare(ctx context.Context, opts Options) (*Request, error) {
	var host *platform.Info
	if opts.Platform == "" || opts.Arch == "" {
		info, err := m.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("detect platform: %w", err)
		}
		host = info
	}

	req, err := NewRequest(opts, host)
	if err != nil {
		return nil, err
	}

	if !IsAlias(req.Version) {
		return req, nil
	}
	if m.resolver == nil {
		return nil, &InputError{Field: "version", Value: req.Version, Reason: "no manifest to resolve the alias"}
	}
	resolved, err := m.resolver.Resolve(ctx, req.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve version %s: %w", req.Version, err)
	}
	m.logger.Info("resolved version alias", "alias", req.Version, "version", resolved)
	return req.WithVersion(resolved)
}

// Get validates opts and performs one acquisition run.
func (m *Manager) Get(ctx context.Context, opts Options) error {
	req, err := m.Prepare(ctx, opts)
	if err != nil {
		return err
	}
	return m.Acquire(ctx, *req)
}

// Acquire downloads, verifies and assembles everything req asks for. The
// first failing step aborts the run; steps that already completed are not
// rolled back.
func (m *Manager) Acquire(ctx context.Context, req Request) error {
	start := time.Now()
	m.logger.Info("acquiring NW.js", "version", req.Version, "flavor", req.Flavor,
		"platform", req.Platform, "arch", req.Arch, "cache", req.CacheDir)

	if err := os.MkdirAll(req.CacheDir, 0755); err != nil {
		return &FilesystemError{Op: "create directory", Path: req.CacheDir, Err: err}
	}

	base := req.Identity(KindBase)
	if err := m.invalidate(req, base); err != nil {
		return err
	}

	// Always re-expand so an FFmpeg library placed by an earlier run never
	// survives a run without FFmpeg.
	if err := os.RemoveAll(base.ExpandedPath); err != nil {
		return &FilesystemError{Op: "remove", Path: base.ExpandedPath, Err: err}
	}

	if err := m.fetch(ctx, req.ArtifactURL(KindBase), base); err != nil {
		return err
	}
	if err := m.expand(base.CompressedPath, req.CacheDir); err != nil {
		return err
	}

	verified := []string{base.Name}
	var ffmpeg Identity
	if req.FFmpeg {
		ffmpeg = req.Identity(KindFFmpeg)
		if err := m.invalidate(req, ffmpeg); err != nil {
			return err
		}
		if err := m.fetch(ctx, req.ArtifactURL(KindFFmpeg), ffmpeg); err != nil {
			return err
		}
		verified = append(verified, ffmpeg.Name)
	}

	if err := m.verifier.Verify(ctx, VerifyRequest{
		ManifestURL:  req.ChecksumURL(),
		ManifestPath: req.ChecksumPath(),
		CacheDir:     req.CacheDir,
		Artifacts:    verified,
		Enabled:      req.ShaSum,
		Keyring:      req.Keyring,
	}); err != nil {
		return err
	}

	if req.FFmpeg {
		if err := m.placeFFmpeg(req, base, ffmpeg); err != nil {
			return err
		}
	}

	if req.NativeAddon {
		headers := req.Identity(KindHeaders)
		if err := m.invalidate(req, headers); err != nil {
			return err
		}
		if err := m.fetch(ctx, req.ArtifactURL(KindHeaders), headers); err != nil {
			return err
		}
		if err := m.expand(headers.CompressedPath, req.CacheDir); err != nil {
			return err
		}
	}

	m.logger.Info("NW.js ready", "path", base.ExpandedPath, "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// invalidate removes a cached compressed artifact when the cache is off.
func (m *Manager) invalidate(req Request, id Identity) error {
	if req.UseCache {
		return nil
	}
	if err := os.RemoveAll(id.CompressedPath); err != nil {
		return &FilesystemError{Op: "remove", Path: id.CompressedPath, Err: err}
	}
	return nil
}

// fetch downloads an artifact unless the cache already holds it.
func (m *Manager) fetch(ctx context.Context, url string, id Identity) error {
	if fileExists(id.CompressedPath) {
		m.logger.Debug("using cached artifact", "path", id.CompressedPath)
		return nil
	}
	m.logger.Info("downloading artifact", "name", id.Name, "url", url)
	return m.downloader.Download(ctx, url, id.CompressedPath)
}

func (m *Manager) expand(archivePath, destDir string) error {
	m.logger.Debug("expanding artifact", "archive", archivePath, "dest", destDir)
	if err := m.extractor.Extract(archivePath, destDir); err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	return nil
}

// placeFFmpeg expands the FFmpeg archive into the cache and copies the
// library over the one shipped in the expanded runtime.
func (m *Manager) placeFFmpeg(req Request, base, ffmpeg Identity) error {
	if err := m.expand(ffmpeg.CompressedPath, ffmpeg.ExpandedPath); err != nil {
		return err
	}

	src := filepath.Join(ffmpeg.ExpandedPath, FFmpegLibName(req.Platform))
	dst := FFmpegDest(base.ExpandedPath, req.Platform)
	if err := copyFile(src, dst); err != nil {
		return &FilesystemError{Op: "copy", Path: dst, Err: err}
	}
	m.logger.Info("placed FFmpeg", "path", dst)
	return nil
}

// copyFile copies src over dst, creating dst's parent directory.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
