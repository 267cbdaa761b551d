package dist

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/nwutils/nwget/internal/platform"
)

var hostPlatforms = map[string]Platform{
	"linux":   PlatformLinux,
	"darwin":  PlatformOSX,
	"windows": PlatformWin,
}

var hostArchs = map[string]Arch{
	"386":   ArchIA32,
	"amd64": ArchX64,
	"arm64": ArchARM64,
}

// Target is a validated platform/architecture pair.
type Target struct {
	Platform Platform
	Arch     Arch
}

// ResolveTarget validates a caller-supplied platform and architecture. An
// empty value falls back to the host; a non-empty value must name a member
// of the enumeration exactly and is never replaced by the host default.
func ResolveTarget(rawPlatform, rawArch string, host *platform.Info) (Target, error) {
	p, err := resolvePlatform(rawPlatform, host)
	if err != nil {
		return Target{}, err
	}
	a, err := resolveArch(rawArch, host)
	if err != nil {
		return Target{}, err
	}
	return Target{Platform: p, Arch: a}, nil
}

func resolvePlatform(raw string, host *platform.Info) (Platform, error) {
	if raw == "" {
		if host == nil {
			return "", &InputError{Field: "platform", Reason: "no value given and host is unknown"}
		}
		p, ok := hostPlatforms[host.OS]
		if !ok {
			return "", &InputError{Field: "platform", Value: host.OS, Reason: "host platform has no NW.js build"}
		}
		return p, nil
	}

	switch p := Platform(raw); p {
	case PlatformLinux, PlatformOSX, PlatformWin:
		return p, nil
	}
	return "", &InputError{Field: "platform", Value: raw, Reason: "must be one of linux, osx, win"}
}

func resolveArch(raw string, host *platform.Info) (Arch, error) {
	if raw == "" {
		if host == nil {
			return "", &InputError{Field: "arch", Reason: "no value given and host is unknown"}
		}
		a, ok := hostArchs[host.Arch]
		if !ok {
			return "", &InputError{Field: "arch", Value: host.Arch, Reason: "host architecture has no NW.js build"}
		}
		return a, nil
	}

	switch a := Arch(raw); a {
	case ArchIA32, ArchX64, ArchARM64:
		return a, nil
	}
	return "", &InputError{Field: "arch", Value: raw, Reason: "must be one of ia32, x64, arm64"}
}

// ParseFlavor validates a flavor. An empty string means FlavorNormal.
func ParseFlavor(raw string) (Flavor, error) {
	switch f := Flavor(raw); f {
	case "":
		return FlavorNormal, nil
	case FlavorNormal, FlavorSDK:
		return f, nil
	}
	return "", &InputError{Field: "flavor", Value: raw, Reason: "must be normal or sdk"}
}

// IsAlias reports whether version must be resolved through the manifest.
func IsAlias(version string) bool {
	switch version {
	case AliasLatest, AliasStable, AliasLTS:
		return true
	}
	return false
}

// ValidateVersion accepts a version alias or anything semver can parse.
func ValidateVersion(version string) error {
	if IsAlias(version) {
		return nil
	}
	_, err := NormalizeVersion(version)
	return err
}

// NormalizeVersion parses version as semver and returns it without a
// leading "v" and with missing minor or patch components filled in.
func NormalizeVersion(version string) (string, error) {
	if version == "" {
		return "", &InputError{Field: "version", Reason: "must not be empty"}
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", &InputError{Field: "version", Value: version, Reason: err.Error()}
	}
	return v.String(), nil
}

// NewRequest validates opts and builds a Request. host supplies the default
// platform and architecture and may be nil when both are given.
//
// A version alias is kept as is; it must be replaced through WithVersion
// before the request is acquired.
func NewRequest(opts Options, host *platform.Info) (*Request, error) {
	version := opts.Version
	if version == "" {
		version = AliasLatest
	}
	if !IsAlias(version) {
		v, err := NormalizeVersion(version)
		if err != nil {
			return nil, err
		}
		version = v
	}

	flavor, err := ParseFlavor(opts.Flavor)
	if err != nil {
		return nil, err
	}

	target, err := ResolveTarget(opts.Platform, opts.Arch, host)
	if err != nil {
		return nil, err
	}

	downloadURL := strings.TrimRight(opts.DownloadURL, "/")
	if downloadURL == "" {
		downloadURL = DefaultDownloadURL
	}
	u, err := url.Parse(downloadURL)
	if err != nil || u.Scheme == "" {
		return nil, &InputError{Field: "downloadUrl", Value: opts.DownloadURL, Reason: "must be an absolute URL"}
	}

	ffmpegURL := strings.TrimRight(opts.FFmpegURL, "/")
	if ffmpegURL == "" {
		ffmpegURL = DefaultFFmpegURL
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	// A file: download server is the cache itself.
	if u.Scheme == "file" {
		local, err := url.PathUnescape(strings.TrimPrefix(downloadURL, "file://"))
		if err != nil {
			return nil, &InputError{Field: "downloadUrl", Value: opts.DownloadURL, Reason: err.Error()}
		}
		cacheDir = filepath.FromSlash(local)
	}
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return nil, &InputError{Field: "cacheDir", Value: opts.CacheDir, Reason: err.Error()}
	}

	return &Request{
		Version:     version,
		Flavor:      flavor,
		Platform:    target.Platform,
		Arch:        target.Arch,
		DownloadURL: downloadURL,
		FFmpegURL:   ffmpegURL,
		CacheDir:    cacheDir,
		UseCache:    opts.UseCache,
		FFmpeg:      opts.FFmpeg,
		NativeAddon: opts.NativeAddon,
		ShaSum:      opts.ShaSum,
		Keyring:     opts.Keyring,
	}, nil
}

// WithVersion returns a copy of r with its version replaced by a resolved,
// normalized semver string.
func (r Request) WithVersion(version string) (*Request, error) {
	v, err := NormalizeVersion(version)
	if err != nil {
		return nil, err
	}
	r.Version = v
	return &r, nil
}
