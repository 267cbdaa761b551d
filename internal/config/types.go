package config

import (
	"github.com/nwutils/nwget/internal/dist"
)

// Settings is everything a run needs: the acquisition options plus the
// knobs that live outside the pipeline.
type Settings struct {
	dist.Options

	// ManifestURL locates versions.json for alias resolution.
	ManifestURL string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Defaults returns the settings used when neither a config file nor a flag
// says otherwise.
func Defaults() Settings {
	return Settings{
		Options: dist.Options{
			Version:     dist.AliasLatest,
			Flavor:      string(dist.FlavorNormal),
			DownloadURL: dist.DefaultDownloadURL,
			FFmpegURL:   dist.DefaultFFmpegURL,
			CacheDir:    dist.DefaultCacheDir,
			UseCache:    true,
			ShaSum:      true,
		},
		ManifestURL: defaultManifestURL,
		LogLevel:    defaultLogLevel,
	}
}

// File holds the values a config file set. A nil field was not set and
// leaves the corresponding setting alone.
type File struct {
	Version     *string
	Flavor      *string
	Platform    *string
	Arch        *string
	DownloadURL *string
	FFmpegURL   *string
	ManifestURL *string
	CacheDir    *string
	Cache       *bool
	FFmpeg      *bool
	NativeAddon *bool
	ShaSum      *bool
	Keyring     *string
	LogLevel    *string
}

// Apply overlays the values set in f onto s.
func (f *File) Apply(s *Settings) {
	setString(&s.Version, f.Version)
	setString(&s.Flavor, f.Flavor)
	setString(&s.Platform, f.Platform)
	setString(&s.Arch, f.Arch)
	setString(&s.DownloadURL, f.DownloadURL)
	setString(&s.FFmpegURL, f.FFmpegURL)
	setString(&s.ManifestURL, f.ManifestURL)
	setString(&s.CacheDir, f.CacheDir)
	setBool(&s.UseCache, f.Cache)
	setBool(&s.FFmpeg, f.FFmpeg)
	setBool(&s.NativeAddon, f.NativeAddon)
	setBool(&s.ShaSum, f.ShaSum)
	setString(&s.Keyring, f.Keyring)
	setString(&s.LogLevel, f.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
