package dist

import (
	"fmt"
	"path/filepath"
)

// ArtifactName returns the remote file name of an artifact. It is also the
// name under which the artifact is cached.
func ArtifactName(kind Kind, version string, flavor Flavor, p Platform, a Arch) string {
	switch kind {
	case KindFFmpeg:
		return fmt.Sprintf("ffmpeg-%s-%s-%s.zip", version, p, a)
	case KindHeaders:
		return fmt.Sprintf("headers-v%s.tar.gz", version)
	default:
		return baseStem(version, flavor, p, a) + "." + baseExt(p)
	}
}

func baseStem(version string, flavor Flavor, p Platform, a Arch) string {
	sdk := ""
	if flavor == FlavorSDK {
		sdk = "-sdk"
	}
	return fmt.Sprintf("nwjs%s-v%s-%s-%s", sdk, version, p, a)
}

func baseExt(p Platform) string {
	if p == PlatformLinux {
		return "tar.gz"
	}
	return "zip"
}

// Identify derives the cache identity of an artifact. It touches neither
// the network nor the filesystem.
func Identify(kind Kind, version string, flavor Flavor, p Platform, a Arch, cacheDir string) Identity {
	id := Identity{
		Name: ArtifactName(kind, version, flavor, p, a),
	}
	id.CompressedPath = filepath.Join(cacheDir, id.Name)

	switch kind {
	case KindFFmpeg:
		// The FFmpeg archive holds a single library at its root.
		id.ExpandedPath = cacheDir
	case KindHeaders:
		id.ExpandedPath = filepath.Join(cacheDir, "node")
	default:
		id.ExpandedPath = filepath.Join(cacheDir, baseStem(version, flavor, p, a))
	}
	return id
}

// Identity returns the cache identity of an artifact of r.
func (r *Request) Identity(kind Kind) Identity {
	return Identify(kind, r.Version, r.Flavor, r.Platform, r.Arch, r.CacheDir)
}

// ArtifactURL returns the remote location of an artifact of r. The headers
// bundle always comes from DownloadURL, never from the FFmpeg server.
func (r *Request) ArtifactURL(kind Kind) string {
	name := ArtifactName(kind, r.Version, r.Flavor, r.Platform, r.Arch)
	if kind == KindFFmpeg {
		return fmt.Sprintf("%s/%s/%s", r.FFmpegURL, r.Version, name)
	}
	return fmt.Sprintf("%s/v%s/%s", r.DownloadURL, r.Version, name)
}

// ChecksumURL returns the location of the release's checksum manifest.
func (r *Request) ChecksumURL() string {
	return fmt.Sprintf("%s/v%s/SHASUMS256.txt", r.DownloadURL, r.Version)
}

// ChecksumPath returns where the checksum manifest is cached.
func (r *Request) ChecksumPath() string {
	return filepath.Join(r.CacheDir, "shasum", r.Version+".txt")
}

// FFmpegLibName returns the platform file name of the FFmpeg library.
func FFmpegLibName(p Platform) string {
	switch p {
	case PlatformWin:
		return "ffmpeg.dll"
	case PlatformOSX:
		return "libffmpeg.dylib"
	default:
		return "libffmpeg.so"
	}
}

// FFmpegDest returns where the FFmpeg library goes inside an expanded base
// artifact.
func FFmpegDest(expandedBase string, p Platform) string {
	name := FFmpegLibName(p)
	switch p {
	case PlatformWin:
		return filepath.Join(expandedBase, name)
	case PlatformOSX:
		return filepath.Join(expandedBase, "nwjs.app", "Contents", "Frameworks",
			"nwjs Framework.framework", "Versions", "Current", name)
	default:
		return filepath.Join(expandedBase, "lib", name)
	}
}
