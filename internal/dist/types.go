package dist

// Flavor selects the NW.js build variant.
type Flavor string

const (
	FlavorNormal Flavor = "normal"
	FlavorSDK    Flavor = "sdk"
)

// Platform is a target platform in NW.js artifact naming.
type Platform string

const (
	PlatformLinux Platform = "linux"
	PlatformOSX   Platform = "osx"
	PlatformWin   Platform = "win"
)

// Arch is a target architecture in NW.js artifact naming.
type Arch string

const (
	ArchIA32  Arch = "ia32"
	ArchX64   Arch = "x64"
	ArchARM64 Arch = "arm64"
)

// Version aliases resolved through the versions manifest.
const (
	AliasLatest = "latest"
	AliasStable = "stable"
	AliasLTS    = "lts"
)

const (
	// DefaultDownloadURL is the official NW.js download server.
	DefaultDownloadURL = "https://dl.nwjs.io"
	// DefaultFFmpegURL serves the community FFmpeg builds with proprietary codecs.
	DefaultFFmpegURL = "https://github.com/nwjs-ffmpeg-prebuilt/nwjs-ffmpeg-prebuilt/releases/download"
	// DefaultCacheDir is used when no cache directory is given.
	DefaultCacheDir = "./cache"
)

// Options is the raw, unvalidated input of a run. Empty Platform and Arch
// default to the host; every other empty string takes the documented default.
type Options struct {
	Version     string
	Flavor      string
	Platform    string
	Arch        string
	DownloadURL string
	FFmpegURL   string
	CacheDir    string
	// UseCache false deletes cached compressed artifacts before fetching.
	UseCache bool
	// FFmpeg fetches the community FFmpeg build and places it in the runtime.
	FFmpeg bool
	// NativeAddon fetches and expands the Node headers tarball.
	NativeAddon bool
	// ShaSum enables checksum verification.
	ShaSum bool
	// Keyring is an optional OpenPGP public keyring used to verify the
	// signature of the checksum manifest.
	Keyring string
}

// Request is a validated acquisition request. It is produced by NewRequest
// and treated as immutable for the duration of a run.
type Request struct {
	Version     string
	Flavor      Flavor
	Platform    Platform
	Arch        Arch
	DownloadURL string
	FFmpegURL   string
	CacheDir    string
	UseCache    bool
	FFmpeg      bool
	NativeAddon bool
	ShaSum      bool
	Keyring     string
}

// Kind identifies one of the artifacts a run can fetch.
type Kind int

const (
	KindBase Kind = iota
	KindFFmpeg
	KindHeaders
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "nwjs"
	case KindFFmpeg:
		return "ffmpeg"
	case KindHeaders:
		return "headers"
	default:
		return "unknown"
	}
}

// Identity is the cache location of one artifact.
type Identity struct {
	// Name is the remote and cached file name of the compressed artifact.
	Name string
	// CompressedPath is where the compressed artifact is cached.
	CompressedPath string
	// ExpandedPath is the directory the artifact decompresses into.
	ExpandedPath string
}
