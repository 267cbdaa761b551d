package config

// Lua schema field names and globals
const (
	luaGlobalNwget     = "nwget"
	luaFieldVersion    = "version"
	luaFieldFlavor     = "flavor"
	luaFieldPlatform   = "platform"
	luaFieldArch       = "arch"
	luaFieldDownload   = "download_url"
	luaFieldFFmpegURL  = "ffmpeg_url"
	luaFieldManifest   = "manifest_url"
	luaFieldCacheDir   = "cache_dir"
	luaFieldCache      = "cache"
	luaFieldFFmpeg     = "ffmpeg"
	luaFieldNative     = "native_addon"
	luaFieldShaSum     = "shasum"
	luaFieldKeyring    = "keyring"
	luaFieldLogLevel   = "log_level"
	defaultLogLevel    = "info"
	defaultManifestURL = "https://nwjs.io/versions.json"
)

// Resource limits applied to config files.
const (
	// MaxConfigSize is the largest config file ParseFile accepts.
	MaxConfigSize = 1 << 20
	// callStackSize bounds Lua recursion.
	callStackSize = 256
	// registrySize is the initial Lua registry size.
	registrySize = 1024 * 8
)
