// Package config loads nwget settings from a sandboxed Lua file and layers
// them over the built-in defaults.
//
// # Schema
//
// A config file assigns a global nwget table. Every key is optional:
//
//	nwget = {
//	  version = "0.105.0",          -- or "latest", "stable", "lts"
//	  flavor = "sdk",               -- "normal" or "sdk"
//	  platform = "linux",           -- "linux", "osx" or "win"; host when unset
//	  arch = "x64",                 -- "ia32", "x64" or "arm64"; host when unset
//	  download_url = "https://dl.nwjs.io",
//	  ffmpeg_url = "https://github.com/nwjs-ffmpeg-prebuilt/nwjs-ffmpeg-prebuilt/releases/download",
//	  manifest_url = "https://nwjs.io/versions.json",
//	  cache_dir = "./cache",
//	  cache = true,
//	  ffmpeg = false,
//	  native_addon = false,
//	  shasum = true,
//	  keyring = "nwjs-release.gpg", -- verify SHASUMS256.txt.asc
//	  log_level = "info",
//	}
//
// A value of the wrong Lua type is reported as a *dist.InputError naming
// the key. Unknown keys are logged and ignored.
//
// # Platform conditionals
//
// A read-only platform table describes the host the config is evaluated on:
//
//	nwget = {
//	  flavor = platform.is_linux and "sdk" or "normal",
//	  arch = platform.when(platform.is_apple_silicon, "arm64"),
//	}
//
// # Sandbox
//
// Configs run in a restricted gopher-lua VM: os, io, debug, package,
// require, the load family and the raw/metatable functions are removed.
// The string, table and math libraries stay available. Files larger than
// MaxConfigSize are rejected and evaluation stops when the context is done.
//
// # Usage
//
//	parser := config.NewParser(platform.NewDetector()).WithLogger(logger)
//	file, err := parser.ParseFile(ctx, "nwget.lua")
//	if err != nil {
//	    return err
//	}
//	settings := config.Defaults()
//	file.Apply(&settings)
package config
