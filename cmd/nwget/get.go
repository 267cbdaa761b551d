package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nwutils/nwget/internal/config"
	"github.com/nwutils/nwget/internal/dist"
	"github.com/nwutils/nwget/internal/logging"
	"github.com/nwutils/nwget/internal/manifest"
	"github.com/nwutils/nwget/internal/platform"
)

const getDesc = `Download an NW.js runtime and expand it into the cache directory.

Values come from the built-in defaults, then the Lua file named by --config,
then the flags given on the command line. On success the path of the
expanded runtime is printed.
`

type getOptions struct {
	configPath string
	flags      config.Settings
}

func newGetCmd(out, errOut io.Writer) *cobra.Command {
	o := &getOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download an NW.js runtime",
		Long:  getDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), cmd.Flags(), out, errOut)
		},
	}

	o.addFlags(cmd.Flags())
	return cmd
}

func (o *getOptions) addFlags(f *pflag.FlagSet) {
	d := config.Defaults()

	f.StringVarP(&o.configPath, "config", "c", "", "Lua config file")
	f.StringVar(&o.flags.Version, "version", d.Version, `runtime version, or "latest", "stable", "lts"`)
	f.StringVar(&o.flags.Flavor, "flavor", d.Flavor, `"normal" or "sdk"`)
	f.StringVar(&o.flags.Platform, "platform", "", `"linux", "osx" or "win" (default: host)`)
	f.StringVar(&o.flags.Arch, "arch", "", `"ia32", "x64" or "arm64" (default: host)`)
	f.StringVar(&o.flags.DownloadURL, "download-url", d.DownloadURL, "download server, http(s) or file")
	f.StringVar(&o.flags.FFmpegURL, "ffmpeg-url", d.FFmpegURL, "FFmpeg download server")
	f.StringVar(&o.flags.ManifestURL, "manifest-url", d.ManifestURL, "versions manifest used to resolve aliases")
	f.StringVar(&o.flags.CacheDir, "cache-dir", d.CacheDir, "cache directory")
	f.BoolVar(&o.flags.UseCache, "cache", d.UseCache, "reuse cached archives")
	f.BoolVar(&o.flags.FFmpeg, "ffmpeg", d.FFmpeg, "replace the bundled FFmpeg with the build with proprietary codecs")
	f.BoolVar(&o.flags.NativeAddon, "native-addon", d.NativeAddon, "download the Node headers for native addons")
	f.BoolVar(&o.flags.ShaSum, "shasum", d.ShaSum, "verify checksums against SHASUMS256.txt")
	f.StringVar(&o.flags.Keyring, "keyring", "", "OpenPGP keyring to verify SHASUMS256.txt.asc")
	f.StringVar(&o.flags.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error")
}

// settings layers the config file and the changed flags over the defaults.
func (o *getOptions) settings(ctx context.Context, f *pflag.FlagSet, detector platform.Detector, logger *logging.Logger) (config.Settings, error) {
	s := config.Defaults()

	if o.configPath != "" {
		file, err := config.NewParser(detector).WithLogger(logger.With("config", o.configPath)).ParseFile(ctx, o.configPath)
		if err != nil {
			return s, err
		}
		file.Apply(&s)
	}

	overlay := map[string]func(){
		"version":      func() { s.Version = o.flags.Version },
		"flavor":       func() { s.Flavor = o.flags.Flavor },
		"platform":     func() { s.Platform = o.flags.Platform },
		"arch":         func() { s.Arch = o.flags.Arch },
		"download-url": func() { s.DownloadURL = o.flags.DownloadURL },
		"ffmpeg-url":   func() { s.FFmpegURL = o.flags.FFmpegURL },
		"manifest-url": func() { s.ManifestURL = o.flags.ManifestURL },
		"cache-dir":    func() { s.CacheDir = o.flags.CacheDir },
		"cache":        func() { s.UseCache = o.flags.UseCache },
		"ffmpeg":       func() { s.FFmpeg = o.flags.FFmpeg },
		"native-addon": func() { s.NativeAddon = o.flags.NativeAddon },
		"shasum":       func() { s.ShaSum = o.flags.ShaSum },
		"keyring":      func() { s.Keyring = o.flags.Keyring },
		"log-level":    func() { s.LogLevel = o.flags.LogLevel },
	}
	f.Visit(func(flag *pflag.Flag) {
		if apply, ok := overlay[flag.Name]; ok {
			apply()
		}
	})
	return s, nil
}

func (o *getOptions) run(ctx context.Context, f *pflag.FlagSet, out, errOut io.Writer) error {
	detector := platform.NewDetector()

	// The config file may change the level, so parse it with the flag's.
	bootLogger, err := newLogger(errOut, o.flags.LogLevel)
	if err != nil {
		return err
	}
	s, err := o.settings(ctx, f, detector, bootLogger)
	if err != nil {
		return err
	}
	logger, err := newLogger(errOut, s.LogLevel)
	if err != nil {
		return err
	}

	mgr, err := dist.NewManager(dist.Config{
		Detector: detector,
		Resolver: manifest.NewResolver(s.ManifestURL, nil),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	req, err := mgr.Prepare(ctx, s.Options)
	if err != nil {
		return err
	}
	if err := mgr.Acquire(ctx, *req); err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, req.Identity(dist.KindBase).ExpandedPath)
	return err
}

func newLogger(out io.Writer, level string) (*logging.Logger, error) {
	logger, err := logging.New(out, level)
	if err != nil {
		return nil, &dist.InputError{Field: "log-level", Value: level, Reason: "must be debug, info, warn or error"}
	}
	return logger, nil
}
