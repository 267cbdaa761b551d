package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nwutils/nwget/internal/dist"
	"github.com/nwutils/nwget/internal/platform"
)

// Parser evaluates Lua config files with host platform information.
type Parser struct {
	detector platform.Detector
	logger   dist.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: nopLogger{}}
}

// WithLogger returns the parser with logger attached.
func (p *Parser) WithLogger(logger dist.Logger) *Parser {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// ParseFile reads and evaluates the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if info.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, info.Size(), MaxConfigSize),
		}
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	p.logger.Debug("parsing config", "path", path)
	return p.ParseString(ctx, string(code))
}

// ParseString evaluates a Lua config held in memory.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*File, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) && apiErr.Type == lua.ApiErrorSyntax {
			return nil, &ParseError{Message: "Lua syntax error", Detail: err.Error()}
		}
		return nil, &ParseError{Message: "Lua runtime error", Detail: err.Error()}
	}

	return p.extractFile(L)
}

// extractFile reads the global nwget table.
func (p *Parser) extractFile(L *lua.LState) (*File, error) {
	global := L.GetGlobal(luaGlobalNwget)
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalNwget),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	r := fieldReader{table: table}
	f := &File{
		Version:     r.str(luaFieldVersion),
		Flavor:      r.str(luaFieldFlavor),
		Platform:    r.str(luaFieldPlatform),
		Arch:        r.str(luaFieldArch),
		DownloadURL: r.str(luaFieldDownload),
		FFmpegURL:   r.str(luaFieldFFmpegURL),
		ManifestURL: r.str(luaFieldManifest),
		CacheDir:    r.str(luaFieldCacheDir),
		Cache:       r.boolean(luaFieldCache),
		FFmpeg:      r.boolean(luaFieldFFmpeg),
		NativeAddon: r.boolean(luaFieldNative),
		ShaSum:      r.boolean(luaFieldShaSum),
		Keyring:     r.str(luaFieldKeyring),
		LogLevel:    r.str(luaFieldLogLevel),
	}
	if r.err != nil {
		return nil, r.err
	}

	if unknown := unknownKeys(table); len(unknown) > 0 {
		p.logger.Warn("ignoring unknown config keys", "keys", strings.Join(unknown, ", "))
	}
	return f, nil
}

// fieldReader extracts typed fields and keeps the first type error.
type fieldReader struct {
	table *lua.LTable
	err   error
}

func (r *fieldReader) str(key string) *string {
	v := r.table.RawGetString(key)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LString:
		s := string(v)
		return &s
	case lua.LNumber:
		// 0.80 would read back as "0.8", a different release.
		r.fail(key, v, "must be a string, quote the value")
		return nil
	}
	r.fail(key, v, "must be a string")
	return nil
}

func (r *fieldReader) boolean(key string) *bool {
	v := r.table.RawGetString(key)
	switch v := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		b := bool(v)
		return &b
	}
	r.fail(key, v, "must be a boolean")
	return nil
}

func (r *fieldReader) fail(key string, v lua.LValue, reason string) {
	if r.err == nil {
		r.err = &dist.InputError{Field: luaGlobalNwget + "." + key, Value: v.Type().String(), Reason: reason}
	}
}

var knownKeys = map[string]bool{
	luaFieldVersion: true, luaFieldFlavor: true, luaFieldPlatform: true, luaFieldArch: true,
	luaFieldDownload: true, luaFieldFFmpegURL: true, luaFieldManifest: true, luaFieldCacheDir: true,
	luaFieldCache: true, luaFieldFFmpeg: true, luaFieldNative: true, luaFieldShaSum: true,
	luaFieldKeyring: true, luaFieldLogLevel: true,
}

func unknownKeys(table *lua.LTable) []string {
	var unknown []string
	table.ForEach(func(key, _ lua.LValue) {
		if s, ok := key.(lua.LString); !ok || !knownKeys[string(s)] {
			unknown = append(unknown, key.String())
		}
	})
	sort.Strings(unknown)
	return unknown
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
