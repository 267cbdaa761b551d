package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Generator generates Lua configuration code from Settings.
type Generator struct {
	indent string // Indentation string (default: two spaces)
	now    func() time.Time
}

// NewGenerator creates a new Lua config generator.
func NewGenerator() *Generator {
	return &Generator{
		indent: "  ",
		now:    time.Now,
	}
}

// Generate renders s as a config file that ParseString reads back into the
// same settings. Empty platform and arch are written as comments showing
// how to pick them per host.
func (g *Generator) Generate(s Settings) string {
	var buf bytes.Buffer

	buf.WriteString("-- nwget configuration\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().Format(time.RFC3339))
	buf.WriteString("\n\n")

	buf.WriteString(luaGlobalNwget + " = {\n")

	g.writeString(&buf, luaFieldVersion, s.Version)
	g.writeString(&buf, luaFieldFlavor, s.Flavor)
	if s.Platform == "" {
		g.writeComment(&buf, luaFieldPlatform+` = platform.is_macos and "osx" or nil,`)
	} else {
		g.writeString(&buf, luaFieldPlatform, s.Platform)
	}
	if s.Arch == "" {
		g.writeComment(&buf, luaFieldArch+` = platform.when(platform.is_apple_silicon, "arm64"),`)
	} else {
		g.writeString(&buf, luaFieldArch, s.Arch)
	}
	buf.WriteString("\n")

	g.writeString(&buf, luaFieldDownload, s.DownloadURL)
	g.writeString(&buf, luaFieldFFmpegURL, s.FFmpegURL)
	g.writeString(&buf, luaFieldManifest, s.ManifestURL)
	g.writeString(&buf, luaFieldCacheDir, s.CacheDir)
	buf.WriteString("\n")

	g.writeBool(&buf, luaFieldCache, s.UseCache)
	g.writeBool(&buf, luaFieldFFmpeg, s.FFmpeg)
	g.writeBool(&buf, luaFieldNative, s.NativeAddon)
	g.writeBool(&buf, luaFieldShaSum, s.ShaSum)
	if s.Keyring == "" {
		g.writeComment(&buf, luaFieldKeyring+` = "nwjs-release.gpg",`)
	} else {
		g.writeString(&buf, luaFieldKeyring, s.Keyring)
	}
	g.writeString(&buf, luaFieldLogLevel, s.LogLevel)

	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeString(buf *bytes.Buffer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(buf, "%s%s = %s,\n", g.indent, key, g.quoteLuaString(value))
}

func (g *Generator) writeBool(buf *bytes.Buffer, key string, value bool) {
	fmt.Fprintf(buf, "%s%s = %t,\n", g.indent, key, value)
}

func (g *Generator) writeComment(buf *bytes.Buffer, line string) {
	fmt.Fprintf(buf, "%s-- %s\n", g.indent, line)
}

// quoteLuaString quotes a string for Lua, handling special characters.
func (g *Generator) quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // Escape backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
