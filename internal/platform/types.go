// Package platform detects the host operating system and architecture and
// exposes them to Lua configuration files as a read-only table.
//
// Detection uses runtime.GOOS/GOARCH and, on Linux, gopsutil for the
// distribution. Mapping the host onto NW.js artifact names is not done here;
// see package dist.
package platform

import "context"

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains platform detection information.
type Info struct {
	OS       string // GOOS: "linux", "darwin", "windows", ...
	Arch     string // normalized GOARCH: "amd64", "arm64", "386", ...
	ArchRaw  string // GOARCH as reported, or the kernel name ("x86_64")
	Platform string // distro ID (Linux only, e.g. "ubuntu")
	Family   string // canonical distro family (Linux only)
	Version  string // distro version (Linux only)
}

// Distro contains Linux distribution information.
type Distro struct {
	ID      string
	Family  string
	Version string
}

// GetDistro returns distro information, or nil off Linux or when
// distribution detection failed.
func (i *Info) GetDistro() *Distro {
	if i.OS != "linux" || i.Platform == "" {
		return nil
	}
	return &Distro{
		ID:      i.Platform,
		Family:  i.Family,
		Version: i.Version,
	}
}

func (i *Info) IsLinux() bool   { return i.OS == "linux" }
func (i *Info) IsMacOS() bool   { return i.OS == "darwin" }
func (i *Info) IsWindows() bool { return i.OS == "windows" }
func (i *Info) IsAMD64() bool   { return i.Arch == "amd64" }
func (i *Info) IsARM64() bool   { return i.Arch == "arm64" }
func (i *Info) Is386() bool     { return i.Arch == "386" }

// IsAppleSilicon returns true on macOS + arm64.
func (i *Info) IsAppleSilicon() bool {
	return i.IsMacOS() && i.IsARM64()
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. It is used when the caller already
// knows the host (tests, cross-platform dry runs).
type StaticDetector struct {
	Info *Info
}

// Detect returns a copy of the configured Info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := *s.Info
	return &info, nil
}
