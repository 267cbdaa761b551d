package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector against the running host.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect reports the host OS and architecture. On Linux it also asks
// gopsutil for the distribution; failing that lookup is not an error, the
// distro fields are simply left empty.
//
// Detect never rejects an architecture. Whether the host can be served is
// decided by the caller that maps Info onto its own vocabulary.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:      runtime.GOOS,
		Arch:    normalizeArch(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	if kernelArch, err := host.KernelArch(); err == nil && kernelArch != "" {
		info.ArchRaw = kernelArch
	}

	if runtime.GOOS == "linux" {
		id, family, version, err := host.PlatformInformationWithContext(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		id = normalizePlatform(id)
		if id != "" {
			info.Platform = id
			info.Family = mapFamily(family)
			info.Version = normalizePlatform(version)
		}
	}

	return info, nil
}
