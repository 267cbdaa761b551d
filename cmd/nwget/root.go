package main

import (
	"io"

	"github.com/spf13/cobra"
)

const rootDesc = `nwget downloads NW.js runtimes into a local cache.

It fetches the runtime for a version, flavor, platform and architecture,
verifies it against the release's SHASUMS256.txt and expands it. It can
also place the community FFmpeg build with proprietary codecs into the
runtime and fetch the Node headers needed to build native addons.
`

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nwget",
		Short:         "Download and cache NW.js runtimes",
		Long:          rootDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.AddCommand(
		newGetCmd(out, errOut),
		newInitCmd(out),
		newVersionCmd(out),
	)
	return cmd
}
