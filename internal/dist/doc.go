// Package dist acquires NW.js runtime distributions and assembles them into
// a local cache directory.
//
// A run resolves the target platform and architecture, derives the cache
// file names for every artifact, downloads what the cache does not already
// hold, verifies it against the release's SHASUMS256.txt and expands it.
// Two companion artifacts are optional: the community FFmpeg build with
// proprietary codecs, and the Node headers tarball needed to build native
// addons.
//
// # Cache layout
//
//	<cache>/nwjs-sdk-v0.105.0-linux-x64.tar.gz   compressed base artifact
//	<cache>/nwjs-sdk-v0.105.0-linux-x64/         expanded base artifact
//	<cache>/ffmpeg-0.105.0-linux-x64.zip         companion FFmpeg archive
//	<cache>/headers-v0.105.0.tar.gz              Node headers archive
//	<cache>/node/                                expanded headers
//	<cache>/shasum/0.105.0.txt                   checksum manifest
//
// The expanded base directory is removed and re-expanded on every run, so a
// previously placed FFmpeg library never outlives the run that asked for it.
//
// # Safety
//
// Downloads are written to "<dest>.part" and renamed into place only after
// the body was fully received. Any failure, including cancellation of the
// context, removes the partial file. A run is never retried automatically;
// re-running the same request repairs whatever a failed run left behind.
//
// # Usage
//
//	mgr, err := dist.NewManager(dist.Config{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	err = mgr.Get(ctx, dist.Options{
//	    Version:  "0.105.0",
//	    Flavor:   "sdk",
//	    CacheDir: "./cache",
//	    UseCache: true,
//	    ShaSum:   true,
//	})
package dist
