package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.bug.st/downloader/v2"
)

const (
	// DefaultTimeout bounds a whole HTTP request, body included.
	DefaultTimeout = 30 * time.Minute
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "nwget/1.0"
	// DefaultProgressInterval is how often download progress is logged.
	DefaultProgressInterval = 2 * time.Second

	partSuffix = ".part"
)

var errEmptyBody = errors.New("empty response body")

// Downloader streams remote resources to local files. http and https URLs go
// through go.bug.st/downloader, file URLs are copied from disk.
type Downloader struct {
	client           *http.Client
	userAgent        string
	progressInterval time.Duration
	logger           Logger
}

// NewDownloader creates a downloader. A nil client gets DefaultTimeout and a
// ten redirect limit; a nil logger discards messages.
func NewDownloader(client *http.Client, logger Logger) *Downloader {
	if client == nil {
		client = &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	if logger == nil {
		logger = defaultLogger()
	}
	return &Downloader{
		client:           client,
		userAgent:        DefaultUserAgent,
		progressInterval: DefaultProgressInterval,
		logger:           logger,
	}
}

// Download fetches rawURL into destPath.
//
// The body is streamed into destPath+".part" and renamed into place once it
// is complete. On any failure, including cancellation of ctx, the partial
// file is removed and destPath is left untouched. Cancellation removes the
// partial file as soon as ctx is done, not only when the transfer notices.
func (d *Downloader) Download(ctx context.Context, rawURL, destPath string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &DownloadError{URL: rawURL, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return &FilesystemError{Op: "create directory", Path: filepath.Dir(destPath), Err: err}
	}

	partPath := destPath + partSuffix
	removePart := func() {
		_ = os.Remove(partPath)
	}
	stop := context.AfterFunc(ctx, removePart)

	d.logger.Debug("downloading", "url", rawURL, "dest", destPath)

	switch u.Scheme {
	case "http", "https":
		err = d.fetchHTTP(ctx, rawURL, partPath)
	case "file":
		err = d.fetchFile(ctx, rawURL, partPath)
	default:
		err = &DownloadError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	// stop reports false once the cancellation cleanup has been scheduled.
	if !stop() && err == nil {
		err = &DownloadError{URL: rawURL, Err: ctx.Err()}
	}
	if err == nil && !fileExists(partPath) {
		err = &DownloadError{URL: rawURL, Err: errEmptyBody}
	}
	if err != nil {
		removePart()
		return err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		removePart()
		return &FilesystemError{Op: "rename", Path: partPath, Err: err}
	}
	return nil
}

func (d *Downloader) fetchHTTP(ctx context.Context, rawURL, partPath string) error {
	client := *d.client
	client.Transport = &userAgentTransport{base: client.Transport, agent: d.userAgent}
	config := downloader.Config{HttpClient: client}

	// NoResume: a stale .part from an interrupted run is truncated, never
	// continued with a Range request.
	dl, err := downloader.DownloadWithConfigAndContext(ctx, partPath, rawURL, config, downloader.NoResume)
	if err != nil {
		return &DownloadError{URL: rawURL, Err: transferCause(ctx, err)}
	}
	if dl.Resp.StatusCode != http.StatusOK {
		_ = dl.Close()
		return &DownloadError{URL: rawURL, StatusCode: dl.Resp.StatusCode}
	}

	// -1 when the server sent no Content-Length.
	size := dl.Size()
	err = dl.RunAndPoll(func(current int64) {
		if size > 0 {
			d.logger.Debug("download progress", "url", rawURL,
				"completed", humanize.Bytes(uint64(current)), "total", humanize.Bytes(uint64(size)))
		}
	}, d.progressInterval)
	if err != nil {
		return &DownloadError{URL: rawURL, Err: transferCause(ctx, err)}
	}

	// The copy loop does not surface write errors, so check what landed on disk.
	info, err := os.Stat(partPath)
	if err != nil {
		return &FilesystemError{Op: "stat", Path: partPath, Err: err}
	}
	if size >= 0 && info.Size() != size {
		return &DownloadError{URL: rawURL, Err: fmt.Errorf("short write: got %d of %d bytes", info.Size(), size)}
	}

	d.logger.Info("downloaded", "url", rawURL, "size", humanize.Bytes(uint64(info.Size())))
	return nil
}

func (d *Downloader) fetchFile(ctx context.Context, rawURL, partPath string) error {
	src, err := url.PathUnescape(strings.TrimPrefix(rawURL, "file://"))
	if err != nil {
		return &DownloadError{URL: rawURL, Err: err}
	}

	in, err := os.Open(filepath.FromSlash(src))
	if err != nil {
		return &DownloadError{URL: rawURL, Err: err}
	}
	defer in.Close()

	out, err := os.Create(partPath)
	if err != nil {
		return &FilesystemError{Op: "create", Path: partPath, Err: err}
	}

	_, err = io.Copy(out, &contextReader{ctx: ctx, r: in})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &DownloadError{URL: rawURL, Err: err}
	}
	return nil
}

// userAgentTransport sets the User-Agent header on requests that lack one.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("User-Agent") != "" {
		return base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return base.RoundTrip(req)
}

// transferCause prefers the context error so callers can match
// context.Canceled after an interrupted transfer.
func transferCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// fileExists checks if a file exists and is not empty.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
