// Package manifest resolves NW.js version aliases through the versions
// manifest published alongside the releases.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nwutils/nwget/internal/dist"
)

// DefaultURL is the official versions manifest.
const DefaultURL = "https://nwjs.io/versions.json"

// DefaultTimeout bounds a manifest request when no client is given.
const DefaultTimeout = 30 * time.Second

// maxManifestSize bounds how much of a manifest response is read.
const maxManifestSize = 16 << 20

// Release is one entry of the manifest's release list.
type Release struct {
	Version string   `json:"version"`
	Date    string   `json:"date"`
	Files   []string `json:"files"`
	Flavors []string `json:"flavors"`
}

// Manifest is the decoded versions.json document.
type Manifest struct {
	Latest   string    `json:"latest"`
	Stable   string    `json:"stable"`
	LTS      string    `json:"lts"`
	Versions []Release `json:"versions"`
}

// Alias returns the version an alias points to, or "" if the manifest
// does not define it.
func (m *Manifest) Alias(alias string) string {
	switch alias {
	case dist.AliasLatest:
		return m.Latest
	case dist.AliasStable:
		return m.Stable
	case dist.AliasLTS:
		return m.LTS
	}
	return ""
}

// Resolver implements dist.VersionResolver.
type Resolver struct {
	url    string
	client *http.Client
}

// NewResolver creates a resolver reading the manifest at manifestURL, which
// may use the http, https or file scheme. A nil client gets DefaultTimeout.
func NewResolver(manifestURL string, client *http.Client) *Resolver {
	if manifestURL == "" {
		manifestURL = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Resolver{url: manifestURL, client: client}
}

// Resolve returns version unchanged in normalized form, or the version an
// alias points to. Only aliases cause the manifest to be fetched.
func (r *Resolver) Resolve(ctx context.Context, version string) (string, error) {
	if !dist.IsAlias(version) {
		return dist.NormalizeVersion(version)
	}

	m, err := r.Fetch(ctx)
	if err != nil {
		return "", err
	}

	target := m.Alias(version)
	if target == "" {
		return "", &dist.InputError{Field: "version", Value: version, Reason: "alias not defined by " + r.url}
	}
	return dist.NormalizeVersion(target)
}

// Fetch downloads and decodes the manifest.
func (r *Resolver) Fetch(ctx context.Context) (*Manifest, error) {
	body, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var m Manifest
	if err := json.NewDecoder(io.LimitReader(body, maxManifestSize)).Decode(&m); err != nil {
		return nil, &dist.DownloadError{URL: r.url, Err: fmt.Errorf("decode manifest: %w", err)}
	}
	return &m, nil
}

func (r *Resolver) read(ctx context.Context) (io.ReadCloser, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, &dist.InputError{Field: "manifestUrl", Value: r.url, Reason: err.Error()}
	}

	switch u.Scheme {
	case "http", "https":
	case "file":
		path, err := url.PathUnescape(strings.TrimPrefix(r.url, "file://"))
		if err != nil {
			return nil, &dist.InputError{Field: "manifestUrl", Value: r.url, Reason: err.Error()}
		}
		f, err := os.Open(filepath.FromSlash(path))
		if err != nil {
			return nil, &dist.DownloadError{URL: r.url, Err: err}
		}
		return f, nil
	default:
		return nil, &dist.InputError{Field: "manifestUrl", Value: r.url, Reason: "unsupported scheme"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, &dist.DownloadError{URL: r.url, Err: err}
	}
	req.Header.Set("User-Agent", dist.DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &dist.DownloadError{URL: r.url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &dist.DownloadError{URL: r.url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}
