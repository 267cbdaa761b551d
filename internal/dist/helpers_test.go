package dist

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// archiveEntry is one member of a test archive. A trailing slash in Name
// makes a directory; a non-empty Link makes a symlink.
type archiveEntry struct {
	Name string
	Body string
	Link string
	Mode int64
}

func createTarGz(t *testing.T, path string, entries []archiveEntry) []byte {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: e.Mode}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			if hdr.Mode == 0 {
				hdr.Mode = 0755
			}
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
			hdr.Mode = 0777
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Body))
			if hdr.Mode == 0 {
				hdr.Mode = 0644
			}
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func createZip(t *testing.T, path string, entries []archiveEntry) []byte {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		body := e.Body
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.SetMode(os.ModeDir | 0755)
		case e.Link != "":
			hdr.SetMode(os.ModeSymlink | 0777)
			body = e.Link
		default:
			mode := os.FileMode(e.Mode)
			if mode == 0 {
				mode = 0644
			}
			hdr.SetMode(mode)
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		if !strings.HasSuffix(e.Name, "/") {
			_, err = w.Write([]byte(body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// shasums renders a SHASUMS256.txt body for the given files.
func shasums(files map[string][]byte) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s  %s\n", sha256Hex(files[name]), name)
	}
	return []byte(b.String())
}

// releaseServer serves fixed bodies by URL path and counts GET requests.
type releaseServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string][]byte
	gets  map[string]int
}

func newReleaseServer(t *testing.T) *releaseServer {
	t.Helper()

	rs := &releaseServer{
		files: make(map[string][]byte),
		gets:  make(map[string]int),
	}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		body, ok := rs.files[r.URL.Path]
		if r.Method == http.MethodGet {
			rs.gets[r.URL.Path]++
		}
		rs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *releaseServer) serve(path string, body []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.files[path] = body
}

func (rs *releaseServer) getCount(path string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.gets[path]
}

func (rs *releaseServer) totalGets() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	total := 0
	for _, n := range rs.gets {
		total += n
	}
	return total
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
