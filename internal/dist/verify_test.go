package dist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifestPath = "/v0.105.0/SHASUMS256.txt"

// verifyFixture caches artifacts in a temp dir and serves a manifest for them.
type verifyFixture struct {
	server   *releaseServer
	cacheDir string
	files    map[string][]byte
}

func newVerifyFixture(t *testing.T) *verifyFixture {
	t.Helper()

	f := &verifyFixture{
		server:   newReleaseServer(t),
		cacheDir: t.TempDir(),
		files: map[string][]byte{
			"nwjs-v0.105.0-linux-x64.tar.gz": []byte("base archive"),
			"ffmpeg-0.105.0-linux-x64.zip":   []byte("ffmpeg archive"),
		},
	}
	for name, data := range f.files {
		require.NoError(t, os.WriteFile(filepath.Join(f.cacheDir, name), data, 0644))
	}
	f.server.serve(testManifestPath, shasums(f.files))
	return f
}

func (f *verifyFixture) request(artifacts ...string) VerifyRequest {
	return VerifyRequest{
		ManifestURL:  f.server.URL + testManifestPath,
		ManifestPath: filepath.Join(f.cacheDir, "shasum", "0.105.0.txt"),
		CacheDir:     f.cacheDir,
		Artifacts:    artifacts,
		Enabled:      true,
	}
}

func newTestVerifier() *Verifier {
	return NewVerifier(NewDownloader(nil, nil), nil)
}

func TestVerifierVerify(t *testing.T) {
	f := newVerifyFixture(t)

	err := newTestVerifier().Verify(context.Background(),
		f.request("nwjs-v0.105.0-linux-x64.tar.gz", "ffmpeg-0.105.0-linux-x64.zip"))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(f.cacheDir, "shasum", "0.105.0.txt"))
	assert.Equal(t, 1, f.server.getCount(testManifestPath))
}

func TestVerifierDisabled(t *testing.T) {
	f := newVerifyFixture(t)
	req := f.request("nwjs-v0.105.0-linux-x64.tar.gz")
	req.Enabled = false

	require.NoError(t, newTestVerifier().Verify(context.Background(), req))
	assert.Zero(t, f.server.totalGets())
	assert.NoFileExists(t, req.ManifestPath)
}

func TestVerifierMismatch(t *testing.T) {
	f := newVerifyFixture(t)
	name := "ffmpeg-0.105.0-linux-x64.zip"
	require.NoError(t, os.WriteFile(filepath.Join(f.cacheDir, name), []byte("tampered"), 0644))

	err := newTestVerifier().Verify(context.Background(), f.request("nwjs-v0.105.0-linux-x64.tar.gz", name))

	var mismatch *ChecksumMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, name, mismatch.Artifact)
	assert.Equal(t, sha256Hex(f.files[name]), mismatch.Expected)
	assert.Equal(t, sha256Hex([]byte("tampered")), mismatch.Actual)
	assert.True(t, errdefs.IsDataLoss(err))
}

func TestVerifierMissingEntry(t *testing.T) {
	f := newVerifyFixture(t)
	f.server.serve(testManifestPath, shasums(map[string][]byte{
		"nwjs-v0.105.0-linux-x64.tar.gz": f.files["nwjs-v0.105.0-linux-x64.tar.gz"],
	}))

	err := newTestVerifier().Verify(context.Background(),
		f.request("nwjs-v0.105.0-linux-x64.tar.gz", "ffmpeg-0.105.0-linux-x64.zip"))

	var missing *ChecksumMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "ffmpeg-0.105.0-linux-x64.zip", missing.Artifact)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestVerifierRefetchesManifest(t *testing.T) {
	f := newVerifyFixture(t)
	req := f.request("nwjs-v0.105.0-linux-x64.tar.gz")

	require.NoError(t, os.MkdirAll(filepath.Dir(req.ManifestPath), 0755))
	require.NoError(t, os.WriteFile(req.ManifestPath, []byte("0000  nwjs-v0.105.0-linux-x64.tar.gz\n"), 0644))

	require.NoError(t, newTestVerifier().Verify(context.Background(), req))
	assert.Equal(t, string(shasums(f.files)), readFile(t, req.ManifestPath))
}

func TestVerifierManifestUnavailable(t *testing.T) {
	f := newVerifyFixture(t)
	req := f.request("nwjs-v0.105.0-linux-x64.tar.gz")
	req.ManifestURL = f.server.URL + "/v9.9.9/SHASUMS256.txt"

	err := newTestVerifier().Verify(context.Background(), req)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, 404, dlErr.StatusCode)
}

func TestParseChecksums(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "SHASUMS256.txt")
	content := "AAAA  nwjs-v0.105.0-linux-x64.tar.gz\n" +
		"bbbb *nwjs-v0.105.0-win-x64.zip\n" +
		"cccc  x64/node.lib\n" +
		"\n" +
		"malformed-line\n"
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0644))

	sums, err := parseChecksums(manifest)
	require.NoError(t, err)

	assert.Equal(t, "AAAA", sums["nwjs-v0.105.0-linux-x64.tar.gz"])
	assert.Equal(t, "bbbb", sums["nwjs-v0.105.0-win-x64.zip"])
	assert.Equal(t, "cccc", sums["x64/node.lib"])
	assert.Equal(t, "cccc", sums["node.lib"])
	assert.NotContains(t, sums, "malformed-line")
}

func TestCalculateSHA256(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sum, err := calculateSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	_, err = calculateSHA256(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

// writeKeyring serializes entity's public key, armored or binary.
func writeKeyring(t *testing.T, path string, entity *openpgp.Entity, armored bool) {
	t.Helper()

	var buf bytes.Buffer
	if armored {
		w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
		require.NoError(t, err)
		require.NoError(t, entity.Serialize(w))
		require.NoError(t, w.Close())
	} else {
		require.NoError(t, entity.Serialize(&buf))
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("nwget test", "", "release@example.com", nil)
	require.NoError(t, err)
	return entity
}

func TestVerifierManifestSignature(t *testing.T) {
	signer := newTestEntity(t)

	tests := []struct {
		name        string
		keyringFrom *openpgp.Entity
		armored     bool
		wantErr     bool
	}{
		{name: "armored_keyring", keyringFrom: signer, armored: true},
		{name: "binary_keyring", keyringFrom: signer, armored: false},
		{name: "wrong_key", keyringFrom: newTestEntity(t), armored: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVerifyFixture(t)
			manifest := shasums(f.files)

			var sig bytes.Buffer
			require.NoError(t, openpgp.ArmoredDetachSign(&sig, signer, bytes.NewReader(manifest), nil))
			f.server.serve(testManifestPath+".asc", sig.Bytes())

			keyring := filepath.Join(t.TempDir(), "nwjs.gpg")
			writeKeyring(t, keyring, tt.keyringFrom, tt.armored)

			req := f.request("nwjs-v0.105.0-linux-x64.tar.gz")
			req.Keyring = keyring
			err := newTestVerifier().Verify(context.Background(), req)

			if tt.wantErr {
				var sigErr *SignatureError
				require.ErrorAs(t, err, &sigErr)
				assert.True(t, errdefs.IsUnauthorized(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestVerifierMissingSignature(t *testing.T) {
	f := newVerifyFixture(t)
	keyring := filepath.Join(t.TempDir(), "nwjs.gpg")
	writeKeyring(t, keyring, newTestEntity(t), true)

	req := f.request("nwjs-v0.105.0-linux-x64.tar.gz")
	req.Keyring = keyring
	err := newTestVerifier().Verify(context.Background(), req)

	var dlErr *DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Equal(t, f.server.URL+testManifestPath+".asc", dlErr.URL)
}

func TestLoadKeyring(t *testing.T) {
	dir := t.TempDir()

	_, err := loadKeyring(filepath.Join(dir, "missing.gpg"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.gpg")
	require.NoError(t, os.WriteFile(garbage, []byte("not a keyring"), 0644))
	_, err = loadKeyring(garbage)
	assert.Error(t, err)

	valid := filepath.Join(dir, "valid.asc")
	writeKeyring(t, valid, newTestEntity(t), true)
	keyring, err := loadKeyring(valid)
	require.NoError(t, err)
	assert.Len(t, keyring, 1)
}
