package dist

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Extractor expands a compressed artifact into a directory.
type Extractor interface {
	Extract(archivePath, destDir string) error
}

// ArchiveExtractor handles .tar.gz, .tgz and .zip archives. Entry names are
// resolved inside destDir; entries escaping it are rejected.
type ArchiveExtractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *ArchiveExtractor {
	return &ArchiveExtractor{}
}

// Extract picks the format from the archive file name.
func (e *ArchiveExtractor) Extract(archivePath, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	switch name := strings.ToLower(archivePath); {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return e.extractTarGz(archivePath, destDir)
	case strings.HasSuffix(name, ".zip"):
		return e.extractZip(archivePath, destDir)
	default:
		return fmt.Errorf("no extractor for %s", filepath.Base(archivePath))
	}
}

func (e *ArchiveExtractor) extractTarGz(archivePath, destDir string) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := securejoin.SecureJoin(destDir, header.Name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", header.Name, err)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(destDir, target, header.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := securejoin.SecureJoin(destDir, header.Linkname)
			if err != nil {
				return fmt.Errorf("resolve link %s: %w", header.Linkname, err)
			}
			_ = os.Remove(target)
			if err := os.Link(source, target); err != nil {
				return fmt.Errorf("create hard link %s: %w", target, err)
			}
		default:
			// Devices, fifos and the like have no place in a runtime bundle.
			continue
		}
	}
}

func (e *ArchiveExtractor) extractZip(archivePath, destDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		target, err := securejoin.SecureJoin(destDir, f.Name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f.Name, err)
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
		case mode&os.ModeSymlink != 0:
			linkname, err := readZipEntry(f)
			if err != nil {
				return err
			}
			if err := writeSymlink(destDir, target, linkname); err != nil {
				return err
			}
		default:
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Name, err)
			}
			err = writeFile(target, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func readZipEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(data), nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	// Archives built on Windows often carry no permission bits.
	if mode.Perm() == 0 {
		mode = 0644
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0200)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file %s: %w", target, err)
	}
	return outFile.Close()
}

// writeSymlink recreates a link. The link target itself must stay inside
// destDir once resolved relative to the link.
func writeSymlink(destDir, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(linkname) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	rel, err := filepath.Rel(filepath.Clean(destDir), filepath.Clean(resolved))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("illegal link target %s for %s", linkname, target)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}
	_ = os.Remove(target)
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("create symlink %s: %w", target, err)
	}
	return nil
}
