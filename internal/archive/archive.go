// Package archive reads a backup manifest from a downloaded gist archive,
// for restores without network access.
package archive

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"eznv-restore/internal/manifest"
)

// maxFileSize caps a single manifest file read from an archive.
const maxFileSize = 10 << 20

// Supported lists the archive extensions Load understands.
var Supported = []string{".zip", ".7z", ".tar", ".tar.gz", ".tgz", ".tar.bz2", ".tar.xz"}

// Load reads every regular file in the archive at src into a Manifest keyed by
// base name. Gist downloads nest their files under a "<id>-<sha>/" directory,
// which base-name keys flatten away.
func Load(src string) (manifest.Manifest, error) {
	switch {
	case strings.HasSuffix(src, ".zip"):
		return loadZip(src)
	case strings.HasSuffix(src, ".7z"):
		return load7z(src)
	case strings.HasSuffix(src, ".tar"), strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"),
		strings.HasSuffix(src, ".tar.bz2"), strings.HasSuffix(src, ".tar.xz"):
		return loadTar(src)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s (want one of %s)", src, strings.Join(Supported, ", "))
	}
}

// loadTar handles tar and compressed tar variants
func loadTar(src string) (manifest.Manifest, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		reader = xzr
	}

	m := make(manifest.Manifest)
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := add(m, hdr.Name, tr); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// loadZip reads a .zip archive, the format GitHub serves for gist downloads
func loadZip(src string) (manifest.Manifest, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	m := make(manifest.Manifest)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = add(m, f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// load7z reads a .7z archive using the sevenzip library
func load7z(src string) (manifest.Manifest, error) {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	m := make(manifest.Manifest)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = add(m, f.Name, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// add stores one archive entry in m under its base name. Entries whose
// names collide once directories are dropped, or that exceed maxFileSize,
// are rejected rather than silently overwritten or truncated.
func add(m manifest.Manifest, name string, r io.Reader) error {
	// Archive entries always use forward slashes.
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if _, dup := m[base]; dup {
		return fmt.Errorf("duplicate file %q in archive", base)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("file %s exceeds %d bytes", name, maxFileSize)
	}
	m[base] = string(data)
	return nil
}
