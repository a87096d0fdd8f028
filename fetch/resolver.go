package fetch

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/url"
	"path"

	"github.com/git-pkgs/manifests"
)

var ErrNoDownloadURL = errors.New("manifest declares no download URL")

// ArchiveInfo describes the downloadable source archive a manifest declares.
type ArchiveInfo struct {
	URL       string
	Filename  string
	Integrity string // sha512-..., sha256-..., sha1-... or md5-...
}

// Resolve returns the archive location and integrity for a parsed package.
// The integrity string carries the strongest checksum the manifest declares.
func Resolve(pkg *manifests.PackageData) (*ArchiveInfo, error) {
	if pkg.DownloadURL == "" {
		return nil, ErrNoDownloadURL
	}

	return &ArchiveInfo{
		URL:       pkg.DownloadURL,
		Filename:  filenameFromURL(pkg.DownloadURL),
		Integrity: integrity(pkg),
	}, nil
}

func integrity(pkg *manifests.PackageData) string {
	switch {
	case pkg.Sha512 != "":
		return "sha512-" + pkg.Sha512
	case pkg.Sha256 != "":
		return "sha256-" + pkg.Sha256
	case pkg.Sha1 != "":
		return "sha1-" + pkg.Sha1
	case pkg.Md5 != "":
		return "md5-" + pkg.Md5
	default:
		return ""
	}
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" {
		return path.Base(rawURL)
	}
	return path.Base(parsed.Path)
}

// IntegrityError reports a checksum mismatch between a downloaded archive
// and its manifest.
type IntegrityError struct {
	Algorithm string
	Want      string
	Got       string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s mismatch: want %s, got %s", e.Algorithm, e.Want, e.Got)
}

// Verify reads r to the end and checks it against every checksum the
// manifest declares. Manifests without checksums verify trivially.
func Verify(r io.Reader, pkg *manifests.PackageData) error {
	expected := map[string]string{
		"sha1":   pkg.Sha1,
		"md5":    pkg.Md5,
		"sha256": pkg.Sha256,
		"sha512": pkg.Sha512,
	}

	hashers := map[string]hash.Hash{
		"sha1":   sha1.New(),
		"md5":    md5.New(),
		"sha256": sha256.New(),
		"sha512": sha512.New(),
	}

	writers := make([]io.Writer, 0, len(hashers))
	for algo, h := range hashers {
		if expected[algo] != "" {
			writers = append(writers, h)
		}
	}
	if len(writers) == 0 {
		_, err := io.Copy(io.Discard, r)
		return err
	}

	if _, err := io.Copy(io.MultiWriter(writers...), r); err != nil {
		return err
	}

	for _, algo := range []string{"sha512", "sha256", "sha1", "md5"} {
		want := expected[algo]
		if want == "" {
			continue
		}
		got := hex.EncodeToString(hashers[algo].Sum(nil))
		if got != want {
			return &IntegrityError{Algorithm: algo, Want: want, Got: got}
		}
	}
	return nil
}

// Download fetches the package's declared source archive and verifies it
// against the manifest checksums while streaming it to w.
func Download(ctx context.Context, f FetcherInterface, pkg *manifests.PackageData, w io.Writer) (*ArchiveInfo, error) {
	info, err := Resolve(pkg)
	if err != nil {
		return nil, err
	}

	archive, err := f.Fetch(ctx, info.URL)
	if err != nil {
		return nil, err
	}
	defer archive.Body.Close()

	if err := Verify(io.TeeReader(archive.Body, w), pkg); err != nil {
		return nil, err
	}

	return info, nil
}
