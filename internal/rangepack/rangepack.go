// Package rangepack downloads and unpacks zipped range packs into the spots directory.
package rangepack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/pfdrill/internal/ranges"
)

// ErrExists is returned when a pack member would overwrite an existing range file.
var ErrExists = errors.New("range file already exists")

// Pack describes a downloaded archive.
type Pack struct {
	Path   string
	Cached bool
}

// Fetch downloads the zip at rawURL into cacheDir. A cached copy is reused unless force is set.
func Fetch(ctx context.Context, rawURL, cacheDir string, force bool) (Pack, error) {
	if cacheDir == "" {
		return Pack{}, fmt.Errorf("cache directory is required")
	}
	filename, err := archiveName(rawURL)
	if err != nil {
		return Pack{}, err
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return Pack{}, fmt.Errorf("failed to create cache dir: %w", err)
	}

	destPath := filepath.Join(cacheDir, filename)
	if !force {
		if _, err := os.Stat(destPath); err == nil {
			return Pack{Path: destPath, Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Pack{}, fmt.Errorf("failed to stat cached pack: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(cacheDir, "pack-*.zip")
	if err != nil {
		return Pack{}, fmt.Errorf("failed to create temp pack: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, rawURL)
	if err != nil {
		return Pack{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Pack{}, fmt.Errorf("unexpected pack status: %s", resp.Status)
	}
	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return Pack{}, fmt.Errorf("failed to download pack: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Pack{}, fmt.Errorf("failed to close temp pack: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Pack{}, fmt.Errorf("failed to move pack into cache: %w", err)
	}
	return Pack{Path: destPath}, nil
}

// Extract copies range files from the archive into spotsDir and returns the
// written file names. Directory structure inside the archive is flattened.
func Extract(zipPath, spotsDir string, force bool) ([]string, error) {
	if zipPath == "" {
		return nil, fmt.Errorf("pack path is required")
	}
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pack: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	members := make(map[string]*zip.File)
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name, err := memberName(f.Name)
		if err != nil {
			return nil, err
		}
		if name == "" || !ranges.IsRangeFile(name) {
			continue
		}
		if _, dup := members[name]; dup {
			return nil, fmt.Errorf("pack contains %s more than once", name)
		}
		members[name] = f
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("pack contains no range files")
	}

	if !force {
		for name := range members {
			if _, err := os.Stat(filepath.Join(spotsDir, name)); err == nil {
				return nil, fmt.Errorf("%w: %s", ErrExists, name)
			}
		}
	}
	if err := os.MkdirAll(spotsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spots dir: %w", err)
	}

	written := make([]string, 0, len(members))
	for _, f := range reader.File {
		name, _ := memberName(f.Name)
		if members[name] != f {
			continue
		}
		if err := writeMember(f, filepath.Join(spotsDir, name)); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

// memberName reduces an archive path to its base name, rejecting entries that
// try to escape the archive root.
func memberName(name string) (string, error) {
	clean := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("pack member %q has an absolute path", name)
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", fmt.Errorf("pack member %q escapes the archive", name)
		}
	}
	base := path.Base(clean)
	if base == "." || base == "/" || strings.HasPrefix(base, ".") {
		return "", nil
	}
	return base, nil
}

func writeMember(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() {
		_ = rc.Close()
	}()
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".import-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := io.Copy(tmp, rc); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

func archiveName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid pack url %q", rawURL)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = u.Host
	}
	if !strings.EqualFold(path.Ext(name), ".zip") {
		name += ".zip"
	}
	return name, nil
}

func httpRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
