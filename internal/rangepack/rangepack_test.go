package rangepack

import (
	"archive/zip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func writeZip(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(dir, "pack.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}

func TestExtractFlattensRangeFiles(t *testing.T) {
	tmp := t.TempDir()
	pack := writeZip(t, tmp, map[string]string{
		"pack/gto/open.json":   `{"source":"GTO"}`,
		"pack/gto/defend.yaml": "source: GTO\n",
		"pack/README.md":       "ignored",
		"pack/.hidden.json":    "{}",
	})
	spots := filepath.Join(tmp, "spots")
	written, err := Extract(pack, spots, false)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	sort.Strings(written)
	if strings.Join(written, ",") != "defend.yaml,open.json" {
		t.Fatalf("unexpected files %v", written)
	}
	data, err := os.ReadFile(filepath.Join(spots, "open.json"))
	if err != nil || string(data) != `{"source":"GTO"}` {
		t.Fatalf("unexpected open.json %q: %v", data, err)
	}
}

func TestExtractRefusesOverwrite(t *testing.T) {
	tmp := t.TempDir()
	pack := writeZip(t, tmp, map[string]string{"open.json": "new"})
	spots := filepath.Join(tmp, "spots")
	if err := os.MkdirAll(spots, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(spots, "open.json"), []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Extract(pack, spots, false); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := Extract(pack, spots, true); err != nil {
		t.Fatalf("forced extract: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(spots, "open.json"))
	if string(data) != "new" {
		t.Fatalf("expected overwritten file, got %q", data)
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	tmp := t.TempDir()
	pack := writeZip(t, tmp, map[string]string{"../evil.json": "{}"})
	if _, err := Extract(pack, filepath.Join(tmp, "spots"), true); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
	if _, err := os.Stat(filepath.Join(tmp, "evil.json")); err == nil {
		t.Fatalf("traversal member was written")
	}
}

func TestExtractEmptyPack(t *testing.T) {
	tmp := t.TempDir()
	pack := writeZip(t, tmp, map[string]string{"notes.txt": "x"})
	if _, err := Extract(pack, filepath.Join(tmp, "spots"), false); err == nil {
		t.Fatalf("expected error for pack without range files")
	}
}

func TestFetchCachesDownload(t *testing.T) {
	tmp := t.TempDir()
	payload, err := os.ReadFile(writeZip(t, tmp, map[string]string{"open.json": "{}"}))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	cache := filepath.Join(tmp, "cache")
	first, err := Fetch(context.Background(), srv.URL+"/packs/gto", cache, false)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if first.Cached || filepath.Base(first.Path) != "gto.zip" {
		t.Fatalf("unexpected first fetch %+v", first)
	}
	second, err := Fetch(context.Background(), srv.URL+"/packs/gto", cache, false)
	if err != nil || !second.Cached || hits != 1 {
		t.Fatalf("expected cached copy, got %+v hits=%d err=%v", second, hits, err)
	}
	if _, err := Fetch(context.Background(), srv.URL+"/packs/gto", cache, true); err != nil || hits != 2 {
		t.Fatalf("forced fetch should download again: hits=%d err=%v", hits, err)
	}
	if _, err := Extract(first.Path, filepath.Join(tmp, "spots"), false); err != nil {
		t.Fatalf("extract downloaded pack: %v", err)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if _, err := Fetch(context.Background(), srv.URL+"/missing.zip", t.TempDir(), false); err == nil {
		t.Fatalf("expected status error")
	}
	if _, err := Fetch(context.Background(), "not a url", t.TempDir(), false); err == nil {
		t.Fatalf("expected invalid url error")
	}
}
