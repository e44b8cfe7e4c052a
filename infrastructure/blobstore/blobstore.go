// Package blobstore persists raw file contents on the local filesystem
// and maps them to external URLs served by the static file server.
//
// Layout: <root>/<repo-with-slashes-replaced>/<ref>/<basename>. Repo
// slashes become underscores and filenames are reduced to their
// basename, so no stored path can escape the root.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot indicates a fetch path that does not resolve under the
// configured storage root.
var ErrOutsideRoot = errors.New("path outside storage root")

// Store is a sanitized filesystem blob store.
type Store struct {
	root    string
	baseURL string
	http    *http.Client
}

// New creates a blob store rooted at root. External URLs are composed
// from baseURL.
func New(root, baseURL string) *Store {
	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SanitizeRepo flattens a "owner/name" repo into a single path segment.
func SanitizeRepo(repo string) string {
	return strings.ReplaceAll(repo, "/", "_")
}

// path resolves the sanitized absolute path for a blob.
func (s *Store) path(repo, ref, filename string) string {
	return filepath.Join(s.root, SanitizeRepo(repo), ref, filepath.Base(filename))
}

// Save writes content through to disk, creating parents, and returns the
// blob's external URL.
func (s *Store) Save(repo, ref, filename, content string) (string, error) {
	p := s.path(repo, ref, filename)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", p, err)
	}
	return s.URLFor(repo, ref, filename), nil
}

// URLFor composes the external URL of a blob without touching disk.
func (s *Store) URLFor(repo, ref, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s", s.baseURL, SanitizeRepo(repo), ref, filepath.Base(filename))
}

// Delete removes a blob. It reports whether a file was actually removed.
func (s *Store) Delete(repo, ref, filename string) (bool, error) {
	p := s.path(repo, ref, filename)
	err := os.Remove(p)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete blob %s: %w", p, err)
	}
	return true, nil
}

// Fetch returns the text behind a blob URL or local path. URLs are
// fetched over HTTP; local paths must resolve under the storage root.
func (s *Store) Fetch(ctx context.Context, pathOrURL string) (string, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return s.fetchHTTP(ctx, pathOrURL)
	}
	return s.fetchLocal(pathOrURL)
}

func (s *Store) fetchHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build blob request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch blob %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch blob %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read blob body: %w", err)
	}
	return string(body), nil
}

func (s *Store) fetchLocal(path string) (string, error) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve storage root: %w", err)
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve blob path: %w", err)
	}
	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("fetch %s: %w", path, ErrOutsideRoot)
	}
	data, err := os.ReadFile(pathAbs)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", pathAbs, err)
	}
	return string(data), nil
}
