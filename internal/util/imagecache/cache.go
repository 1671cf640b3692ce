// Package imagecache provides utilities for downloading and caching remote images.
package imagecache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	httputil "github.com/brandtint/brandtint/internal/util/http"
)

// Options configures image caching behavior.
type Options struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to the user cache directory under brandtint/images.
	CacheDir string

	// Refresh forces a fresh download even when a cached copy exists.
	Refresh bool
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "brandtint", "images"), nil
	}
	return filepath.Join(cacheDir, "brandtint", "images"), nil
}

// cacheFilename creates a deterministic filename from a URL: a SHA256 hash
// of the URL plus the original file extension.
func cacheFilename(url string) string {
	hash := sha256.Sum256([]byte(url))
	hashStr := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".img"
	}

	return hashStr + ext
}

// Fetch returns the bytes of a remote image, serving a cached copy when one
// exists. Callers are expected to have validated the URL against the
// security boundary before fetching.
func Fetch(ctx context.Context, url string, opts Options) ([]byte, error) {
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cacheDir = defaultDir
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath := filepath.Join(cacheDir, cacheFilename(url))

	if !opts.Refresh {
		if data, err := os.ReadFile(cachedPath); err == nil {
			return data, nil
		}
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.WriteFile(cachedPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}

	return data, nil
}
