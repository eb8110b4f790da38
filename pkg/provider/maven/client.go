package maven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stackmesa/depstack/pkg/httputil"
	"github.com/stackmesa/depstack/pkg/provider"
)

// Client fetches POMs and artifacts from Maven repositories with response
// caching and retries. It is safe for concurrent use: expansion workers
// call into it in parallel.
type Client struct {
	http *httputil.Client
}

// NewClient creates a client whose responses are cached with the given TTL.
func NewClient(cacheTTL time.Duration) (*Client, error) {
	cache, err := httputil.NewCache("", cacheTTL)
	if err != nil {
		return nil, err
	}
	return &Client{http: httputil.NewClient(cache.Namespace("maven:"))}, nil
}

// NewClientWithCache creates a client over an existing cache, for tests.
func NewClientWithCache(cache *httputil.Cache) *Client {
	return &Client{http: httputil.NewClient(cache)}
}

// FetchPOM retrieves and parses the POM for an artifact, trying repos in
// order. Parsed POMs are cached by coordinate.
func (c *Client) FetchPOM(ctx context.Context, repos []provider.Repo, groupID, artifactID, version string) (*Project, error) {
	key := fmt.Sprintf("pom:%s:%s:%s", groupID, artifactID, version)

	var pom Project
	err := c.http.Cached(ctx, key, false, &pom, func() error {
		var lastErr error
		for _, repo := range repos {
			data, err := c.http.GetBytes(ctx, artifactURL(repo.URL, groupID, artifactID, version, ".pom"))
			if err != nil {
				lastErr = err
				continue
			}
			p, err := ParsePOM(data)
			if err != nil {
				return fmt.Errorf("parse pom %s:%s:%s: %w", groupID, artifactID, version, err)
			}
			pom = *p
			return nil
		}
		return fmt.Errorf("%s:%s:%s not found in any repo: %w", groupID, artifactID, version, lastErr)
	})
	if err != nil {
		return nil, err
	}
	return &pom, nil
}

// EnsureJar makes sure the artifact's jar exists in the local cache and
// returns its path. Existing files are trusted and not re-fetched.
func (c *Client) EnsureJar(ctx context.Context, repos []provider.Repo, cacheDir, groupID, artifactID, version string) (string, error) {
	dest := jarPath(cacheDir, groupID, artifactID, version)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	var lastErr error
	for _, repo := range repos {
		err := c.download(ctx, artifactURL(repo.URL, groupID, artifactID, version, ".jar"), dest)
		if err == nil {
			return dest, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%s:%s:%s jar not found in any repo: %w", groupID, artifactID, version, lastErr)
}

// download writes to a temp file first so a failed transfer never leaves a
// truncated jar behind.
func (c *Client) download(ctx context.Context, url, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := c.http.Download(ctx, url, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func artifactURL(base, groupID, artifactID, version, ext string) string {
	groupPath := strings.ReplaceAll(groupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s%s",
		strings.TrimSuffix(base, "/"), groupPath, artifactID, version, artifactID, version, ext)
}

func jarPath(cacheDir, groupID, artifactID, version string) string {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cacheDir = filepath.Join(home, ".cache", "depstack")
		}
	}
	groupPath := filepath.FromSlash(strings.ReplaceAll(groupID, ".", "/"))
	return filepath.Join(cacheDir, "maven", groupPath, artifactID, version,
		fmt.Sprintf("%s-%s.jar", artifactID, version))
}
