// Package update compares the running CLI with the latest release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

// ReleaseURL is the GitHub API endpoint of the latest release.
const ReleaseURL = "https://api.github.com/repos/satishbabariya/magicorm/releases/latest"

// Fetcher returns the latest released version string.
type Fetcher func(ctx context.Context) (string, error)

// Result is the outcome of a check.
type Result struct {
	Current *version.Version
	Latest  *version.Version
}

// Available reports whether Latest is newer than Current.
func (r Result) Available() bool {
	return r.Current.LessThan(r.Latest)
}

// Check compares current with the version returned by fetch.
func Check(ctx context.Context, current string, fetch Fetcher) (Result, error) {
	cur, err := version.NewVersion(current)
	if err != nil {
		return Result{}, fmt.Errorf("invalid version format: %w", err)
	}

	raw, err := fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch latest version: %w", err)
	}
	latest, err := version.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return Result{}, fmt.Errorf("invalid latest version format: %w", err)
	}
	return Result{Current: cur, Latest: latest}, nil
}

// GitHub fetches the tag of the latest release from url.
func GitHub(url string) Fetcher {
	return func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status %s", resp.Status)
		}
		var release struct {
			TagName string `json:"tag_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
			return "", err
		}
		return release.TagName, nil
	}
}
