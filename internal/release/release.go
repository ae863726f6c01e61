// Package release checks GitHub Releases for a newer Nsynca version.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nsynca/nsynca/internal/buildinfo"
)

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

// Info contains information about a GitHub release.
type Info struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// Result contains the result of an update check.
type Result struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	Release        *Info
}

// Checker queries the latest release of a repository.
type Checker struct {
	// Repository is "owner/name".
	Repository string
	// Token is sent as a bearer token when set (GITHUB_TOKEN).
	Token string
	// Current defaults to buildinfo.Version.
	Current    string
	APIURL     string
	HTTPClient *http.Client
}

// Check queries the GitHub Releases API for a newer version. A repository
// without releases reports no update.
func (c *Checker) Check(ctx context.Context) (*Result, error) {
	if c.Repository == "" {
		return nil, fmt.Errorf("release repository is not configured")
	}
	current := c.Current
	if current == "" {
		current = buildinfo.Version
	}
	apiURL := c.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	url := strings.TrimRight(apiURL, "/") + "/repos/" + c.Repository + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "nsynca/"+current)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return &Result{CurrentVersion: current}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(info.TagName, "v")
	result := &Result{
		CurrentVersion: current,
		LatestVersion:  latestVersion,
		ReleaseURL:     info.HTMLURL,
		Release:        &info,
	}

	latest, err := ParseSemver(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
	}
	cur, err := ParseSemver(current)
	if err != nil {
		// "dev" and other unparseable builds are treated as older.
		result.Available = true
		return result, nil
	}
	result.Available = cur.LessThan(latest)
	return result, nil
}
