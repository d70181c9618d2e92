// Package gist fetches backup manifests from the GitHub gist API.
package gist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"eznv-restore/internal/manifest"
)

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// StatusError reports a non-200 response from the gist API.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error reports the request URL and the status it returned.
func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with HTTP code %d", e.URL, e.StatusCode)
}

// File is one entry of the gist "files" object.
type File struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated"`
	RawURL    string `json:"raw_url"`
}

// Response is the subset of the gist API payload this tool reads.
type Response struct {
	ID    string          `json:"id"`
	Files map[string]File `json:"files"`
}

// Client performs anonymous gist lookups. The zero value uses the public
// GitHub API and http.DefaultClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Fetch retrieves the gist with the given id and returns its files as a Manifest.
// There is no retry: any non-200 status is returned as *StatusError.
func (c *Client) Fetch(ctx context.Context, id string) (manifest.Manifest, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("gist id is empty")
	}

	gistURL := fmt.Sprintf("%s/gists/%s", strings.TrimRight(c.baseURL(), "/"), url.PathEscape(id))
	body, err := c.get(ctx, gistURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	res, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gist %s: %w", id, err)
	}

	// Large files come back truncated; their full text lives at raw_url.
	for name, f := range res.Files {
		if !f.Truncated || f.RawURL == "" {
			continue
		}
		content, err := c.fetchRaw(ctx, f.RawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch truncated file %q: %w", name, err)
		}
		f.Content = content
		res.Files[name] = f
	}

	return toManifest(res), nil
}

// Parse decodes a gist API payload into a Manifest without any network access.
func Parse(r io.Reader) (manifest.Manifest, error) {
	res, err := decode(r)
	if err != nil {
		return nil, err
	}
	return toManifest(res), nil
}

// decode reads one gist API response body.
func decode(r io.Reader) (*Response, error) {
	var res Response
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

// toManifest keys each file's content by its filename.
func toManifest(res *Response) manifest.Manifest {
	m := make(manifest.Manifest, len(res.Files))
	for name, f := range res.Files {
		m[name] = f.Content
	}
	return m
}

// fetchRaw downloads the full content of a file the API truncated.
func (c *Client) fetchRaw(ctx context.Context, rawURL string) (string, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// get issues a GET and returns the body of a 200 response. The caller closes it.
func (c *Client) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET error fetching %s: %w", target, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: target, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// baseURL returns BaseURL, or the public API when it is unset.
func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}
