// Package github fetches pull-request metadata from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	smartversion "github.com/Josh-Archer/smartversion/pkg"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

const userAgent = "smartversion"

// ErrNoToken is returned when a lookup is attempted without a credential.
var ErrNoToken = errors.New("no GitHub token available for PR analysis")

// Client is a minimal GitHub API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty) with the
// given request timeout.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type pullResponse struct {
	Number int     `json:"number"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// PullRequest fetches pull request number from owner/repo. Labels come back
// lower-cased; a null title or body becomes the empty string.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*smartversion.PullRequest, error) {
	if c.Token == "" {
		return nil, ErrNoToken
	}

	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.BaseURL, owner, repo, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create request")
	}
	req.Header.Set("Authorization", "token "+c.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error sending request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("failed to get PR data: %s returned HTTP status %s: %s", url, resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed pullResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "error decoding pull request")
	}

	pr := &smartversion.PullRequest{Number: parsed.Number}
	if parsed.Title != nil {
		pr.Title = *parsed.Title
	}
	if parsed.Body != nil {
		pr.Body = *parsed.Body
	}
	for _, l := range parsed.Labels {
		pr.Labels = append(pr.Labels, strings.ToLower(l.Name))
	}
	return pr, nil
}

var remotePattern = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/.]+)`)

// ParseRemote extracts owner and repository from an https or ssh GitHub
// remote URL.
func ParseRemote(remoteURL string) (owner, repo string, ok bool) {
	m := remotePattern.FindStringSubmatch(remoteURL)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
