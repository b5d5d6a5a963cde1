package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codecall-platform/config"
)

// GitHubClient is the identity and source-control collaborator. All calls
// are fallible and non-transactional; callers decide whether a failure
// rolls anything back (team grants never do).
type GitHubClient struct {
	APIBaseURL   string
	OAuthBaseURL string
	ClientID     string
	ClientSecret string
	Org          string
	AdminToken   string
	Client       *http.Client
}

// GitHubProfile is the subset of the user endpoint the platform needs.
type GitHubProfile struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

// PullRequest is the subset of the pulls endpoint used for settlement.
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Draft  bool   `json:"draft"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

func NewGitHubClient(cfg config.GitHubConfig) *GitHubClient {
	return &GitHubClient{
		APIBaseURL:   cfg.APIBaseURL,
		OAuthBaseURL: cfg.OAuthBaseURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Org:          cfg.Org,
		AdminToken:   cfg.AdminToken,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ExchangeCode trades an OAuth code for an access token.
func (c *GitHubClient) ExchangeCode(code string) (string, error) {
	reqBody := map[string]string{
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"code":          code,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", c.OAuthBaseURL+"/login/oauth/access_token", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var out struct {
		AccessToken      string `json:"access_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("github oauth error: %s", out.ErrorDescription)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("github oauth returned no access token")
	}
	return out.AccessToken, nil
}

// GetProfile fetches the authenticated user for a given access token.
func (c *GitHubClient) GetProfile(accessToken string) (*GitHubProfile, error) {
	req, err := http.NewRequest("GET", c.APIBaseURL+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+accessToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("GitHub /user returned %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("github profile lookup failed: %d", resp.StatusCode)
	}

	var profile GitHubProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GrantTeamMembership adds a user to an org review team. Best-effort side
// effect of judge assignment; the caller never rolls back on failure.
func (c *GitHubClient) GrantTeamMembership(teamSlug, username string) error {
	endpoint := fmt.Sprintf("%s/orgs/%s/teams/%s/memberships/%s", c.APIBaseURL, c.Org, teamSlug, username)

	req, err := http.NewRequest("PUT", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+c.AdminToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call github teams API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("github teams API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// GetPullRequest fetches a pull request from a repo path ("owner/name").
func (c *GitHubClient) GetPullRequest(repoPath string, prNumber int) (*PullRequest, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/pulls/%d", c.APIBaseURL, repoPath, prNumber)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+c.AdminToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github pulls API returned %d: %s", resp.StatusCode, string(body))
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// MergePullRequest merges a pull request using the admin token.
func (c *GitHubClient) MergePullRequest(repoPath string, prNumber int) error {
	endpoint := fmt.Sprintf("%s/repos/%s/pulls/%d/merge", c.APIBaseURL, repoPath, prNumber)

	req, err := http.NewRequest("PUT", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+c.AdminToken)

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("github merge API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// GetReadme fetches the raw README of a repo path, used by the seeder to
// populate how-to guides.
func (c *GitHubClient) GetReadme(repoPath string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/readme", c.APIBaseURL, repoPath)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github.v3.raw")
	if c.AdminToken != "" {
		req.Header.Set("Authorization", "token "+c.AdminToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github readme API returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RepoPath extracts "owner/name" from a repository link.
func RepoPath(repositoryLink string) (string, error) {
	u, err := url.Parse(repositoryLink)
	if err != nil {
		return "", fmt.Errorf("invalid repository link: %w", err)
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("repository link has no path: %s", repositoryLink)
	}
	return path, nil
}
