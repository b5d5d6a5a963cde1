package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGitHubClient(srv *httptest.Server) *GitHubClient {
	return &GitHubClient{
		APIBaseURL:   srv.URL,
		OAuthBaseURL: srv.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Org:          "codecall-platform",
		AdminToken:   "admin-token",
		Client:       &http.Client{Timeout: 5 * time.Second},
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login/oauth/access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_testtoken"}`))
	}))
	defer srv.Close()

	token, err := newTestGitHubClient(srv).ExchangeCode("the-code")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if token != "gho_testtoken" {
		t.Errorf("token = %q, want gho_testtoken", token)
	}
}

func TestExchangeCodeOAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code is incorrect"}`))
	}))
	defer srv.Close()

	if _, err := newTestGitHubClient(srv).ExchangeCode("stale-code"); err == nil {
		t.Fatal("expected error for OAuth failure response")
	}
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token gho_testtoken" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"login":"octocat","avatar_url":"https://example.com/a.png","email":"octo@example.com"}`))
	}))
	defer srv.Close()

	profile, err := newTestGitHubClient(srv).GetProfile("gho_testtoken")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Login != "octocat" || profile.Email != "octo@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestGetPullRequestLabels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/pulls/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"number":42,"state":"open","labels":[{"name":"bug"}],"user":{"login":"contributor"}}`))
	}))
	defer srv.Close()

	pr, err := newTestGitHubClient(srv).GetPullRequest("owner/repo", 42)
	if err != nil {
		t.Fatalf("GetPullRequest: %v", err)
	}
	if pr.Number != 42 || !prHasLabel(pr, "bug") || prHasLabel(pr, "feature") {
		t.Errorf("pr = %+v", pr)
	}
}

func TestGrantTeamMembershipAcceptsCreated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/orgs/codecall-platform/teams/judge-my-comp/memberships/octocat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	if err := newTestGitHubClient(srv).GrantTeamMembership("judge-my-comp", "octocat"); err != nil {
		t.Fatalf("GrantTeamMembership: %v", err)
	}
}

func TestGrantTeamMembershipFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := newTestGitHubClient(srv).GrantTeamMembership("judge-my-comp", "octocat"); err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestRepoPath(t *testing.T) {
	cases := []struct {
		link    string
		want    string
		wantErr bool
	}{
		{"https://github.com/owner/repo", "owner/repo", false},
		{"https://github.com/owner/repo/", "owner/repo", false},
		{"https://github.com/", "", true},
	}
	for _, tc := range cases {
		got, err := RepoPath(tc.link)
		if tc.wantErr {
			if err == nil {
				t.Errorf("RepoPath(%q): expected error", tc.link)
			}
			continue
		}
		if err != nil {
			t.Errorf("RepoPath(%q): %v", tc.link, err)
			continue
		}
		if got != tc.want {
			t.Errorf("RepoPath(%q) = %q, want %q", tc.link, got, tc.want)
		}
	}
}
