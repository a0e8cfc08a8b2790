package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"reviewpilot-core/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:3001/api/auth/github/callback",
		AuthURL:      server.URL + "/login/oauth/authorize",
		TokenURL:     server.URL + "/login/oauth/access_token",
		APIURL:       server.URL + "/api/v3",
	})
	require.NoError(t, err)
	return client
}

func requireBearer(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer good-token" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
		return false
	}
	return true
}

func TestAuthCodeURL(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	raw := client.AuthCodeURL("signed-state")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.True(t, strings.HasSuffix(u.Path, "/login/oauth/authorize"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:3001/api/auth/github/callback", q.Get("redirect_uri"))
	assert.Equal(t, "repo read:user user:email write:repo_hook", q.Get("scope"))
	assert.Equal(t, "signed-state", q.Get("state"))
}

func TestExchangeCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		switch r.Form.Get("code") {
		case "json-code":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"gho_json","refresh_token":"ghr_json","expires_in":28800,"token_type":"bearer"}`)
		case "form-code":
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			fmt.Fprint(w, "access_token=gho_form&expires_in=3600&token_type=bearer")
		case "no-expiry":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"gho_plain","token_type":"bearer"}`)
		default:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`)
		}
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	tok, err := client.ExchangeCode(ctx, "json-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_json", tok.AccessToken)
	assert.Equal(t, "ghr_json", tok.RefreshToken)
	assert.Equal(t, int64(28800), tok.ExpiresIn)

	tok, err = client.ExchangeCode(ctx, "form-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_form", tok.AccessToken)
	assert.Equal(t, int64(3600), tok.ExpiresIn)

	tok, err = client.ExchangeCode(ctx, "no-expiry")
	require.NoError(t, err)
	assert.Equal(t, int64(0), tok.ExpiresIn)
	assert.Empty(t, tok.RefreshToken)

	_, err = client.ExchangeCode(ctx, "bad-code")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindTokenExchange))
}

func TestAuthenticatedUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/user", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		fmt.Fprint(w, `{"login":"octocat","id":583231,"avatar_url":"https://avatars.example/u/583231","name":"The Octocat","email":"octo@example.com","public_repos":8,"total_private_repos":4}`)
	})
	client := newTestClient(t, mux)

	u, err := client.AuthenticatedUser(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "octocat", u.Login)
	assert.Equal(t, int64(583231), u.ID)
	assert.Equal(t, 8, u.PublicRepos)
	assert.Equal(t, 4, u.TotalPrivateRepos)

	_, err = client.AuthenticatedUser(context.Background(), "expired-token")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstreamAuth))
}

func TestListRepositories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "all", q.Get("visibility"))
		assert.Equal(t, "owner,collaborator,organization_member", q.Get("affiliation"))
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("direction"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("per_page"))
		fmt.Fprint(w, `[{"id":111,"name":"hello","full_name":"octo/hello","owner":{"login":"octo"},"private":true,"description":"greetings","default_branch":"main","html_url":"https://github.com/octo/hello","updated_at":"2024-05-01T10:00:00Z","language":"Go","stargazers_count":42}]`)
	})
	client := newTestClient(t, mux)

	repos, err := client.ListRepositories(context.Background(), "good-token", 2, 10)
	require.NoError(t, err)
	require.Len(t, repos, 1)

	r := repos[0]
	assert.Equal(t, int64(111), r.ID)
	assert.Equal(t, "octo/hello", r.FullName)
	assert.Equal(t, "octo", r.Owner)
	assert.True(t, r.Private)
	require.NotNil(t, r.Description)
	assert.Equal(t, "greetings", *r.Description)
	assert.Equal(t, "main", r.DefaultBranch)
	assert.Equal(t, 42, r.Stars)
	assert.Equal(t, 2024, r.UpdatedAt.Year())
}

func TestListPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/octo/hello/pulls", func(w http.ResponseWriter, r *http.Request) {
		if !requireBearer(w, r) {
			return
		}
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		fmt.Fprint(w, `[{"id":9,"number":3,"title":"Add feature","state":"open","user":{"login":"dev","avatar_url":"https://avatars.example/dev"},"created_at":"2024-05-01T10:00:00Z","updated_at":"2024-05-02T10:00:00Z","head":{"ref":"feature","sha":"abcdef1234567890"},"html_url":"https://github.com/octo/hello/pull/3","draft":true}]`)
	})
	mux.HandleFunc("/api/v3/repos/octo/missing/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"Not Found"}`)
	})
	mux.HandleFunc("/api/v3/repos/octo/broken/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"message":"Server Error"}`)
	})
	client := newTestClient(t, mux)
	ctx := context.Background()

	pulls, err := client.ListPullRequests(ctx, "good-token", "octo", "hello", "open", 1, 30)
	require.NoError(t, err)
	require.Len(t, pulls, 1)
	assert.Equal(t, 3, pulls[0].Number)
	assert.Equal(t, "dev", pulls[0].Author)
	assert.Equal(t, "feature", pulls[0].Branch)
	assert.Equal(t, "abcdef1234567890", pulls[0].HeadSHA)
	assert.True(t, pulls[0].Draft)

	_, err = client.ListPullRequests(ctx, "good-token", "octo", "missing", "all", 1, 30)
	assert.True(t, apperror.Is(err, apperror.KindUpstreamNotFound))

	_, err = client.ListPullRequests(ctx, "good-token", "octo", "broken", "all", 1, 30)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
}

func TestRevokeGrant(t *testing.T) {
	var revoked string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/applications/client-id/grant", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if r.Method != http.MethodDelete || !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Requires authentication"}`)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var payload struct {
			AccessToken string `json:"access_token"`
		}
		_ = json.Unmarshal(body, &payload)
		revoked = payload.AccessToken
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, mux)

	require.NoError(t, client.RevokeGrant(context.Background(), "good-token"))
	assert.Equal(t, "good-token", revoked)
}
