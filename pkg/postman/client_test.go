package postman

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNew_NormalisesBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultBaseURL},
		{"  ", DefaultBaseURL},
		{"api.example.com", "https://api.example.com"},
		{"http://localhost:8080/", "http://localhost:8080"},
		{"https://api.getpostman.com//", "https://api.getpostman.com"},
	}
	for _, tt := range tests {
		c, err := New(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.BaseURL(), "input %q", tt.in)
	}
}

func TestNew_DoesNotMutateCallerClient(t *testing.T) {
	hc := &http.Client{}
	c, err := New("http://x", WithHTTPClient(hc), WithTimeout(3*time.Second))
	require.NoError(t, err)

	assert.Zero(t, hc.Timeout)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithAPIKey("  PMAK-1  "))
	require.NoError(t, err)
	require.NoError(t, c.do(context.Background(), "probe", http.MethodPut, "/x", nil, map[string]string{"a": "b"}, nil))

	assert.Equal(t, "PMAK-1", got.Get("X-Api-Key"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_TokenSource(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok-1", TokenType: "Bearer"})
	c, err := New(srv.URL, WithTokenSource(ts))
	require.NoError(t, err)
	require.NoError(t, c.do(context.Background(), "probe", http.MethodGet, "/x", nil, nil, nil))

	assert.Equal(t, "Bearer tok-1", auth)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithRateLimit(0.001))
	require.NoError(t, err)

	// The first call consumes the single burst token.
	require.NoError(t, c.do(context.Background(), "first", http.MethodGet, "/x", nil, nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = c.do(ctx, "second", http.MethodGet, "/x", nil, nil, nil)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "second", terr.Op)
	assert.Equal(t, 1, hits)
}

func TestClient_UndecodableSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	var v struct{}
	err = c.do(context.Background(), "probe", http.MethodGet, "/x", nil, nil, &v)
	assert.Equal(t, CodeInvalidResponse, CodeOf(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		status  int
		payload string
		want    ErrorCode
		wantMsg string
	}{
		{"unauthorized", http.MethodGet, 401, `{"error":{"name":"AuthenticationError","message":"Invalid API Key"}}`, CodeUnauthorized, "AuthenticationError: Invalid API Key"},
		{"forbidden", http.MethodPut, 403, `{"error":{"name":"forbiddenError"}}`, CodeForbidden, "forbiddenError"},
		{"bad body on post", http.MethodPost, 400, `{"error":"bad"}`, CodeInvalidInput, "bad"},
		{"unprocessable on put", http.MethodPut, 422, `{"message":"nope"}`, CodeInvalidInput, "nope"},
		{"bad request on get", http.MethodGet, 400, `plain text`, CodeInvalidInput, "plain text"},
		{"not found", http.MethodGet, 404, ``, CodeNotFound, ""},
		{"rate limited", http.MethodGet, 429, `{"error":"rateLimited","message":"slow down"}`, CodeRateLimit, "rateLimited"},
		{"server error", http.MethodPost, 503, `{}`, CodeUnavailable, "{}"},
		{"teapot", http.MethodGet, 418, ``, CodeUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.method, tt.status, []byte(tt.payload))
			assert.Equal(t, tt.want, CodeOf(err))
			assert.Contains(t, err.Error(), "op: ")
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestClassify_ValidationOnlyForWrites(t *testing.T) {
	err := classify("get environment", http.MethodGet, 400, nil)
	var verr *RemoteValidationError
	assert.NotErrorAs(t, err, &verr)

	err = classify("create environment", http.MethodPost, 400, []byte(`{"error":"x"}`))
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, `{"error":"x"}`, verr.Payload)
}

func TestCodeOf_Wrapped(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, CodeUnknown, CodeOf(assert.AnError))

	wrapped := &TransportError{Op: "x", Err: context.Canceled}
	assert.ErrorIs(t, wrapped, context.Canceled)
	assert.Equal(t, CodeNetwork, CodeOf(wrapped))
}
