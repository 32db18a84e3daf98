package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_GetDecodesValue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bot_users/42.json", r.URL.Path)
		assert.Equal(t, "s3cret", r.URL.Query().Get("auth"))
		_, _ = w.Write([]byte(`{"username":"alice","referral_count":2}`))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL, Secret: "s3cret"}, testLogger())

	var out struct {
		Username      string `json:"username"`
		ReferralCount int    `json:"referral_count"`
	}
	found, err := client.Get(context.Background(), "bot_users/42", &out)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, 2, out.ReferralCount)
}

func TestClient_GetNullMeansAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL}, testLogger())

	var out json.RawMessage
	found, err := client.Get(context.Background(), "bot_users/missing", &out)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_PutSendsJSONBody(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL}, testLogger())

	err := client.Put(context.Background(), "users/abcd1234", map[string]any{"limit": 10})

	require.NoError(t, err)
	assert.Equal(t, float64(10), received["limit"])
}

func TestClient_PatchSendsOnlyGivenFields(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL}, testLogger())

	err := client.Patch(context.Background(), "bot_users/42", map[string]any{
		"credentials_generated": true,
	})

	require.NoError(t, err)
	assert.Len(t, received, 1)
	assert.Equal(t, true, received["credentials_generated"])
}

func TestClient_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL}, testLogger())

	_, err := client.Get(context.Background(), "bot_users/42", nil)
	assert.Error(t, err)
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health.json", r.URL.Path)
		_, _ = w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)

	client := New(Config{BaseURL: srv.URL + "/"}, testLogger())

	_, err := client.Get(context.Background(), "health", nil)
	require.NoError(t, err)
}
