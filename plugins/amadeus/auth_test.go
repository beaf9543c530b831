package amadeus

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, expiresIn int, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, tokenPath, r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":%d,"token_type":"Bearer"}`, n, expiresIn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCredentials_FreshTokenPerCall(t *testing.T) {
	var hits atomic.Int32
	srv := tokenServer(t, 1799, &hits)
	p := NewClientCredentials("id", "secret", srv.URL+"/", nil, false)

	first, err := p.Acquire(context.Background())
	require.NoError(t, err)
	second, err := p.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "token-1", first)
	assert.Equal(t, "token-2", second)
	assert.EqualValues(t, 2, hits.Load())
}

func TestClientCredentials_CachesUntilExpiryBuffer(t *testing.T) {
	var hits atomic.Int32
	srv := tokenServer(t, 60, &hits)
	p := NewClientCredentials("id", "secret", srv.URL, nil, true)

	now := time.Date(2025, 12, 15, 8, 0, 0, 0, time.UTC)
	p.Now = func() time.Time { return now }

	token, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	now = now.Add(49 * time.Second)
	token, err = p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	now = now.Add(time.Second)
	token, err = p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.EqualValues(t, 2, hits.Load())
}

func TestClientCredentials_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewClientCredentials("id", "wrong", srv.URL, nil, true)
	_, err := p.Acquire(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.True(t, IsUpstreamFailure(err))
	assert.Nil(t, p.cached)
}
