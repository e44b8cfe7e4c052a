package forge

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetAttachesToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("secret")
	body := c.Get(context.Background(), srv.URL, nil)

	require.NotNil(t, body)
	assert.Equal(t, "token secret", gotAuth)
}

func TestClient_NonOKReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	c := NewClient("")
	assert.Nil(t, c.Get(context.Background(), srv.URL, nil))
}

func TestClient_RateLimitWaitsAndRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(2*time.Second).Unix(), 10))
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var slept time.Duration
	c := NewClient("", WithSleep(func(d time.Duration) { slept += d }))

	body := c.Get(context.Background(), srv.URL, nil)

	require.NotNil(t, body)
	assert.Equal(t, 2, calls)
	// Sleeps until one second past the advertised reset time.
	assert.GreaterOrEqual(t, slept, 2*time.Second)
}

func TestClient_RateLimitWaitUsesInjectedClock(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(5*time.Second).Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := NewClient("",
		WithNow(func() time.Time { return now }),
		WithSleep(func(d time.Duration) { waits = append(waits, d) }),
	)

	_, retry := c.once(context.Background(), srv.URL, nil)

	require.True(t, retry)
	require.Len(t, waits, 1)
	assert.Equal(t, 6*time.Second, waits[0])
}

func TestClient_GetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		fmt.Fprint(w, `[{"full_name":"org/repo"}]`)
	}))
	defer srv.Close()

	c := NewClient("")
	var repos []RepoSummary
	ok := c.GetJSON(context.Background(), srv.URL, pageParams(3, nil), &repos)

	require.True(t, ok)
	require.Len(t, repos, 1)
	assert.Equal(t, "org/repo", repos[0].FullName)
}

func TestClient_GetJSONBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient("")
	var v map[string]any
	assert.False(t, c.GetJSON(context.Background(), srv.URL, nil, &v))
}

func TestClient_NetworkErrorReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient("")
	assert.Nil(t, c.Get(context.Background(), srv.URL, nil))
}

func TestClient_RawFileURL(t *testing.T) {
	c := NewClient("")
	url := c.RawFileURL("org/repo", "main", "docs/readme.md")
	assert.Equal(t, "https://raw.githubusercontent.com/org/repo/main/docs/readme.md", url)
}
