package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestNotify_RequestShape checks method, headers and form body of the notification POST.
func TestNotify_RequestShape(t *testing.T) {
	t.Parallel()

	var (
		gotMethod, gotAuth, gotType string
		gotForm                     url.Values
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")

		raw, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(raw))

		_, _ = w.Write([]byte(`{"status":200,"message":"ok"}`))
	}))
	defer srv.Close()

	d := NewDispatcher(WithEndpoint(srv.URL))

	result := d.Notify(context.Background(), "tok", "target arrived & more")
	require.True(t, result.OK())
	require.Equal(t, "ok", result.Label())
	require.Contains(t, result.Body, "ok")

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "application/x-www-form-urlencoded", gotType)
	require.Equal(t, "target arrived & more", gotForm.Get("message"))
}

// TestNotify_Rejected reports non-2xx statuses without an error.
func TestNotify_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := NewDispatcher(WithEndpoint(srv.URL)).Notify(context.Background(), "bad", "hi")
	require.False(t, result.OK())
	require.NoError(t, result.Err)
	require.Equal(t, http.StatusUnauthorized, result.StatusCode)
	require.Equal(t, "rejected", result.Label())
}

// TestNotify_TransportError reports unreachable endpoints through Err.
func TestNotify_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	result := NewDispatcher(WithEndpoint(endpoint), WithTimeout(time.Second)).
		Notify(context.Background(), "tok", "hi")
	require.Error(t, result.Err)
	require.False(t, result.OK())
	require.Equal(t, "transport_error", result.Label())
}

// TestTrigger issues a GET and honours the disabled configuration.
func TestTrigger(t *testing.T) {
	t.Parallel()

	hits := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/trigger" {
			hits++
		}

		_, _ = w.Write([]byte("Triggered"))
	}))
	defer srv.Close()

	result := NewDispatcher(WithTriggerURL(srv.URL + "/trigger")).Trigger(context.Background())
	require.True(t, result.OK())
	require.Equal(t, 1, hits)

	result = NewDispatcher(WithTriggerURL("")).Trigger(context.Background())
	require.True(t, result.Skipped)
	require.Equal(t, "skipped", result.Label())
	require.Equal(t, 1, hits)
}
