package revalidate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTriggerSendsSecretAndPath(t *testing.T) {
	t.Parallel()

	var received triggerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "reval-secret", "/curated-links", time.Second)
	require.NoError(t, client.Trigger(context.Background()))
	require.Equal(t, "reval-secret", received.Secret)
	require.Equal(t, "/curated-links", received.Path)
}

func TestTriggerHardFailsOnRejection(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"invalid secret"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, "wrong", "/curated-links", time.Second)
	err := client.Trigger(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestTriggerHardFailsOnTransportError(t *testing.T) {
	t.Parallel()

	client := New("http://127.0.0.1:1/revalidate", "secret", "/p", time.Second)
	require.Error(t, client.Trigger(context.Background()))
}
