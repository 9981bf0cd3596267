package discord

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:        srv.URL,
		Token:          "bot-token",
		GuildID:        "guild-1",
		ChannelNames:   []string{"resources"},
		ChannelPrefix:  "fav-",
		PageSize:       100,
		RequestsPerSec: 1000,
	}, zap.NewNop())
}

func TestChannels_FiltersToAllowList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/guilds/guild-1/channels", r.URL.Path)
		require.Equal(t, "Bot bot-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id":"1","name":"fav-tools"},
			{"id":"2","name":"general"},
			{"id":"3","name":"resources"},
			{"id":"4","name":"fav-design"}
		]`))
	})

	channels, err := client.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 3)
	require.Equal(t, "fav-tools", channels[0].Name)
	require.Equal(t, "resources", channels[1].Name)
	require.Equal(t, "fav-design", channels[2].Name)
}

func TestMessages_FiltersToLinkBearing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/channels/chan-1/messages", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			{"id":"500","content":"neat\nhttps://example.com"},
			{"id":"450","content":"no link"},
			{"id":"400","content":"http://old.example.com"}
		]`))
	})

	msgs, err := client.Messages(context.Background(), "chan-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "500", msgs[0].ID)
	require.Equal(t, "400", msgs[1].ID)
	require.Equal(t, "chan-1", msgs[0].ChannelID)
}

func TestListMessages_FailsOpenOnServerError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	msgs := client.ListMessages(context.Background(), "chan-1")
	require.NotNil(t, msgs)
	require.Empty(t, msgs)
}

func TestListChannels_FailsOpenOnUnreachableHost(t *testing.T) {
	t.Parallel()

	client := New(Config{
		BaseURL:        "http://127.0.0.1:1",
		GuildID:        "guild-1",
		RequestsPerSec: 1000,
	}, zap.NewNop())

	channels := client.ListChannels(context.Background())
	require.NotNil(t, channels)
	require.Empty(t, channels)
}

func TestMessages_PropagatesErrorForWatcher(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Messages(context.Background(), "chan-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}
