package live

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomdesigner/internal/common/metrics"
	"roomdesigner/internal/design/store"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	return websocket.DefaultDialer.Dial(url, nil)
}

func assertLiveGauge(t *testing.T, reg *prometheus.Registry, want int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP %[1]s Open live feed websocket connections
# TYPE %[1]s gauge
%[1]s %[2]d
`, metrics.MetricLiveConnections, want)
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), metrics.MetricLiveConnections))
}

func TestHubStreamsStoreEvents(t *testing.T) {
	m := metrics.New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))
	hub := NewHub(nil, zerolog.Nop(), m)
	s := store.New()
	detach := hub.Attach(s)
	defer detach()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assertLiveGauge(t, reg, 1)

	p := s.CreateNewProject("Live")
	s.SetActiveView("2d")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second Message
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))

	assert.Equal(t, "action", first.Type)
	assert.Equal(t, store.ActionProjectCreate, first.Event.Action)
	assert.Equal(t, p.ID, first.Event.ProjectID)
	assert.Equal(t, store.ActionView, second.Event.Action)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assertLiveGauge(t, reg, 0)
}

func TestHubRejectsUnauthorized(t *testing.T) {
	hub := NewHub(func(r *http.Request) bool {
		return r.URL.Query().Get("token") == "secret"
	}, zerolog.Nop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := dial(t, srv, "?token=secret")
	require.NoError(t, err)
	conn.Close()
}

func TestPublishDropsForSlowClient(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop(), nil)
	c := &client{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	// the second event must not block on the full buffer
	done := make(chan struct{})
	go func() {
		hub.Publish(store.Event{Action: store.ActionLogin})
		hub.Publish(store.Event{Action: store.ActionLogout})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full client buffer")
	}
	assert.Len(t, c.send, 1)
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil, zerolog.Nop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := dial(t, srv, "")
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)
}
