package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookFiltersByView(t *testing.T) {
	hook := NewBroadcastHook()
	all, cancelAll := hook.Subscribe()
	one, cancelOne := hook.SubscribeView("v1")
	defer cancelAll()
	assert.Equal(t, 2, hook.Subscribers())

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "v2", Reason: "settled"}))
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "v1", Reason: "select"}))

	assert.Equal(t, "v2", (<-all).ViewID)
	assert.Equal(t, "v1", (<-all).ViewID)
	event := <-one
	assert.Equal(t, "select", event.Reason)
	select {
	case extra := <-one:
		t.Fatalf("unexpected event %+v", extra)
	default:
	}

	cancelOne()
	cancelOne()
	_, open := <-one
	assert.False(t, open)
	assert.Equal(t, 1, hook.Subscribers())
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < 100; i++ {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "v1"}))
	}
	assert.Len(t, events, cap(events))
}

func TestBroadcastHookReplaysViewSubscriptions(t *testing.T) {
	hook := NewBroadcastHook()
	hook.SetReplay(func(viewID string) []WidgetEvent {
		return []WidgetEvent{{ViewID: viewID, WidgetID: "smoking", Reason: "settled"}}
	})

	one, cancelOne := hook.SubscribeView("v1")
	defer cancelOne()
	event := <-one
	assert.Equal(t, "v1", event.ViewID)
	assert.Equal(t, "smoking", event.WidgetID)

	all, cancelAll := hook.Subscribe()
	defer cancelAll()
	assert.Empty(t, all, "subscriptions without a view are not replayed")
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?view=v1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	_ = hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "other", Reason: "settled"})
	_ = hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "v1", WidgetID: "smoking", Reason: "settled"})

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "))
	var event WidgetEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
	assert.Equal(t, "v1", event.ViewID)
	assert.Equal(t, "smoking", event.WidgetID)
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "?view=v1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	_ = hook.WidgetUpdated(context.Background(), WidgetEvent{ViewID: "v1", Reason: "tab"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event WidgetEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "tab", event.Reason)
}
