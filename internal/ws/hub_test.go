package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	userID := uuid.New()
	client := &Client{hub: hub, userID: userID, send: make(chan []byte, 1)}
	other := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, 1)}
	hub.Register(client)
	hub.Register(other)

	require.Eventually(t, func() bool { return hub.ConnectedClients(userID) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.BroadcastToUser(userID, "case.status_changed", map[string]string{"status": "SUBMITTED"}))

	select {
	case raw := <-client.send:
		var ev struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, "case.status_changed", ev.Type)
		assert.Equal(t, "SUBMITTED", ev.Data["status"])
	case <-time.After(time.Second):
		t.Fatal("событие не доставлено")
	}

	select {
	case <-other.send:
		t.Fatal("событие ушло чужому пользователю")
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(ctx)
	go hub.Run()

	client := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, 1)}
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ConnectedClients(client.userID) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ConnectedClients(client.userID) == 0 }, time.Second, 5*time.Millisecond)
}
