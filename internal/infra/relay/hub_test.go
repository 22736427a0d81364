//go:build !integration

package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(testLogger())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(conn)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestBroadcastConcurrentWriters(t *testing.T) {
	hub, srv := newTestHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var received atomic.Int64
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			received.Add(1)
		}
	}()

	// Overlapping webhook callbacks broadcast from their own goroutines.
	const writers, perWriter = 16, 25
	var queued atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				queued.Add(int64(hub.Broadcast([]byte(`{"data":{"status":1,"message":"processing"}}`))))
			}
		}()
	}
	wg.Wait()

	if hub.Broadcast([]byte(`{"data":{"status":1}}`)) != 1 {
		t.Fatal("client was dropped during concurrent broadcasts")
	}
	queued.Add(1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && received.Load() < queued.Load() {
		time.Sleep(5 * time.Millisecond)
	}
	if got, want := received.Load(), queued.Load(); got != want {
		t.Fatalf("queued %d messages but client received %d", want, got)
	}
}

func TestBroadcastDropsClientWithFullQueue(t *testing.T) {
	hub, srv := newTestHub(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// The client never reads, so its queue eventually fills and it is dropped
	// rather than blocking the broadcaster. Payload is padded so the kernel
	// socket buffers cannot absorb the whole burst.
	msg := []byte(`{"data":{"status":1,"message":"` + strings.Repeat("x", 4096) + `"}}`)
	dropped := false
	for i := 0; i < 10*sendBuffer; i++ {
		if hub.Broadcast(msg) == 0 {
			dropped = true
			break
		}
	}
	if !dropped {
		t.Fatal("stalled client was never dropped")
	}
}
