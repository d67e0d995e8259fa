package push

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServeSSE(t *testing.T) {
	events := make(chan Message, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, events)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	events <- Message{Type: TypeReloaded, Reason: "store"}

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if line == "event: reload" {
			scanner.Scan()
			lines = append(lines, scanner.Text())
			break
		}
	}

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "event: connected") {
		t.Errorf("Expected connected event, got %q", joined)
	}
	if !strings.Contains(joined, `data: {"type":"reload","reason":"store"}`) {
		t.Errorf("Expected reload event data, got %q", joined)
	}
}

func TestServeWebSocket(t *testing.T) {
	events := make(chan Message, 1)
	received := make(chan Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWebSocket(w, r, events, func(msg Message) { received <- msg })
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != TypeConnected {
		t.Fatalf("Expected connected message, got %+v (%v)", hello, err)
	}

	events <- Message{Type: TypeReloaded}
	var got Message
	if err := conn.ReadJSON(&got); err != nil || got.Type != TypeReloaded {
		t.Fatalf("Expected reload message, got %+v (%v)", got, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"visibility","visible":true}`)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	select {
	case msg := <-received:
		if msg.Type != TypeVisibility || msg.Visible == nil || !*msg.Visible {
			t.Errorf("Unexpected client message %+v", msg)
		}
	case <-time.After(receiveTimeout):
		t.Fatal("Timeout waiting for client message")
	}
}
