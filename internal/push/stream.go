package push

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/debemdeboas/inkwell/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeSSE streams events to the client as server-sent events named after the
// message type, until the request ends or events is closed.
func ServeSSE(w http.ResponseWriter, r *http.Request, events <-chan Message) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeSSE)
	w.Header().Set(config.HCacheControl, "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	writeEvent(w, Message{Type: TypeConnected})
	flusher.Flush()

	pushLogger.Debug().Str("remote", r.RemoteAddr).Msg("SSE client connected")
	defer pushLogger.Debug().Str("remote", r.RemoteAddr).Msg("SSE client disconnected")

	done := r.Context().Done()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, msg)
			flusher.Flush()
		case <-done:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		pushLogger.Error().Err(err).Msg("Error encoding event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, data)
}

// ServeWebSocket forwards events to the client as JSON messages and hands every
// JSON message the client sends to onMessage. It returns when either side
// goes away.
func ServeWebSocket(w http.ResponseWriter, r *http.Request, events <-chan Message, onMessage func(Message)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		pushLogger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					pushLogger.Warn().Err(err).Msg("Websocket read failed")
				}
				return
			}

			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				pushLogger.Debug().Err(err).Msg("Ignoring malformed websocket message")
				continue
			}
			if onMessage != nil {
				onMessage(msg)
			}
		}
	}()

	if err := conn.WriteJSON(Message{Type: TypeConnected}); err != nil {
		pushLogger.Error().Err(err).Msg("Websocket write failed")
		return
	}

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				pushLogger.Error().Err(err).Msg("Websocket write failed")
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
