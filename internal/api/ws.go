package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"coderoom/internal/room"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is one frame of the realtime channel in either direction.
// Inbound data stays raw until the event name picks its shape.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsSink serializes writes onto one connection. gorilla allows only a
// single concurrent writer.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(outEnvelope{Event: event, Data: payload})
}

func (a *API) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	sink := &wsSink{conn: conn}

	a.hub.Connect(connID, sink)
	defer a.hub.Disconnect(connID)

	for {
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		a.dispatch(connID, sink, msg)
	}
}

func (a *API) dispatch(connID string, sink room.EventSink, msg envelope) {
	switch msg.Event {
	case room.EventJoin:
		var p struct {
			RoomID   string `json:"roomId"`
			Username string `json:"username"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			_ = sink.Send(room.EventError, "invalid room")
			return
		}
		if err := a.hub.Join(connID, p.RoomID, p.Username); err != nil {
			_ = sink.Send(room.EventError, err.Error())
		}

	case room.EventCodeChange:
		var p struct {
			RoomID string          `json:"roomId"`
			Code   json.RawMessage `json:"code"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		code, ok := asString(p.Code)
		if !ok {
			// Non-string document payloads are dropped, not errors.
			return
		}
		a.hub.RelayCode(connID, p.RoomID, code)

	case room.EventSyncCode:
		var p struct {
			ConnID string          `json:"connectionId"`
			Code   json.RawMessage `json:"code"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		code, ok := asString(p.Code)
		if !ok {
			return
		}
		a.hub.SyncTo(p.ConnID, code)

	case room.EventLanguageChange:
		var p struct {
			RoomID   string `json:"roomId"`
			Language string `json:"language"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		a.hub.RelayLanguage(connID, p.RoomID, p.Language)

	case room.EventThemeChange:
		var p struct {
			RoomID string `json:"roomId"`
			Theme  string `json:"theme"`
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return
		}
		a.hub.RelayTheme(connID, p.RoomID, p.Theme)
	}
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
