package room

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Event names shared by both directions of the realtime channel.
const (
	EventJoin           = "join"
	EventJoined         = "joined"
	EventCodeChange     = "code-change"
	EventSyncCode       = "sync-code"
	EventLanguageChange = "language-change"
	EventThemeChange    = "theme-change"
	EventDisconnected   = "disconnected"
	EventError          = "error"
)

// ErrInvalidRoom rejects a join whose room id is empty after
// sanitization. It reaches the sender only, never the broadcast path.
var ErrInvalidRoom = errors.New("invalid room")

// JoinedPayload announces a (re)join to every member of the room,
// including the joiner. Clients always contains the joiner itself.
type JoinedPayload struct {
	Clients  []Member `json:"clients"`
	Username string   `json:"username"`
	ConnID   string   `json:"connectionId"`
}

// Presence is the payload of a disconnected event.
type Presence struct {
	ConnID   string `json:"connectionId"`
	Username string `json:"username"`
}

// Hub implements the room-level protocol on top of the Registry. All
// broadcasts are fire-and-forget synchronous fan-out over a membership
// snapshot; a failed Send is the transport's problem.
type Hub struct {
	registry *Registry
	log      logrus.FieldLogger
}

func NewHub(registry *Registry, log logrus.FieldLogger) *Hub {
	return &Hub{registry: registry, log: log}
}

// Connect registers a new, unjoined session.
func (h *Hub) Connect(connID string, sink EventSink) {
	h.registry.Connect(connID, sink)
	h.log.WithField("conn", connID).Debug("connected")
}

// Join puts the connection in a room, replacing any prior membership
// without notifying the old room. The joined payload goes to the other
// members first, then to the joiner as its confirmation.
func (h *Hub) Join(connID, roomID, username string) error {
	cleanRoom, ok := SanitizeRoomID(roomID)
	if !ok {
		return ErrInvalidRoom
	}
	cleanName := SanitizeUsername(username)

	if !h.registry.Join(connID, cleanRoom, cleanName) {
		return ErrInvalidRoom
	}

	payload := JoinedPayload{
		Clients:  h.registry.Members(cleanRoom),
		Username: cleanName,
		ConnID:   connID,
	}

	for _, sink := range h.registry.SinksFor(cleanRoom, connID) {
		_ = sink.Send(EventJoined, payload)
	}
	if sink, ok := h.registry.Sink(connID); ok {
		_ = sink.Send(EventJoined, payload)
	}

	h.log.WithFields(logrus.Fields{
		"conn": connID,
		"room": cleanRoom,
		"user": cleanName,
	}).Info("joined room")
	return nil
}

// RelayCode sends the full document text to every other member of the
// room. Last write wins; there is no merge.
func (h *Hub) RelayCode(connID, roomID, code string) {
	h.broadcast(connID, roomID, EventCodeChange, map[string]string{"code": code})
}

// SyncTo delivers the current document to exactly one connection,
// reusing the code-change event so the receiver needs no extra path.
func (h *Hub) SyncTo(targetConnID, code string) {
	if sink, ok := h.registry.Sink(targetConnID); ok {
		_ = sink.Send(EventCodeChange, map[string]string{"code": code})
	}
}

func (h *Hub) RelayLanguage(connID, roomID, language string) {
	h.broadcast(connID, roomID, EventLanguageChange, map[string]string{"language": language})
}

func (h *Hub) RelayTheme(connID, roomID, theme string) {
	h.broadcast(connID, roomID, EventThemeChange, map[string]string{"theme": theme})
}

// Disconnect removes the session and tells its room, if it had one,
// that the member is gone. Idempotent.
func (h *Hub) Disconnect(connID string) {
	username, roomID, ok := h.registry.Remove(connID)
	if !ok {
		return
	}

	if roomID != "" {
		payload := Presence{ConnID: connID, Username: username}
		for _, sink := range h.registry.SinksFor(roomID, connID) {
			_ = sink.Send(EventDisconnected, payload)
		}
	}

	h.log.WithFields(logrus.Fields{"conn": connID, "user": username}).Debug("disconnected")
}

func (h *Hub) broadcast(connID, roomID, event string, payload any) {
	for _, sink := range h.registry.SinksFor(roomID, connID) {
		_ = sink.Send(event, payload)
	}
}
