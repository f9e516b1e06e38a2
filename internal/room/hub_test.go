package room

import (
	"io"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type captured struct {
	Event   string
	Payload any
}

type captureSink struct {
	mu     sync.Mutex
	events []captured
}

func (s *captureSink) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, captured{Event: event, Payload: payload})
	return nil
}

func (s *captureSink) all() []captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]captured(nil), s.events...)
}

func (s *captureSink) byEvent(event string) []captured {
	return lo.Filter(s.all(), func(c captured, _ int) bool { return c.Event == event })
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestHub() (*Hub, *Registry) {
	registry := NewRegistry()
	return NewHub(registry, testLogger()), registry
}

func connect(hub *Hub, connID string) *captureSink {
	sink := &captureSink{}
	hub.Connect(connID, sink)
	return sink
}

func TestHub_Join_NotifiesRoomAndJoiner(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	sinkA := connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")

	// Given alice already in the room
	req.NoError(hub.Join("conn-a", "room-1", "alice"))

	// When bob joins
	req.NoError(hub.Join("conn-b", "room-1", "bob"))

	// Then alice is told, and bob gets the same payload as confirmation
	joinedA := sinkA.byEvent(EventJoined)
	req.Len(joinedA, 2) // own join + bob's join

	payload, ok := joinedA[1].Payload.(JoinedPayload)
	req.True(ok)
	req.Equal("bob", payload.Username)
	req.Equal("conn-b", payload.ConnID)
	req.Len(payload.Clients, 2)

	joinedB := sinkB.byEvent(EventJoined)
	req.Len(joinedB, 1)
	req.Equal(payload, joinedB[0].Payload)

	// The member list handed to the joiner always includes itself.
	members := lo.Map(payload.Clients, func(m Member, _ int) string { return m.ConnID })
	req.Contains(members, "conn-b")
}

func TestHub_Join_InvalidRoomReachesSenderOnly(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	sinkA := connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")
	req.NoError(hub.Join("conn-b", "room-1", "bob"))

	err := hub.Join("conn-a", "   ", "alice")
	req.ErrorIs(err, ErrInvalidRoom)

	// Nothing about the failed join reached the room.
	req.Empty(sinkA.byEvent(EventJoined))
	req.Len(sinkB.byEvent(EventJoined), 1)
}

func TestHub_ReJoin_MovesMembership(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	sinkA := connect(hub, "conn-a")
	connect(hub, "conn-b")
	connect(hub, "conn-c")
	req.NoError(hub.Join("conn-a", "room-1", "alice"))
	req.NoError(hub.Join("conn-b", "room-1", "bob"))
	req.NoError(hub.Join("conn-c", "room-2", "carol"))

	// When alice re-joins into room-2
	req.NoError(hub.Join("conn-a", "room-2", "alice"))
	before := len(sinkA.byEvent(EventCodeChange))

	// Then room-1 traffic no longer reaches her, room-2 traffic does
	hub.RelayCode("conn-b", "room-1", "left behind")
	req.Len(sinkA.byEvent(EventCodeChange), before)

	hub.RelayCode("conn-c", "room-2", "hello")
	req.Len(sinkA.byEvent(EventCodeChange), before+1)
}

func TestHub_RelayCode_ExcludesSender(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	sinkA := connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")
	req.NoError(hub.Join("conn-a", "room-1", "alice"))
	req.NoError(hub.Join("conn-b", "room-1", "bob"))

	hub.RelayCode("conn-a", "room-1", "print(1)")

	changes := sinkB.byEvent(EventCodeChange)
	req.Len(changes, 1)
	req.Equal(map[string]string{"code": "print(1)"}, changes[0].Payload)

	// Never echoed back to the sender.
	req.Empty(sinkA.byEvent(EventCodeChange))
}

func TestHub_SyncTo_IsPointToPoint(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")
	sinkC := connect(hub, "conn-c")
	req.NoError(hub.Join("conn-a", "room-1", "alice"))
	req.NoError(hub.Join("conn-b", "room-1", "bob"))
	req.NoError(hub.Join("conn-c", "room-1", "carol"))

	hub.SyncTo("conn-b", "shared doc")

	// sync reuses the code-change event and hits exactly one member
	req.Len(sinkB.byEvent(EventCodeChange), 1)
	req.Empty(sinkC.byEvent(EventCodeChange))
}

func TestHub_RelayLanguageAndTheme(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")
	req.NoError(hub.Join("conn-a", "room-1", "alice"))
	req.NoError(hub.Join("conn-b", "room-1", "bob"))

	hub.RelayLanguage("conn-a", "room-1", "python")
	hub.RelayTheme("conn-a", "room-1", "dracula")

	langs := sinkB.byEvent(EventLanguageChange)
	req.Len(langs, 1)
	req.Equal(map[string]string{"language": "python"}, langs[0].Payload)

	themes := sinkB.byEvent(EventThemeChange)
	req.Len(themes, 1)
	req.Equal(map[string]string{"theme": "dracula"}, themes[0].Payload)
}

func TestHub_Disconnect_NotifiesRoomExactlyOnce(t *testing.T) {
	req := require.New(t)
	hub, _ := newTestHub()
	connect(hub, "conn-a")
	sinkB := connect(hub, "conn-b")
	req.NoError(hub.Join("conn-a", "room-1", "alice"))
	req.NoError(hub.Join("conn-b", "room-1", "bob"))

	hub.Disconnect("conn-a")
	hub.Disconnect("conn-a") // transport close after explicit leave

	gone := sinkB.byEvent(EventDisconnected)
	req.Len(gone, 1)
	req.Equal(Presence{ConnID: "conn-a", Username: "alice"}, gone[0].Payload)
}

func TestHub_Disconnect_Unjoined(t *testing.T) {
	hub, _ := newTestHub()
	connect(hub, "conn-a")

	// No room, nothing to announce, must not panic.
	hub.Disconnect("conn-a")
}
