// Package hub implements the process-wide in-memory presence/fan-out
// registry (C4): who is connected, which rooms exist, and the
// call-admission state machine layered on top of presence. Every
// operation runs under a single mutex and must never suspend — no
// network or disk I/O happens here, only map mutation and non-blocking
// channel sends.
package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/logger"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/protocol"
)

// outboundCapacity is the per-client write channel size the Hub's
// non-blocking sends are sized for. The channels themselves are created by
// the WebSocket edge with its own outboundBuffer constant of the same
// size. A full channel means a slow reader; the non-blocking send drops
// the frame.
const outboundCapacity = 128

// Outbound is the bounded, non-blocking channel each connected client
// drains from its write pump.
type Outbound chan []byte

// feed is the broadcast fan-out unit for one room: the set of clients
// (across however many users) currently subscribed to it.
type feed struct {
	clients    map[string]Outbound
	lastSendAt int64
}

// userState tracks one user's online presence across however many
// concurrently connected clients (devices/tabs).
type userState struct {
	numClients int
	callable   bool
	roomIDs    map[string]struct{}
}

// Hub is the process-wide singleton. Register/Unregister/Broadcast/Send/
// Notify/MakeCall/MakeHungUp/CreateFriendRoom/RemoveFriendRoom all lock
// once and run to completion without suspending.
type Hub struct {
	mu    sync.Mutex
	users map[int64]*userState
	feeds map[string]*feed
	log   *zerolog.Logger
}

// New builds an empty Hub.
func New() *Hub {
	return &Hub{
		users: make(map[int64]*userState),
		feeds: make(map[string]*feed),
		log:   logger.Hub(),
	}
}

// Register binds clientID's outbound channel into every room in rooms,
// and marks userID online (or increments its client count if already
// online).
func (h *Hub) Register(userID int64, clientID string, rooms []string, tx Outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, roomID := range rooms {
		f, ok := h.feeds[roomID]
		if !ok {
			f = &feed{clients: make(map[string]Outbound)}
			h.feeds[roomID] = f
		}
		f.clients[clientID] = tx
	}

	if u, ok := h.users[userID]; ok {
		u.numClients++
		return
	}

	roomSet := make(map[string]struct{}, len(rooms))
	for _, roomID := range rooms {
		roomSet[roomID] = struct{}{}
	}
	h.users[userID] = &userState{numClients: 1, callable: true, roomIDs: roomSet}
}

// Unregister removes clientID from every feed reachable from userID's
// roomIDs, dropping empty feeds, and decrements userID's client count -
// dropping the UserState entirely once it reaches zero. roomIDs itself
// is never mutated here: the whole UserState is discarded on last
// disconnect, so there is nothing to reconcile.
func (h *Hub) Unregister(userID int64, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	u, ok := h.users[userID]
	if !ok {
		return
	}

	for roomID := range u.roomIDs {
		f, ok := h.feeds[roomID]
		if !ok {
			continue
		}
		delete(f.clients, clientID)
		if len(f.clients) == 0 {
			delete(h.feeds, roomID)
		}
	}

	u.numClients--
	if u.numClients <= 0 {
		delete(h.users, userID)
	}
}

// CreateFriendRoom installs a feed for the friendship's room, seeded
// with the union of both users' currently-online clients (found via
// their personal rooms), and records the room id in both users'
// roomIDs. A pre-existing feed for the same room id is overwritten:
// Accepted transitions are idempotent in intent.
func (h *Hub) CreateFriendRoom(userA, userB int64) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := models.FriendRoomID(minID(userA, userB), maxID(userA, userB))

	clients := make(map[string]Outbound)
	for _, userID := range [2]int64{userA, userB} {
		u, ok := h.users[userID]
		if !ok {
			continue
		}
		u.roomIDs[roomID] = struct{}{}
		if personal, ok := h.feeds[models.UserRoomID(userID)]; ok {
			for clientID, tx := range personal.clients {
				clients[clientID] = tx
			}
		}
	}

	h.feeds[roomID] = &feed{clients: clients}
	return roomID
}

// RemoveFriendRoom drops the friend-room id from both users' roomIDs and
// removes its feed entirely.
func (h *Hub) RemoveFriendRoom(userA, userB int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := models.FriendRoomID(minID(userA, userB), maxID(userA, userB))
	for _, userID := range [2]int64{userA, userB} {
		if u, ok := h.users[userID]; ok {
			delete(u.roomIDs, roomID)
		}
	}
	delete(h.feeds, roomID)
}

// Broadcast fans message out to every client subscribed to its room,
// computing Divide against the feed's last send timestamp and updating
// that timestamp for the next call. Returns BadRequest if the room has
// no feed (no client is currently subscribed to it).
func (h *Hub) Broadcast(message models.Message) (models.Message, error) {
	h.mu.Lock()
	f, ok := h.feeds[message.RoomID]
	if !ok {
		h.mu.Unlock()
		return models.Message{}, apperr.BadRequest("room doesn't exist")
	}

	message.UpdateDivide(f.lastSendAt)
	frame, err := protocol.EncodeReceive(protocol.ReceivePayload{Message: message})
	if err != nil {
		h.mu.Unlock()
		return models.Message{}, err
	}

	for clientID, tx := range f.clients {
		nonBlockingSend(tx, frame, func() { h.log.Debug().Str("client", clientID).Msg("dropped broadcast frame: channel full") })
	}
	f.lastSendAt = message.SendAt
	h.mu.Unlock()

	return message, nil
}

// Send fans out event to every currently-connected client of userID
// (its personal room). No-op if the user is offline.
func (h *Hub) Send(userID int64, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[models.UserRoomID(userID)]
	if !ok {
		return
	}
	for clientID, tx := range f.clients {
		nonBlockingSend(tx, frame, func() { h.log.Debug().Str("client", clientID).Msg("dropped targeted frame: channel full") })
	}
}

// Notify sends frame to exactly one client of userID, identified by
// clientID. Returns true iff that client is currently registered and the
// send succeeded.
func (h *Hub) Notify(userID int64, clientID string, frame []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, ok := h.feeds[models.UserRoomID(userID)]
	if !ok {
		return false
	}
	tx, ok := f.clients[clientID]
	if !ok {
		return false
	}

	select {
	case tx <- frame:
		return true
	default:
		return false
	}
}

// MakeCall is the call-admission rule: both users must be online and
// callable, or the call fails without mutating state. On success, both
// users' callable flags are atomically cleared.
func (h *Hub) MakeCall(callerID, calledID int64) (CallResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	caller, ok := h.users[callerID]
	if !ok {
		return 0, apperr.InternalServer("caller is not registered")
	}
	if !caller.callable {
		return CallBusy, nil
	}

	called, ok := h.users[calledID]
	if !ok {
		return CallOffline, nil
	}
	if !called.callable {
		return CallBusy, nil
	}

	caller.callable = false
	called.callable = false
	return CallProceed, nil
}

// MakeHungUp restores both users' callable flags, each only if present.
func (h *Hub) MakeHungUp(callerID, calledID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if u, ok := h.users[callerID]; ok {
		u.callable = true
	}
	if u, ok := h.users[calledID]; ok {
		u.callable = true
	}
}

// CallResult is MakeCall's verdict.
type CallResult int

const (
	CallProceed CallResult = iota
	CallOffline
	CallBusy
)

// FeedSummary and UserSummary back the admin snapshot operations.
type FeedSummary struct {
	RoomID      string
	ClientCount int
}

type UserSummary struct {
	UserID     int64
	NumClients int
	Callable   bool
}

// GetFeeds returns the total feed count and up to n feed summaries.
func (h *Hub) GetFeeds(n int) (int, []FeedSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]FeedSummary, 0, n)
	for roomID, f := range h.feeds {
		if len(out) >= n {
			break
		}
		out = append(out, FeedSummary{RoomID: roomID, ClientCount: len(f.clients)})
	}
	return len(h.feeds), out
}

// GetUsers returns the total online-user count and up to n user summaries.
func (h *Hub) GetUsers(n int) (int, []UserSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]UserSummary, 0, n)
	for userID, u := range h.users {
		if len(out) >= n {
			break
		}
		out = append(out, UserSummary{UserID: userID, NumClients: u.numClients, Callable: u.callable})
	}
	return len(h.users), out
}

// nonBlockingSend attempts a non-blocking send on tx, invoking onDrop if
// the channel was full. Called only from within the Hub's critical
// section, so it must never block.
func nonBlockingSend(tx Outbound, frame []byte, onDrop func()) {
	select {
	case tx <- frame:
	default:
		onDrop()
	}
}

func minID(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxID(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
