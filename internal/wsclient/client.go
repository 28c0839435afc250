// Package wsclient implements the per-connection client session (C5):
// it binds one authenticated user and one client id to the Hub, decodes
// inbound events, and orchestrates the Store/Hub side effects each one
// requires.
package wsclient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/chatinit"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/logger"
	"github.com/streamspace-dev/chatcore/internal/protocol"
	"github.com/streamspace-dev/chatcore/internal/store"
)

// Client is one connection's actor. It is constructed per-upgrade by the
// WebSocket edge and driven entirely by its Register/Dispatch methods;
// it never blocks on I/O inside a Hub call.
type Client struct {
	UserID   int64
	ClientID string

	hub         *hub.Hub
	store       *store.Store
	friendships *friendship.Machine
	tx          hub.Outbound
	log         *zerolog.Logger
}

// New constructs a Client for an already-authenticated connection. tx is
// the send half of this connection's outbound channel, owned by the
// WebSocket edge's write pump.
func New(userID int64, h *hub.Hub, s *store.Store, fm *friendship.Machine, tx hub.Outbound) *Client {
	return &Client{
		UserID:      userID,
		ClientID:    uuid.NewString(),
		hub:         h,
		store:       s,
		friendships: fm,
		tx:          tx,
		log:         logger.ClientSession(),
	}
}

// Register loads the initial snapshot, registers with the Hub across
// every room the snapshot names, and pushes InitRooms/InitFriends/
// InitMessages onto tx in that order, ahead of any other traffic.
func (c *Client) Register(ctx context.Context) error {
	snapshot, err := chatinit.Build(ctx, c.store, c.UserID)
	if err != nil {
		return apperr.InternalServer(err.Error())
	}

	rooms := make([]string, 0, len(snapshot.MessagesMap))
	for roomID := range snapshot.MessagesMap {
		rooms = append(rooms, roomID)
	}
	c.hub.Register(c.UserID, c.ClientID, rooms, c.tx)

	rooms1, err := protocol.EncodeInitRooms(protocol.InitRoomsPayload{Rooms: snapshot.Rooms})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	friends, err := protocol.EncodeInitFriends(protocol.InitFriendsPayload{Friends: snapshot.Friends})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	messages, err := protocol.EncodeInitMessages(protocol.InitMessagesPayload{Messages: snapshot.MessagesMap})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}

	for _, frame := range [][]byte{rooms1, friends, messages} {
		if !trySend(c.tx, frame) {
			return apperr.SendError()
		}
	}

	rooms := make([]string, 0, len(snapshot.MessagesMap))
	for roomID := range snapshot.MessagesMap {
		rooms = append(rooms, roomID)
	}
	c.hub.Register(c.UserID, c.ClientID, rooms, c.tx)
	return nil
}

// Unregister must run on every exit path, regardless of cause. It does
// not clear call state: a disconnect is not a hang-up.
func (c *Client) Unregister() {
	c.hub.Unregister(c.UserID, c.ClientID)
}

// Dispatch decodes one inbound frame and executes its side effects. Only
// a SendError return (the outbound channel has died) is fatal to the
// session; every other error is logged by the caller and swallowed.
func (c *Client) Dispatch(ctx context.Context, frame []byte) error {
	env, err := protocol.Decode(frame)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	switch env.Type {
	case protocol.TypeSend:
		return c.handleSend(ctx, env)
	case protocol.TypeAddFriend:
		return c.handleAddFriend(ctx, env)
	case protocol.TypeAcceptFriend:
		return c.handleAcceptFriend(ctx, env)
	case protocol.TypeRevertFriend:
		return c.handleRevertFriend(ctx, env)
	case protocol.TypeDeleteFriend:
		return c.handleDeleteFriend(ctx, env)
	case protocol.TypeSendCall:
		return c.handleSendCall(ctx, env)
	case protocol.TypeSendHungUp:
		return c.handleSendHungUp(ctx, env)
	case protocol.TypeSendReply:
		return c.handleSendReply(env)
	case protocol.TypeSendOffer:
		return c.handleSendOffer(env)
	case protocol.TypeSendAnswer:
		return c.handleSendAnswer(env)
	case protocol.TypeSendCandidate:
		return c.handleSendCandidate(env)
	default:
		// Server->client-only variants received from a client are ignored.
		return nil
	}
}
