package wsclient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streamspace-dev/chatcore/internal/apperr"
	"github.com/streamspace-dev/chatcore/internal/friendship"
	"github.com/streamspace-dev/chatcore/internal/hub"
	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/protocol"
)

func randomMessageID() string { return uuid.NewString() }

func nowUnix() int64 { return time.Now().Unix() }

// trySend is the non-blocking push every handler uses to hand a frame to
// this connection's own write pump; false means the pump has died.
func trySend(tx hub.Outbound, frame []byte) bool {
	select {
	case tx <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) handleSend(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeSend(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	user, err := c.store.GetUser(ctx, c.UserID)
	if err != nil {
		return apperr.InternalServer(err.Error())
	}

	msg := models.Message{
		ID:      randomMessageID(),
		Content: payload.Content,
		URL:     payload.URL,
		Kind:    payload.Kind,
		RoomID:  payload.RoomID,
		Sender:  models.SnapshotOf(*user),
		SendAt:  nowUnix(),
	}

	stamped, err := c.hub.Broadcast(msg)
	if err != nil {
		return err
	}
	if err := c.store.CacheMessage(ctx, payload.RoomID, stamped); err != nil {
		c.log.Warn().Err(err).Str("room", payload.RoomID).Msg("failed to cache message")
	}
	return nil
}

func (c *Client) handleAddFriend(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeFriendID(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	fs, err := c.friendships.Add(ctx, c.UserID, payload.ID)
	if err != nil {
		return err
	}
	return c.notifyBothFriendProjection(ctx, fs, payload.ID)
}

func (c *Client) handleAcceptFriend(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeFriendID(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	fs, err := c.friendships.Accept(ctx, c.UserID, payload.ID)
	if err != nil {
		return err
	}
	c.hub.CreateFriendRoom(c.UserID, payload.ID)
	return c.notifyBothRoomProjection(ctx, fs, payload.ID)
}

func (c *Client) handleRevertFriend(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeFriendID(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	if _, err := c.friendships.Revert(ctx, c.UserID, payload.ID); err != nil {
		return err
	}
	return c.sendBoth(payload.ID, func(peerID int64) ([]byte, error) {
		return protocol.EncodeRevertFriend(protocol.FriendIDPayload{ID: peerID})
	})
}

func (c *Client) handleDeleteFriend(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeFriendID(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	if _, err := c.friendships.Delete(ctx, c.UserID, payload.ID); err != nil {
		return err
	}
	c.hub.RemoveFriendRoom(c.UserID, payload.ID)
	return c.sendBoth(payload.ID, func(peerID int64) ([]byte, error) {
		return protocol.EncodeDeleteFriend(protocol.FriendIDPayload{ID: peerID})
	})
}

func (c *Client) handleSendCall(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeFriendID(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	result, err := c.hub.MakeCall(c.UserID, payload.ID)
	if err != nil {
		return err
	}

	switch result {
	case hub.CallOffline:
		return c.notifySelfHungUp(protocol.HungUpOffline)
	case hub.CallBusy:
		return c.notifySelfHungUp(protocol.HungUpBusy)
	default:
		frame, err := protocol.EncodeSendCallDone(protocol.FriendIDPayload{ID: payload.ID})
		if err != nil {
			return apperr.InternalServer(err.Error())
		}
		if !c.hub.Notify(c.UserID, c.ClientID, frame) {
			return apperr.SendError()
		}
		callFrame, err := protocol.EncodeReceiveCall(protocol.ReceiveCallPayload{ID: c.UserID, ClientID: c.ClientID})
		if err != nil {
			return apperr.InternalServer(err.Error())
		}
		c.hub.Send(payload.ID, callFrame)
		return nil
	}
}

func (c *Client) handleSendHungUp(ctx context.Context, env protocol.Envelope) error {
	payload, err := protocol.DecodeHungUpRequest(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	c.hub.MakeHungUp(c.UserID, payload.ID)
	frame, err := protocol.EncodeReceiveHungUp(protocol.HungUpPayload{Reason: payload.Reason})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Send(c.UserID, frame)
	c.hub.Send(payload.ID, frame)
	return nil
}

func (c *Client) handleSendReply(env protocol.Envelope) error {
	payload, err := protocol.DecodeCallTarget(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}

	frame, err := protocol.EncodeReceiveReply(protocol.ReplyPayload{ClientID: c.ClientID})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	if !c.hub.Notify(payload.ID, payload.ClientID, frame) {
		return c.notifySelfHungUp(protocol.HungUpOffline)
	}
	return nil
}

func (c *Client) handleSendOffer(env protocol.Envelope) error {
	payload, err := protocol.DecodeSDPOffer(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}
	frame, err := protocol.EncodeReceiveOffer(protocol.SDPPayload{SDP: payload.SDP})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Notify(payload.ID, payload.ClientID, frame)
	return nil
}

func (c *Client) handleSendAnswer(env protocol.Envelope) error {
	payload, err := protocol.DecodeSDPOffer(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}
	frame, err := protocol.EncodeReceiveAnswer(protocol.SDPPayload{SDP: payload.SDP})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Notify(payload.ID, payload.ClientID, frame)
	return nil
}

func (c *Client) handleSendCandidate(env protocol.Envelope) error {
	payload, err := protocol.DecodeCandidateRequest(env)
	if err != nil {
		return apperr.BadRequest(err.Error())
	}
	frame, err := protocol.EncodeReceiveCandidate(protocol.CandidatePayload{Candidate: payload.Candidate})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Notify(payload.ID, payload.ClientID, frame)
	return nil
}

func (c *Client) notifySelfHungUp(reason protocol.HungUpReason) error {
	frame, err := protocol.EncodeReceiveHungUp(protocol.HungUpPayload{Reason: reason})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	if !c.hub.Notify(c.UserID, c.ClientID, frame) {
		return apperr.SendError()
	}
	return nil
}

// notifyBothFriendProjection sends each side its own viewpoint of fs as a
// ReceiveFriend event.
func (c *Client) notifyBothFriendProjection(ctx context.Context, fs *models.Friendship, otherID int64) error {
	self, other, err := c.projectFriendPair(ctx, fs, otherID)
	if err != nil {
		return err
	}

	selfFrame, err := protocol.EncodeReceiveFriend(protocol.ReceiveFriendPayload{Friend: self})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	otherFrame, err := protocol.EncodeReceiveFriend(protocol.ReceiveFriendPayload{Friend: other})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Send(c.UserID, selfFrame)
	c.hub.Send(otherID, otherFrame)
	return nil
}

func (c *Client) notifyBothRoomProjection(ctx context.Context, fs *models.Friendship, otherID int64) error {
	self, other, err := c.projectFriendPair(ctx, fs, otherID)
	if err != nil {
		return err
	}

	selfRoom := models.FromFriend(self, nil)
	otherRoom := models.FromFriend(other, nil)

	selfFrame, err := protocol.EncodeReceiveRoom(protocol.ReceiveRoomPayload{Room: selfRoom})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	otherFrame, err := protocol.EncodeReceiveRoom(protocol.ReceiveRoomPayload{Room: otherRoom})
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Send(c.UserID, selfFrame)
	c.hub.Send(otherID, otherFrame)
	return nil
}

// projectFriendPair loads the counterparty's profile and returns each
// side's projection of fs: self sees other's profile (and vice versa),
// each with the status viewed from that side, annotated with the shared
// room id.
func (c *Client) projectFriendPair(ctx context.Context, fs *models.Friendship, otherID int64) (self, other models.Friend, err error) {
	selfUser, err := c.store.GetUser(ctx, c.UserID)
	if err != nil {
		return models.Friend{}, models.Friend{}, apperr.InternalServer(err.Error())
	}
	otherUser, err := c.store.GetUser(ctx, otherID)
	if err != nil {
		return models.Friend{}, models.Friend{}, apperr.InternalServer(err.Error())
	}

	roomID := models.FriendRoomID(min64(c.UserID, otherID), max64(c.UserID, otherID))

	self = models.Friend{
		ID: otherUser.ID, Username: otherUser.Username, Nickname: otherUser.Nickname,
		Avatar: otherUser.Avatar, Status: friendship.Viewpoint(fs, c.UserID), RoomID: roomID,
	}
	other = models.Friend{
		ID: selfUser.ID, Username: selfUser.Username, Nickname: selfUser.Nickname,
		Avatar: selfUser.Avatar, Status: friendship.Viewpoint(fs, otherID), RoomID: roomID,
	}
	return self, other, nil
}

// sendBoth pushes a per-recipient frame (built from the other user's id
// as seen by that recipient) to both sides of a relationship.
func (c *Client) sendBoth(otherID int64, build func(peerID int64) ([]byte, error)) error {
	selfFrame, err := build(otherID)
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	otherFrame, err := build(c.UserID)
	if err != nil {
		return apperr.InternalServer(err.Error())
	}
	c.hub.Send(c.UserID, selfFrame)
	c.hub.Send(otherID, otherFrame)
	return nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
