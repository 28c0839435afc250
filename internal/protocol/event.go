// Package protocol defines the WebSocket wire format exchanged between
// chatcore clients and the hub: a tagged union of events carried as
// binary frames.
//
// Go has no sum types, so the union is modeled as an envelope with a
// string discriminator and a raw JSON payload. Encode/Decode pairs
// translate between the envelope and the concrete Go struct for each
// event kind. The variant set mirrors the chat protocol's event enum
// one-for-one, including the two variants (RevertFriend, DeleteFriend)
// that are reused bidirectionally: a client request and a server
// notification share the same tag and payload shape.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/streamspace-dev/chatcore/internal/models"
)

// Type identifies which event variant an Envelope carries.
type Type string

const (
	// Server -> client, sent once right after a connection registers.
	TypeInitRooms    Type = "init_rooms"
	TypeInitFriends  Type = "init_friends"
	TypeInitMessages Type = "init_messages"

	// Client -> server: send a chat message; server -> client: deliver one.
	TypeSend    Type = "send"
	TypeReceive Type = "receive"

	// Friendship lifecycle, client-initiated.
	TypeAddFriend    Type = "add_friend"
	TypeAcceptFriend Type = "accept_friend"

	// RevertFriend and DeleteFriend are each one variant used both ways:
	// as a client request (carrying the counterparty's id) and as the
	// server's notification to the other side (same shape).
	TypeRevertFriend Type = "revert_friend"
	TypeDeleteFriend Type = "delete_friend"

	// Friendship lifecycle, server-pushed notifications.
	TypeReceiveFriend Type = "receive_friend"
	TypeReceiveRoom   Type = "receive_room"

	// Call signaling, client-initiated.
	TypeSendCall      Type = "send_call"
	TypeSendHungUp    Type = "send_hung_up"
	TypeSendReply     Type = "send_reply"
	TypeSendOffer     Type = "send_offer"
	TypeSendAnswer    Type = "send_answer"
	TypeSendCandidate Type = "send_candidate"

	// Call signaling, server-pushed notifications.
	TypeSendCallDone     Type = "send_call_done"
	TypeReceiveCall      Type = "receive_call"
	TypeReceiveHungUp    Type = "receive_hung_up"
	TypeReceiveReply     Type = "receive_reply"
	TypeReceiveOffer     Type = "receive_offer"
	TypeReceiveAnswer    Type = "receive_answer"
	TypeReceiveCandidate Type = "receive_candidate"
)

// HungUpReason explains why a call ended without a live handshake.
type HungUpReason int

const (
	HungUpOffline HungUpReason = 1
	HungUpBusy    HungUpReason = 2
	HungUpRefuse  HungUpReason = 3
	HungUpCancel  HungUpReason = 4
	HungUpFinish  HungUpReason = 5
)

// IceCandidate mirrors the browser RTCIceCandidate shape, forwarded
// verbatim between peers and never parsed or cached server-side.
type IceCandidate struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex"`
}

// Envelope is the wire shape: a type tag plus an opaque payload decoded
// according to that tag.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encode(t Type, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

func decodeInto(env Envelope, out any) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("protocol: decode %s: %w", env.Type, err)
	}
	return nil
}

// Payload shapes, one per distinct event shape.

type InitRoomsPayload struct {
	Rooms []models.Room `json:"rooms"`
}

type InitFriendsPayload struct {
	Friends []models.Friend `json:"friends"`
}

type InitMessagesPayload struct {
	Messages map[string][]models.Message `json:"messages"`
}

// SendPayload is the client's outbound chat message; sender/id/sendAt
// are filled in by the client session from the authenticated connection,
// never trusted from the wire.
type SendPayload struct {
	RoomID  string             `json:"roomId"`
	Content string             `json:"content"`
	URL     string             `json:"url,omitempty"`
	Kind    models.MessageKind `json:"kind"`
}

type ReceivePayload struct {
	Message models.Message `json:"message"`
}

// FriendIDPayload carries a single counterparty user id: AddFriend,
// AcceptFriend, SendCall, and both directions of RevertFriend/DeleteFriend.
type FriendIDPayload struct {
	ID int64 `json:"id"`
}

type ReceiveFriendPayload struct {
	Friend models.Friend `json:"friend"`
}

type ReceiveRoomPayload struct {
	Room models.Room `json:"room"`
}

type HungUpRequestPayload struct {
	ID     int64        `json:"id"`
	Reason HungUpReason `json:"reason"`
}

type HungUpPayload struct {
	Reason HungUpReason `json:"reason"`
}

// CallTargetPayload addresses a specific peer client within a friend's
// connection set: reply, offer, answer, and candidate must land on the
// exact client that is party to the call, not just any of the friend's
// devices.
type CallTargetPayload struct {
	ID       int64  `json:"id"`
	ClientID string `json:"clientId"`
}

type SDPOfferPayload struct {
	ID       int64  `json:"id"`
	ClientID string `json:"clientId"`
	SDP      string `json:"sdp"`
}

type SDPPayload struct {
	SDP string `json:"sdp"`
}

type CandidateRequestPayload struct {
	ID        int64        `json:"id"`
	ClientID  string       `json:"clientId"`
	Candidate IceCandidate `json:"candidate"`
}

type CandidatePayload struct {
	Candidate IceCandidate `json:"candidate"`
}

type ReceiveCallPayload struct {
	ID       int64  `json:"id"`
	ClientID string `json:"clientId"`
}

type ReplyPayload struct {
	ClientID string `json:"clientId"`
}

// Encode* constructors build the wire bytes for server-pushed events.

func EncodeInitRooms(p InitRoomsPayload) ([]byte, error)       { return encode(TypeInitRooms, p) }
func EncodeInitFriends(p InitFriendsPayload) ([]byte, error)   { return encode(TypeInitFriends, p) }
func EncodeInitMessages(p InitMessagesPayload) ([]byte, error) { return encode(TypeInitMessages, p) }
func EncodeReceive(p ReceivePayload) ([]byte, error)           { return encode(TypeReceive, p) }
func EncodeReceiveFriend(p ReceiveFriendPayload) ([]byte, error) {
	return encode(TypeReceiveFriend, p)
}
func EncodeReceiveRoom(p ReceiveRoomPayload) ([]byte, error) { return encode(TypeReceiveRoom, p) }
func EncodeRevertFriend(p FriendIDPayload) ([]byte, error)   { return encode(TypeRevertFriend, p) }
func EncodeDeleteFriend(p FriendIDPayload) ([]byte, error)   { return encode(TypeDeleteFriend, p) }
func EncodeSendCallDone(p FriendIDPayload) ([]byte, error)   { return encode(TypeSendCallDone, p) }
func EncodeReceiveCall(p ReceiveCallPayload) ([]byte, error) { return encode(TypeReceiveCall, p) }
func EncodeReceiveHungUp(p HungUpPayload) ([]byte, error)    { return encode(TypeReceiveHungUp, p) }
func EncodeReceiveReply(p ReplyPayload) ([]byte, error)      { return encode(TypeReceiveReply, p) }
func EncodeReceiveOffer(p SDPPayload) ([]byte, error)        { return encode(TypeReceiveOffer, p) }
func EncodeReceiveAnswer(p SDPPayload) ([]byte, error)       { return encode(TypeReceiveAnswer, p) }
func EncodeReceiveCandidate(p CandidatePayload) ([]byte, error) {
	return encode(TypeReceiveCandidate, p)
}

// Decode parses a raw frame into its envelope without touching Data yet.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: malformed frame: %w", err)
	}
	return env, nil
}

// The Decode* helpers below unpack an Envelope's Data into the typed
// payload for client-originated event kinds; wsclient's dispatcher calls
// the one matching env.Type.

func DecodeSend(env Envelope) (SendPayload, error) {
	var p SendPayload
	err := decodeInto(env, &p)
	return p, err
}

func DecodeFriendID(env Envelope) (FriendIDPayload, error) {
	var p FriendIDPayload
	err := decodeInto(env, &p)
	return p, err
}

func DecodeHungUpRequest(env Envelope) (HungUpRequestPayload, error) {
	var p HungUpRequestPayload
	err := decodeInto(env, &p)
	return p, err
}

func DecodeCallTarget(env Envelope) (CallTargetPayload, error) {
	var p CallTargetPayload
	err := decodeInto(env, &p)
	return p, err
}

func DecodeSDPOffer(env Envelope) (SDPOfferPayload, error) {
	var p SDPOfferPayload
	err := decodeInto(env, &p)
	return p, err
}

func DecodeCandidateRequest(env Envelope) (CandidateRequestPayload, error) {
	var p CandidateRequestPayload
	err := decodeInto(env, &p)
	return p, err
}
