package models

import "fmt"

// MessageKind distinguishes the payload carried by a chat message.
type MessageKind int

const (
	MessageText  MessageKind = 1
	MessageImage MessageKind = 2
	MessageFile  MessageKind = 3
)

// UserSnapshot is the sliver of a User embedded in a Message so clients
// can render sender name/avatar without a round trip, even if the
// sender's profile has since changed or the sender has been deleted.
type UserSnapshot struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// SnapshotOf captures the fields of u worth freezing into a Message.
func SnapshotOf(u User) UserSnapshot {
	return UserSnapshot{ID: u.ID, Username: u.Username, Nickname: u.Nickname, Avatar: u.Avatar}
}

// Message is a single chat message persisted in the per-room Redis list.
//
// Divide marks whether this message should render with a fresh timestamp
// header in the client: true when more than 400 seconds have elapsed
// since the previous message landed in the same room.
type Message struct {
	ID      string       `json:"id"`
	Content string       `json:"content"`
	URL     string       `json:"url,omitempty"`
	Kind    MessageKind  `json:"kind"`
	Divide  bool         `json:"divide"`
	RoomID  string       `json:"roomId"`
	Sender  UserSnapshot `json:"sender"`
	SendAt  int64        `json:"sendAt"`
}

// divideThresholdSeconds is the gap after which a new message starts a new
// visual group instead of continuing the previous one.
const divideThresholdSeconds = 400

// UpdateDivide computes Divide against the room's last-send timestamp.
// A lastSendAt of 0 means there is no earlier message to compare against,
// so Divide stays false.
func (m *Message) UpdateDivide(lastSendAt int64) {
	m.Divide = lastSendAt != 0 && m.SendAt-lastSendAt > divideThresholdSeconds
}

// Room is the client-facing summary of either a friend-to-friend room or
// a user's own private notes room, used to populate the room list on
// connect and to push live updates as new messages land.
type Room struct {
	Key     string   `json:"key"`
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Cover   string   `json:"cover"`
	Unreads int      `json:"unreads"`
	Content *Message `json:"content,omitempty"`
	SendAt  int64    `json:"sendAt"`
}

// FromFriend builds the room representing a conversation with friend f,
// seeded with the latest cached message if any.
func FromFriend(f Friend, latest *Message) Room {
	r := Room{
		Key:   f.RoomID,
		ID:    f.ID,
		Name:  f.Nickname,
		Cover: f.Avatar,
	}
	if latest != nil {
		r.Content = latest
		r.SendAt = latest.SendAt
	}
	return r
}

// UserRoomID is the id of a user's personal notes-to-self room.
func UserRoomID(userID int64) string {
	return fmt.Sprintf("chats:private-%d", userID)
}

// FriendRoomID is the id shared by two friends' chat room. Callers are
// responsible for passing ids in a stable order (lower, higher) so both
// sides compute the same key.
func FriendRoomID(lo, hi int64) string {
	return fmt.Sprintf("chats:room-%d-%d", lo, hi)
}
