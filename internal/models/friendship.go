package models

// FriendStatus tracks where a friendship stands between two users.
//
// The pair (id0, id1) is stored with id0 < id1 so each relationship has
// exactly one row regardless of who initiated it. Adding/Added distinguish
// the requester's view from the recipient's view of a pending request.
type FriendStatus int

const (
	FriendAccepted FriendStatus = 1
	FriendAdding   FriendStatus = 2
	FriendAdded    FriendStatus = 3
	FriendDeleted  FriendStatus = 4
)

// Friendship is the persisted row linking two user IDs.
type Friendship struct {
	ID0    int64        `db:"id0"`
	ID1    int64        `db:"id1"`
	Status FriendStatus `db:"status"`
}

// Friend is the per-viewer projection of a Friendship: the other user's
// profile plus the status as seen from the viewer's side, plus the shared
// room id used to address chat events between the pair.
type Friend struct {
	ID       int64        `json:"id"`
	Username string       `json:"username"`
	Nickname string       `json:"nickname"`
	Avatar   string       `json:"avatar"`
	Status   FriendStatus `json:"status"`
	RoomID   string       `json:"roomId"`
}
