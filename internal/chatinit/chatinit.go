// Package chatinit assembles the initial snapshot (rooms, friends, and
// recent messages) a just-connected client is sent on register (C3).
package chatinit

import (
	"context"
	"fmt"
	"sort"

	"github.com/streamspace-dev/chatcore/internal/models"
	"github.com/streamspace-dev/chatcore/internal/store"
)

const (
	personalRoomName  = "My Device"
	personalRoomCover = "/static/device.png"
)

// Snapshot is everything a newly registered client needs to render its
// chat list without further round-trips.
type Snapshot struct {
	Rooms       []models.Room
	Friends     []models.Friend
	MessagesMap map[string][]models.Message
}

// Build assembles the Snapshot for userID.
func Build(ctx context.Context, s *store.Store, userID int64) (*Snapshot, error) {
	friendships, err := s.ListFriendships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friendships: %w", err)
	}

	snapshot := &Snapshot{
		MessagesMap: make(map[string][]models.Message),
	}

	for _, fs := range friendships {
		otherID := fs.ID1
		if fs.ID0 != userID {
			otherID = fs.ID0
		}

		other, err := s.GetUser(ctx, otherID)
		if err != nil {
			continue
		}

		roomID := models.FriendRoomID(min64(userID, otherID), max64(userID, otherID))
		friend := models.Friend{
			ID:       other.ID,
			Username: other.Username,
			Nickname: other.Nickname,
			Avatar:   other.Avatar,
			Status:   viewpoint(fs.Status, fs.ID0 == userID),
			RoomID:   roomID,
		}
		snapshot.Friends = append(snapshot.Friends, friend)

		if fs.Status != models.FriendAccepted {
			continue
		}

		messages, err := s.RecentMessages(ctx, roomID)
		if err != nil {
			return nil, fmt.Errorf("failed to load messages for room %s: %w", roomID, err)
		}
		snapshot.MessagesMap[roomID] = messages
		snapshot.Rooms = append(snapshot.Rooms, models.FromFriend(friend, latestOf(messages)))
	}

	personalRoomID := models.UserRoomID(userID)
	personalMessages, err := s.RecentMessages(ctx, personalRoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load personal room messages: %w", err)
	}
	snapshot.MessagesMap[personalRoomID] = personalMessages
	snapshot.Rooms = append(snapshot.Rooms, personalRoom(personalRoomID, personalMessages))

	sort.Slice(snapshot.Rooms, func(i, j int) bool {
		return snapshot.Rooms[i].SendAt < snapshot.Rooms[j].SendAt
	})

	return snapshot, nil
}

// viewpoint projects a friendship's status onto the given side. Adding and
// Added are stored relative to id0 (Adding means id0 initiated, Added means
// id1 did), so id0 sees the stored value directly and id1 sees it flipped;
// Accepted/Deleted are symmetric and pass through unchanged.
func viewpoint(status models.FriendStatus, isID0 bool) models.FriendStatus {
	if isID0 || (status != models.FriendAdding && status != models.FriendAdded) {
		return status
	}
	if status == models.FriendAdding {
		return models.FriendAdded
	}
	return models.FriendAdding
}

func latestOf(messages []models.Message) *models.Message {
	if len(messages) == 0 {
		return nil
	}
	return &messages[len(messages)-1]
}

func personalRoom(roomID string, messages []models.Message) models.Room {
	room := models.Room{
		Key:  roomID,
		Name: personalRoomName,
		Cover: personalRoomCover,
	}
	if latest := latestOf(messages); latest != nil {
		room.Content = latest
		room.SendAt = latest.SendAt
	}
	return room
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
