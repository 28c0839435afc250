package chatinit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamspace-dev/chatcore/internal/models"
)

func TestViewpoint_ProjectsAddingForRecipient(t *testing.T) {
	assert.Equal(t, models.FriendAdding, viewpoint(models.FriendAdding, true))
	assert.Equal(t, models.FriendAdded, viewpoint(models.FriendAdding, false))
	assert.Equal(t, models.FriendAccepted, viewpoint(models.FriendAccepted, false))
}

func TestLatestOf_EmptyReturnsNil(t *testing.T) {
	assert.Nil(t, latestOf(nil))
}

func TestLatestOf_ReturnsLastMessage(t *testing.T) {
	messages := []models.Message{
		{ID: "m1", SendAt: 1},
		{ID: "m2", SendAt: 2},
	}
	latest := latestOf(messages)
	assert.Equal(t, "m2", latest.ID)
}

func TestPersonalRoom_NoMessagesHasZeroSendAt(t *testing.T) {
	room := personalRoom("chats:private-1", nil)
	assert.Equal(t, int64(0), room.SendAt)
	assert.Equal(t, personalRoomName, room.Name)
}
