package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/models"
)

func TestRegisterUnregister_EmptyHubStaysEmpty(t *testing.T) {
	h := New()
	tx := make(Outbound, 1)

	h.Register(1, "client-a", []string{models.UserRoomID(1)}, tx)
	h.Unregister(1, "client-a")

	assert.Empty(t, h.users)
	assert.Empty(t, h.feeds)
}

func TestBroadcast_TwoUserChat(t *testing.T) {
	h := New()
	roomID := models.FriendRoomID(1, 2)
	txA := make(Outbound, 1)
	txB := make(Outbound, 1)

	h.Register(1, "client-a", []string{models.UserRoomID(1), roomID}, txA)
	h.Register(2, "client-b", []string{models.UserRoomID(2), roomID}, txB)

	msg := models.Message{ID: "m1", Content: "hi", RoomID: roomID, SendAt: 1000}
	out, err := h.Broadcast(msg)
	require.NoError(t, err)
	assert.False(t, out.Divide)

	assert.Len(t, txA, 1)
	assert.Len(t, txB, 1)
	assert.Equal(t, int64(1000), h.feeds[roomID].lastSendAt)
}

func TestBroadcast_DivideThreshold(t *testing.T) {
	h := New()
	roomID := models.FriendRoomID(1, 2)
	tx := make(Outbound, 4)
	h.Register(1, "client-a", []string{roomID}, tx)

	first, err := h.Broadcast(models.Message{RoomID: roomID, SendAt: 1000})
	require.NoError(t, err)
	assert.False(t, first.Divide)

	second, err := h.Broadcast(models.Message{RoomID: roomID, SendAt: 1400})
	require.NoError(t, err)
	assert.False(t, second.Divide, "1400-1000=400 must not divide")

	third, err := h.Broadcast(models.Message{RoomID: roomID, SendAt: 1801})
	require.NoError(t, err)
	assert.True(t, third.Divide, "1801-1400=401 must divide")
}

func TestBroadcast_UnknownRoomIsBadRequest(t *testing.T) {
	h := New()
	_, err := h.Broadcast(models.Message{RoomID: "chats:room-9-10"})
	assert.Error(t, err)
}

func TestCreateFriendRoom_UnionsOnlineClients(t *testing.T) {
	h := New()
	txA := make(Outbound, 1)
	txB := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, txA)
	h.Register(2, "client-b", []string{models.UserRoomID(2)}, txB)

	roomID := models.FriendRoomID(1, 2)
	_, exists := h.feeds[roomID]
	assert.False(t, exists)

	got := h.CreateFriendRoom(1, 2)
	assert.Equal(t, roomID, got)

	f := h.feeds[roomID]
	require.NotNil(t, f)
	assert.Len(t, f.clients, 2)
}

func TestAcceptThenDelete_LeavesNoFeed(t *testing.T) {
	h := New()
	txA := make(Outbound, 1)
	txB := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, txA)
	h.Register(2, "client-b", []string{models.UserRoomID(2)}, txB)

	h.CreateFriendRoom(1, 2)
	h.RemoveFriendRoom(1, 2)

	_, exists := h.feeds[models.FriendRoomID(1, 2)]
	assert.False(t, exists)
}

func TestMakeCall_CalledOffline(t *testing.T) {
	h := New()
	tx := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, tx)

	result, err := h.MakeCall(1, 2)
	require.NoError(t, err)
	assert.Equal(t, CallOffline, result)
	assert.True(t, h.users[1].callable)
}

func TestMakeCall_CalledBusy(t *testing.T) {
	h := New()
	txA := make(Outbound, 1)
	txB := make(Outbound, 1)
	txC := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, txA)
	h.Register(2, "client-b", []string{models.UserRoomID(2)}, txB)
	h.Register(3, "client-c", []string{models.UserRoomID(3)}, txC)

	result, err := h.MakeCall(1, 2)
	require.NoError(t, err)
	require.Equal(t, CallProceed, result)

	result, err = h.MakeCall(3, 2)
	require.NoError(t, err)
	assert.Equal(t, CallBusy, result)
	assert.True(t, h.users[1].callable == false && h.users[2].callable == false)
	assert.True(t, h.users[3].callable)
}

func TestMakeCall_ThenHungUp_RestoresCallable(t *testing.T) {
	h := New()
	txA := make(Outbound, 1)
	txB := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, txA)
	h.Register(2, "client-b", []string{models.UserRoomID(2)}, txB)

	_, err := h.MakeCall(1, 2)
	require.NoError(t, err)
	h.MakeHungUp(1, 2)

	assert.True(t, h.users[1].callable)
	assert.True(t, h.users[2].callable)
}

func TestNotify_UnknownClientReturnsFalse(t *testing.T) {
	h := New()
	tx := make(Outbound, 1)
	h.Register(1, "client-a", []string{models.UserRoomID(1)}, tx)

	ok := h.Notify(1, "client-ghost", []byte("frame"))
	assert.False(t, ok)
}
