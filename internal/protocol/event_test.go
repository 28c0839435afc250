package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace-dev/chatcore/internal/models"
)

func TestEncodeDecodeSend(t *testing.T) {
	frame, err := encode(TypeSend, SendPayload{
		RoomID:  "chats:room-1-2",
		Content: "hi",
		Kind:    models.MessageText,
	})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, TypeSend, env.Type)

	p, err := DecodeSend(env)
	require.NoError(t, err)
	assert.Equal(t, "chats:room-1-2", p.RoomID)
	assert.Equal(t, "hi", p.Content)
}

func TestEncodeReceiveCandidateRoundTrip(t *testing.T) {
	frame, err := EncodeReceiveCandidate(CandidatePayload{
		Candidate: IceCandidate{
			Candidate:     "candidate:1 1 UDP 2 1.2.3.4 9 typ host",
			SDPMid:        "0",
			SDPMLineIndex: 0,
		},
	})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, TypeReceiveCandidate, env.Type)

	var p CandidatePayload
	require.NoError(t, decodeInto(env, &p))
	assert.Equal(t, "0", p.Candidate.SDPMid)
}

func TestDecodeCandidateRequestRoundTrip(t *testing.T) {
	frame, err := encode(TypeSendCandidate, CandidateRequestPayload{
		ID:       7,
		ClientID: "c-1",
		Candidate: IceCandidate{
			Candidate: "candidate:1 1 UDP 2 1.2.3.4 9 typ host",
		},
	})
	require.NoError(t, err)

	env, err := Decode(frame)
	require.NoError(t, err)
	p, err := DecodeCandidateRequest(env)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "c-1", p.ClientID)
}

func TestDecodeMalformedFrame(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
