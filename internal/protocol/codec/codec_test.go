package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/checkers-duel/internal/protocol"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(protocol.MsgJoinGame, protocol.JoinGamePayload{RoomID: "r1", PlayerName: "ann", Color: 1})

	require.NoError(t, err)
	assert.Equal(t, protocol.MsgJoinGame, msg.Type)
	assert.JSONEq(t, `{"roomId":"r1","playerName":"ann","color":1}`, string(msg.Payload))
}

func TestNewMessage_NilPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(protocol.MsgPlayAgain, nil)

	require.NoError(t, err)
	assert.Nil(t, msg.Payload)
}

func TestNewMessage_Unmarshalable(t *testing.T) {
	t.Parallel()

	_, err := NewMessage(protocol.MsgError, make(chan int))
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewMessage(protocol.MsgError, make(chan int)) })
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	original := MustNewMessage(protocol.MsgStartGame, protocol.StartGamePayload{Turn: 1})

	data, err := Encode(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"startGame","payload":{"turn":1}}`, string(data))

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, original.Type, decoded.Type)
	assert.JSONEq(t, string(original.Payload), string(decoded.Payload))
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"missing type", `{"payload":{}}`},
		{"wrong type kind", `{"type":5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParsePayload(t *testing.T) {
	t.Parallel()

	msg, err := Decode([]byte(`{"type":"makeMove","payload":{"roomId":"r1","moveData":{"r1":5,"c1":0,"r2":4,"c2":1,"nextTurn":2},"newBoard":[[0,1]]}}`))
	require.NoError(t, err)

	payload, err := ParsePayload[protocol.MakeMovePayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "r1", payload.RoomID)
	assert.JSONEq(t, `[[0,1]]`, string(payload.NewBoard))

	move, err := ParsePayload[protocol.MoveData](&protocol.Message{Payload: payload.MoveData})
	require.NoError(t, err)
	assert.Equal(t, protocol.MoveData{R1: 5, C1: 0, R2: 4, C2: 1, NextTurn: 2}, *move)
}

func TestParsePayload_Empty(t *testing.T) {
	t.Parallel()

	payload, err := ParsePayload[protocol.GetLeaderboardPayload](&protocol.Message{Type: protocol.MsgGetLeaderboard})
	require.NoError(t, err)
	assert.Equal(t, 0, payload.Limit)
}

func TestParsePayload_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParsePayload[protocol.JoinGamePayload](&protocol.Message{Payload: []byte(`{"color":"white"}`)})
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeRateLimit)
	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgError, msg.Type)
	assert.Equal(t, protocol.ErrCodeRateLimit, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeRateLimit], payload.Message)

	msg = NewErrorMessageWithText(protocol.ErrCodeUnknown, "boom")
	payload, err = ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, "boom", payload.Message)
}

func TestNewJoinError(t *testing.T) {
	t.Parallel()

	msg := NewJoinError("nope")
	assert.Equal(t, protocol.MsgJoinError, msg.Type)
	assert.JSONEq(t, `{"message":"nope"}`, string(msg.Payload))
}
