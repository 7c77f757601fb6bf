package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/checkers-duel/internal/apperrors"
	"github.com/palemoky/checkers-duel/internal/protocol"
	"github.com/palemoky/checkers-duel/internal/testutil"
)

func moveCmd(connID string, next int) MoveCommand {
	return MoveCommand{
		ConnID:   connID,
		RoomKey:  "r1",
		Move:     protocol.MoveData{R1: 5, C1: 0, R2: 4, C2: 1, NextTurn: next},
		RawMove:  []byte(`{"r1":5,"c1":0,"r2":4,"c2":1,"nextTurn":2}`),
		NewBoard: []byte(`[[0,1],[2,0]]`),
	}
}

func TestApplyMove_BroadcastsToRoom(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann, bob := startedRoom(t, rm)

	require.NoError(t, rm.Dispatch(moveCmd("a", 2)))

	for _, c := range []*testutil.SimpleClient{ann, bob} {
		sync := payloadOf[protocol.SyncMovePayload](t, c.Last(protocol.MsgSyncMove))
		assert.Equal(t, 2, sync.NextTurn)
		assert.JSONEq(t, `[[0,1],[2,0]]`, string(sync.NewBoard))
		assert.JSONEq(t, `{"r1":5,"c1":0,"r2":4,"c2":1,"nextTurn":2}`, string(sync.MoveData))
		assert.Equal(t, &protocol.LastMove{R1: 5, C1: 0, R2: 4, C2: 1}, sync.LastMove)
	}

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, SeatBlack, view.Turn)
	assert.True(t, view.HasBoard)
	assert.Equal(t, &protocol.LastMove{R1: 5, C1: 0, R2: 4, C2: 1}, view.LastMove)
}

func TestApplyMove_TurnTimerReset(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	startedRoom(t, rm)

	rm.Tick()
	view, _ := rm.GetRoom("r1")
	require.Equal(t, 119, view.Timers.TurnTimeLeft)

	// 轮次交给对手，计时重置
	require.NoError(t, rm.Dispatch(moveCmd("a", 2)))
	view, _ = rm.GetRoom("r1")
	assert.Equal(t, 120, view.Timers.TurnTimeLeft)

	// 连跳：轮次仍是自己，计时不重置
	rm.Tick()
	require.NoError(t, rm.Dispatch(moveCmd("b", 2)))
	view, _ = rm.GetRoom("r1")
	assert.Equal(t, 119, view.Timers.TurnTimeLeft)
	assert.Equal(t, SeatBlack, view.Turn)
}

func TestApplyMove_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(rm *RoomManager)
		cmd     MoveCommand
		wantErr error
	}{
		{
			name:    "room absent",
			cmd:     MoveCommand{ConnID: "a", RoomKey: "nope", Move: protocol.MoveData{NextTurn: 2}},
			wantErr: apperrors.ErrRoomNotFound,
		},
		{
			name:    "not seated",
			cmd:     moveCmd("stranger", 2),
			wantErr: apperrors.ErrNotInRoom,
		},
		{
			name: "seated elsewhere",
			mutate: func(rm *RoomManager) {
				rm.Registry().Bind("stranger", "other", 1)
			},
			cmd:     moveCmd("stranger", 2),
			wantErr: apperrors.ErrNotInRoom,
		},
		{
			name:    "bad next turn",
			cmd:     moveCmd("a", 5),
			wantErr: apperrors.ErrInvalidMove,
		},
		{
			name: "game ended",
			mutate: func(rm *RoomManager) {
				_ = rm.Dispatch(EndCommand{RoomKey: "r1", Winner: SeatWhite, Reason: ReasonNoMoves})
			},
			cmd:     moveCmd("a", 2),
			wantErr: apperrors.ErrGameNotPlaying,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm, _ := newTestManager(t, RoomManagerDeps{})
			ann, bob := startedRoom(t, rm)
			if tt.mutate != nil {
				tt.mutate(rm)
			}

			err := rm.Dispatch(tt.cmd)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, ann.MessagesOfType(protocol.MsgSyncMove))
			assert.Empty(t, bob.MessagesOfType(protocol.MsgSyncMove))
			view, _ := rm.GetRoom("r1")
			assert.Equal(t, SeatWhite, view.Turn)
			assert.Nil(t, view.LastMove)
		})
	}
}

func TestSyncBoard(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann := testutil.NewSimpleClient("a")
	join(t, rm, ann, "r1", "ann", SeatWhite)
	ann.Reset()

	require.NoError(t, rm.Dispatch(BoardSyncCommand{ConnID: "a", RoomKey: "r1", Board: []byte(`[[1]]`)}))

	view, _ := rm.GetRoom("r1")
	assert.True(t, view.HasBoard)
	assert.Empty(t, ann.SentMessages())

	err := rm.Dispatch(BoardSyncCommand{ConnID: "a", RoomKey: "missing", Board: []byte(`[]`)})
	assert.True(t, apperrors.IsNotFound(err))

	err = rm.Dispatch(BoardSyncCommand{ConnID: "x", RoomKey: "r1", Board: []byte(`[]`)})
	assert.ErrorIs(t, err, apperrors.ErrNotInRoom)
}

func TestEndGame_Surrender(t *testing.T) {
	t.Parallel()

	results := &testutil.MockLeaderboard{}
	results.On("RecordResult", mock.Anything, "bob", "ann").Return(nil).Once()

	rm, _ := newTestManager(t, RoomManagerDeps{Results: results})
	ann, bob := startedRoom(t, rm)

	require.NoError(t, rm.Dispatch(EndCommand{RoomKey: "r1", Winner: SeatBlack, Reason: ReasonSurrendered, OnlyWhilePlaying: true}))

	for _, c := range []*testutil.SimpleClient{ann, bob} {
		over := payloadOf[protocol.GameOverPayload](t, c.Last(protocol.MsgGameOver))
		assert.Equal(t, 2, over.Winner)
		assert.Equal(t, "Opponent Surrendered", over.Reason)
		assert.Equal(t, protocol.Score{White: 0, Black: 1}, over.Score)
		assert.Equal(t, 1, over.TotalGamesPlayed)
	}

	// 已结束时再次认输不生效
	err := rm.Dispatch(EndCommand{RoomKey: "r1", Winner: SeatBlack, Reason: ReasonSurrendered, OnlyWhilePlaying: true})
	assert.ErrorIs(t, err, apperrors.ErrGameNotPlaying)

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusEnded, view.Status)
	assert.Equal(t, 1, view.TotalGamesPlayed)
	assert.Len(t, ann.MessagesOfType(protocol.MsgGameOver), 1)

	rm.WaitPending()
	results.AssertExpectations(t)
}

func TestEndGame_RequiresWinner(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann, _ := startedRoom(t, rm)

	for _, winner := range []Seat{SeatNone, Seat(7)} {
		err := rm.Dispatch(EndCommand{RoomKey: "r1", Winner: winner, Reason: ReasonSurrendered})
		assert.ErrorIs(t, err, apperrors.ErrNoWinner)
	}

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusPlaying, view.Status)
	assert.Equal(t, 0, view.TotalGamesPlayed)
	assert.Equal(t, Score{}, view.Score)
	assert.Empty(t, ann.MessagesOfType(protocol.MsgGameOver))
}

func TestEndGame_RoomAbsent(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	err := rm.Dispatch(EndCommand{RoomKey: "ghost", Winner: SeatWhite, Reason: ReasonNoMoves})
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestPlayAgain(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann, bob := startedRoom(t, rm)

	assert.ErrorIs(t, rm.Dispatch(PlayAgainCommand{RoomKey: "r1"}), apperrors.ErrGameNotEnded)

	require.NoError(t, rm.Dispatch(moveCmd("a", 2)))
	rm.Tick()
	require.NoError(t, rm.Dispatch(EndCommand{RoomKey: "r1", Winner: SeatWhite, Reason: ReasonNoMoves, OnlyWhilePlaying: true}))

	require.NoError(t, rm.Dispatch(PlayAgainCommand{RoomKey: "r1"}))

	for _, c := range []*testutil.SimpleClient{ann, bob} {
		msg := c.Last(protocol.MsgResetBoard)
		require.NotNil(t, msg)
		assert.JSONEq(t, `{}`, string(msg.Payload))
	}

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusPlaying, view.Status)
	assert.Equal(t, SeatWhite, view.Turn)
	assert.Nil(t, view.LastMove)
	assert.Equal(t, Timers{TurnTimeLeft: 120, DisconnectTimeLeft: 180}, view.Timers)
	assert.Equal(t, Score{White: 1}, view.Score)
	assert.Equal(t, 1, view.TotalGamesPlayed)

	assert.ErrorIs(t, rm.Dispatch(PlayAgainCommand{RoomKey: "ghost"}), apperrors.ErrRoomNotFound)
}
