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

func TestJoin_CreatesWaitingRoom(t *testing.T) {
	t.Parallel()

	rm, lobby := newTestManager(t, RoomManagerDeps{})
	ann := testutil.NewSimpleClient("a")

	join(t, rm, ann, "r1", "ann", SeatWhite)

	initMsg := payloadOf[protocol.InitGamePayload](t, ann.Last(protocol.MsgInitGame))
	assert.Equal(t, "waiting", initMsg.Status)
	assert.Equal(t, 1, initMsg.Color)
	assert.Nil(t, initMsg.LastMove)

	view, ok := rm.GetRoom("r1")
	require.True(t, ok)
	assert.Equal(t, StatusWaiting, view.Status)
	assert.Equal(t, "ann", view.Players[0].Name)
	assert.Nil(t, view.Players[1])

	require.Equal(t, 1, lobby.Count())
	update := payloadOf[[]protocol.LobbyRoom](t, lobby.Messages()[0])
	assert.Equal(t, []protocol.LobbyRoom{{ID: "r1", HostName: "ann", HostColor: "White"}}, *update)

	binding, ok := rm.Registry().Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "r1", binding.RoomKey)
	assert.Equal(t, 1, binding.Seat)
}

func TestJoin_SecondPlayerStartsGame(t *testing.T) {
	t.Parallel()

	rm, lobby := newTestManager(t, RoomManagerDeps{})
	ann := testutil.NewSimpleClient("a")
	bob := testutil.NewSimpleClient("b")

	join(t, rm, ann, "r1", "ann", SeatWhite)
	join(t, rm, bob, "r1", "bob", SeatBlack)

	assert.Equal(t, []protocol.MessageType{protocol.MsgInitGame, protocol.MsgStartGame}, bob.Types())
	initMsg := payloadOf[protocol.InitGamePayload](t, bob.Last(protocol.MsgInitGame))
	assert.Equal(t, "playing", initMsg.Status)
	assert.Equal(t, 2, initMsg.Color)

	start := payloadOf[protocol.StartGamePayload](t, ann.Last(protocol.MsgStartGame))
	assert.Equal(t, 1, start.Turn)

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusPlaying, view.Status)
	assert.Equal(t, SeatWhite, view.Turn)
	assert.Equal(t, Timers{TurnTimeLeft: 120, DisconnectTimeLeft: 180}, view.Timers)

	// 开局后房间从大厅消失
	require.Equal(t, 2, lobby.Count())
	update := payloadOf[[]protocol.LobbyRoom](t, lobby.Messages()[1])
	assert.Empty(t, *update)
}

func TestJoin_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cmd  JoinCommand
	}{
		{"empty room", JoinCommand{RoomKey: " ", PlayerName: "ann", Seat: SeatWhite}},
		{"empty name", JoinCommand{RoomKey: "r1", PlayerName: "", Seat: SeatWhite}},
		{"bad seat", JoinCommand{RoomKey: "r1", PlayerName: "ann", Seat: 3}},
		{"no seat", JoinCommand{RoomKey: "r1", PlayerName: "ann", Seat: SeatNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rm, lobby := newTestManager(t, RoomManagerDeps{})
			tt.cmd.Client = testutil.NewSimpleClient("a")

			err := rm.Dispatch(tt.cmd)

			assert.ErrorIs(t, err, apperrors.ErrInvalidJoin)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, 0, rm.Count())
			assert.Equal(t, 0, lobby.Count())
		})
	}
}

func TestJoin_SeatTaken(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)
	mallory := testutil.NewSimpleClient("m")

	err := rm.Dispatch(JoinCommand{Client: mallory, RoomKey: "r1", PlayerName: "mallory", Seat: SeatWhite})

	assert.ErrorIs(t, err, apperrors.ErrSeatTaken)
	assert.Empty(t, mallory.SentMessages())
	assert.False(t, rm.Registry().IsSeated("m"))

	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusWaiting, view.Status)
	assert.Equal(t, "a", view.Players[0].ConnectionID)
}

func TestJoin_NameCollision(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)

	err := rm.Dispatch(JoinCommand{Client: testutil.NewSimpleClient("x"), RoomKey: "r1", PlayerName: "ann", Seat: SeatBlack})

	assert.ErrorIs(t, err, apperrors.ErrNameCollision)
	view, _ := rm.GetRoom("r1")
	assert.Equal(t, StatusWaiting, view.Status)
	assert.Nil(t, view.Players[1])
}

func TestJoin_RoomUnavailable(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)

	// 空座位但房间已不在等待中
	room := rm.lockRoom("r1")
	require.NotNil(t, room)
	room.Status = StatusEnded
	room.mu.Unlock()

	err := rm.Dispatch(JoinCommand{Client: testutil.NewSimpleClient("x"), RoomKey: "r1", PlayerName: "xena", Seat: SeatBlack})

	assert.ErrorIs(t, err, apperrors.ErrRoomUnavailable)
	assert.Equal(t, "Room is currently in progress or full.", err.Error())
}

func TestJoin_ReconnectDuringPlay(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann, _ := startedRoom(t, rm)

	// 白方走一步，留下棋盘和 lastMove
	require.NoError(t, rm.Dispatch(MoveCommand{
		ConnID:   "a",
		RoomKey:  "r1",
		Move:     protocol.MoveData{R1: 5, C1: 0, R2: 4, C2: 1, NextTurn: 2},
		RawMove:  []byte(`{"r1":5,"c1":0,"r2":4,"c2":1,"nextTurn":2}`),
		NewBoard: []byte(`[[0,2]]`),
	}))

	rm.Dispatch(DisconnectCommand{ConnID: "b"})
	notice := payloadOf[protocol.SystemMessagePayload](t, ann.Last(protocol.MsgSystemMessage))
	assert.Equal(t, "Opponent disconnected. Waiting 3 minutes...", notice.Text)

	rm.Tick()
	view, _ := rm.GetRoom("r1")
	assert.Equal(t, 179, view.Timers.DisconnectTimeLeft)
	assert.False(t, view.Players[1].Connected)
	assert.False(t, rm.Registry().IsSeated("b"))

	bob2 := testutil.NewSimpleClient("b2")
	join(t, rm, bob2, "r1", "bob", SeatBlack)

	initMsg := payloadOf[protocol.InitGamePayload](t, bob2.Last(protocol.MsgInitGame))
	assert.Equal(t, "playing", initMsg.Status)
	assert.Equal(t, 2, initMsg.Color)
	assert.Equal(t, 2, initMsg.Turn)
	assert.JSONEq(t, `[[0,2]]`, string(initMsg.Board))
	assert.Equal(t, &protocol.LastMove{R1: 5, C1: 0, R2: 4, C2: 1}, initMsg.LastMove)

	reconnected := payloadOf[protocol.SystemMessagePayload](t, ann.Last(protocol.MsgSystemMessage))
	assert.Equal(t, "bob reconnected.", reconnected.Text)

	view, _ = rm.GetRoom("r1")
	assert.True(t, view.Players[1].Connected)
	assert.Equal(t, "b2", view.Players[1].ConnectionID)
	assert.Equal(t, 180, view.Timers.DisconnectTimeLeft)
	assert.True(t, rm.Registry().IsSeated("b2"))
}

func TestJoin_ReconnectWhileWaitingSendsNoSystemMessage(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann := testutil.NewSimpleClient("a")
	join(t, rm, ann, "r1", "ann", SeatWhite)

	ann2 := testutil.NewSimpleClient("a2")
	join(t, rm, ann2, "r1", "ann", SeatWhite)

	initMsg := payloadOf[protocol.InitGamePayload](t, ann2.Last(protocol.MsgInitGame))
	assert.Equal(t, "waiting", initMsg.Status)
	assert.Empty(t, ann2.MessagesOfType(protocol.MsgSystemMessage))
	assert.False(t, rm.Registry().IsSeated("a"))

	// 旧连接后断开不影响新连接
	rm.Dispatch(DisconnectCommand{ConnID: "a"})
	assert.Equal(t, 1, rm.Count())
}

func TestJoin_SwitchingRoomsLeavesOldSeat(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann := testutil.NewSimpleClient("a")

	join(t, rm, ann, "r1", "ann", SeatWhite)
	join(t, rm, ann, "r2", "ann", SeatBlack)

	_, ok := rm.GetRoom("r1")
	assert.False(t, ok)
	_, ok = rm.GetRoom("r2")
	assert.True(t, ok)

	binding, _ := rm.Registry().Lookup("a")
	assert.Equal(t, "r2", binding.RoomKey)
}

func TestDisconnect_WaitingDestroysRoom(t *testing.T) {
	t.Parallel()

	rm, lobby := newTestManager(t, RoomManagerDeps{})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)

	rm.Dispatch(DisconnectCommand{ConnID: "a"})

	assert.Equal(t, 0, rm.Count())
	assert.False(t, rm.Registry().IsSeated("a"))
	require.Equal(t, 2, lobby.Count())
	update := payloadOf[[]protocol.LobbyRoom](t, lobby.Messages()[1])
	assert.Empty(t, *update)
}

func TestDisconnect_UnknownConnection(t *testing.T) {
	t.Parallel()

	rm, lobby := newTestManager(t, RoomManagerDeps{})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)

	assert.NotPanics(t, func() { rm.Dispatch(DisconnectCommand{ConnID: "nobody"}) })
	assert.Equal(t, 1, rm.Count())
	assert.Equal(t, 1, lobby.Count())
}

func TestDisconnect_StaleConnectionIgnored(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t, RoomManagerDeps{})
	ann, _ := startedRoom(t, rm)

	// 新连接接管黑方后，旧连接的断开不应影响座位
	join(t, rm, testutil.NewSimpleClient("b2"), "r1", "bob", SeatBlack)
	rm.Registry().Bind("b", "r1", int(SeatBlack))
	ann.Reset()

	rm.Dispatch(DisconnectCommand{ConnID: "b"})

	view, _ := rm.GetRoom("r1")
	assert.True(t, view.Players[1].Connected)
	assert.Equal(t, "b2", view.Players[1].ConnectionID)
	assert.Empty(t, ann.MessagesOfType(protocol.MsgSystemMessage))
	assert.False(t, rm.Registry().IsSeated("b"))
}

func TestDisconnect_EndedRoomCollectedWhenBothLeave(t *testing.T) {
	t.Parallel()

	rm, lobby := newTestManager(t, RoomManagerDeps{})
	startedRoom(t, rm)
	require.NoError(t, rm.Dispatch(EndCommand{RoomKey: "r1", Winner: SeatWhite, Reason: ReasonSurrendered}))
	before := lobby.Count()

	rm.Dispatch(DisconnectCommand{ConnID: "a"})
	assert.Equal(t, 1, rm.Count())
	assert.Equal(t, before, lobby.Count())

	rm.Dispatch(DisconnectCommand{ConnID: "b"})
	assert.Equal(t, 0, rm.Count())

	// 销毁房间也推送大厅
	require.Equal(t, before+1, lobby.Count())
	assert.Empty(t, *payloadOf[[]protocol.LobbyRoom](t, lobby.Messages()[before]))
}

func TestPersistence_MirrorsRoomSnapshots(t *testing.T) {
	t.Parallel()

	store := &testutil.MockSnapshotStore{}
	store.On("SaveRoom", mock.Anything, "r1", mock.AnythingOfType("*storage.RoomData")).Return(nil)
	store.On("DeleteRoom", mock.Anything, "r1").Return(nil)

	rm, _ := newTestManager(t, RoomManagerDeps{Store: store})
	join(t, rm, testutil.NewSimpleClient("a"), "r1", "ann", SeatWhite)
	rm.Dispatch(DisconnectCommand{ConnID: "a"})
	rm.WaitPending()

	store.AssertCalled(t, "SaveRoom", mock.Anything, "r1", mock.AnythingOfType("*storage.RoomData"))
	store.AssertCalled(t, "DeleteRoom", mock.Anything, "r1")
}
