package ui

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/checkers-duel/internal/client"
	"github.com/palemoky/checkers-duel/internal/logger"
	"github.com/palemoky/checkers-duel/internal/protocol"
)

// Conn 终端界面依赖的连接能力，由 client.Client 实现
type Conn interface {
	Connect() error
	Receive() (*protocol.Message, error)
	StartHeartbeat()
	JoinGame(roomID, playerName string, color int) error
	MakeMove(roomID string, move protocol.MoveData, newBoard json.RawMessage) error
	SyncBoard(roomID string, board json.RawMessage) error
	Surrender() error
	DeclareNoMoves() error
	PlayAgain() error
	GetLeaderboard(limit int) error
	GetPlayerStats(name string) error
	Ping() error
	GetLatency() int64
	Close()
}

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg 正在重连消息
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg 重连成功消息
type ReconnectSuccessMsg struct{}

// Model 终端大厅与对局界面
type Model struct {
	conn   Conn
	events chan tea.Msg // 重连等异步事件
	state  *client.GameState
	board  Board

	connected    bool
	reconnecting string
	status       string // 本地操作反馈
	showHelp     bool

	input  textinput.Model
	lobby  table.Model
	width  int
	height int
}

// NewOnlineModel 创建连接到 serverURL 的界面
func NewOnlineModel(serverURL string) *Model {
	c := client.NewClient(serverURL)
	events := make(chan tea.Msg, 10)

	// 重连回调通过 channel 送进 Bubble Tea
	c.OnReconnecting = func(attempt, maxTries int) {
		select {
		case events <- ReconnectingMsg{Attempt: attempt, MaxTries: maxTries}:
		default:
		}
	}
	c.OnReconnect = func() {
		select {
		case events <- ReconnectSuccessMsg{}:
		default:
		}
	}

	return NewModel(c, events)
}

// NewModel 使用给定连接创建界面，events 可为 nil
func NewModel(conn Conn, events chan tea.Msg) *Model {
	ti := textinput.New()
	ti.Placeholder = "join <room> <name> <white|black>"
	ti.CharLimit = 64
	ti.Width = 48
	ti.Prompt = "> "
	ti.Focus()

	lobby := table.New(
		table.WithColumns([]table.Column{
			{Title: "Room", Width: 16},
			{Title: "Host", Width: 16},
			{Title: "Color", Width: 8},
		}),
		table.WithHeight(6),
	)

	return &Model{
		conn:   conn,
		events: events,
		state:  client.NewGameState(),
		board:  NewBoard(),
		input:  ti,
		lobby:  lobby,
		status: "Connecting...",
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), textinput.Blink, m.listenEvents())
}

// connect 连接服务器
func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		m.conn.StartHeartbeat()
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *Model) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.conn.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

// listenEvents 监听重连事件
func (m *Model) listenEvents() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m.quit()
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()
			return m.execute(line)
		}

	case ConnectedMsg:
		m.connected = true
		m.status = "Connected. Type `join <room> <name> <white|black>` or pick a room from the lobby."
		return m, m.listenForMessages()

	case ConnectionErrorMsg:
		m.connected = false
		m.status = fmt.Sprintf("Disconnected: %v", msg.Err)
		return m, nil

	case ReconnectingMsg:
		m.reconnecting = fmt.Sprintf("Reconnecting (%d/%d)...", msg.Attempt, msg.MaxTries)
		return m, m.listenEvents()

	case ReconnectSuccessMsg:
		m.reconnecting = ""
		m.status = "Reconnected."
		return m, m.listenEvents()

	case ServerMessage:
		m.handleServerMessage(msg.Msg)
		return m, m.listenForMessages()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.conn.Close()
	return m, tea.Quit
}

// handleServerMessage 更新本地状态并做必要的回应
func (m *Model) handleServerMessage(msg *protocol.Message) {
	if err := m.state.Apply(msg); err != nil {
		logger.L().Warn("处理服务器消息失败", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	switch msg.Type {
	case protocol.MsgInitGame, protocol.MsgSyncMove:
		m.loadBoard()
	case protocol.MsgStartGame:
		m.loadBoard()
		m.syncInitialBoard()
	case protocol.MsgResetBoard:
		m.board = NewBoard()
		m.syncInitialBoard()
	case protocol.MsgLobbyUpdate:
		m.refreshLobby()
	case protocol.MsgGameOver:
		m.status = "Game over. Type `again` for a rematch."
	}
}

// loadBoard 采用服务端权威棋盘，解析失败时保留本地棋盘
func (m *Model) loadBoard() {
	b, err := DecodeBoard(m.state.Board)
	if err != nil {
		logger.L().Debug("棋盘解析失败", zap.Error(err))
		return
	}
	m.board = b
}

// syncInitialBoard 白方在开局时上报初始棋盘
func (m *Model) syncInitialBoard() {
	if m.state.Color != 1 || len(m.state.Board) > 0 {
		return
	}
	if err := m.conn.SyncBoard(m.state.RoomID, m.board.Encode()); err != nil {
		m.status = err.Error()
	}
}

func (m *Model) refreshLobby() {
	rows := make([]table.Row, 0, len(m.state.Lobby))
	for _, r := range m.state.Lobby {
		rows = append(rows, table.Row{r.ID, r.HostName, r.HostColor})
	}
	m.lobby.SetRows(rows)
}

// execute 执行一行命令
func (m *Model) execute(line string) (tea.Model, tea.Cmd) {
	cmd, err := ParseCommand(line)
	if err != nil {
		if !errors.Is(err, errEmptyCommand) {
			m.status = err.Error()
		}
		return m, nil
	}

	switch cmd.Kind {
	case CmdQuit:
		return m.quit()
	case CmdHelp:
		m.showHelp = !m.showHelp
		return m, nil
	case CmdJoin:
		m.state.SetSeat(cmd.RoomID, cmd.PlayerName)
		m.state.LastError = ""
		err = m.conn.JoinGame(cmd.RoomID, cmd.PlayerName, cmd.Color)
	case CmdMove:
		err = m.move(cmd)
	case CmdSurrender:
		err = m.conn.Surrender()
	case CmdNoMoves:
		err = m.conn.DeclareNoMoves()
	case CmdAgain:
		err = m.conn.PlayAgain()
	case CmdTop:
		err = m.conn.GetLeaderboard(cmd.Limit)
	case CmdStats:
		err = m.conn.GetPlayerStats(cmd.PlayerName)
	case CmdPing:
		err = m.conn.Ping()
	}

	if err != nil {
		m.status = err.Error()
	} else {
		m.status = ""
	}
	return m, nil
}

// move 本地推演新棋盘后上报
func (m *Model) move(cmd Command) error {
	if !m.state.Seated() {
		return errors.New("join a room first")
	}
	if !m.state.MyTurn() {
		return errors.New("not your turn")
	}

	next := cmd.NextTurn
	if next == 0 {
		next = 3 - m.state.Color
	}
	move := protocol.MoveData{R1: cmd.R1, C1: cmd.C1, R2: cmd.R2, C2: cmd.C2, NextTurn: next}

	if !onBoard(cmd.R1, cmd.C1) {
		return errOffBoard
	}
	if colorOf(m.board[cmd.R1][cmd.C1]) != m.state.Color {
		return fmt.Errorf("no piece of yours at (%d,%d)", cmd.R1, cmd.C1)
	}
	newBoard, _, err := m.board.Apply(move)
	if err != nil {
		return err
	}
	return m.conn.MakeMove(m.state.RoomID, move, newBoard.Encode())
}
