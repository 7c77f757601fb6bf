package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/checkers-duel/internal/client"
)

func (m *Model) View() string {
	var sb strings.Builder

	title := titleStyle("♟  Checkers Duel")
	if m.width > 0 {
		title = lipgloss.PlaceHorizontal(m.width-4, lipgloss.Center, title)
	}
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(m.connectionLine())
	sb.WriteString("\n\n")

	if m.state.Seated() {
		sb.WriteString(m.gameView())
	} else {
		sb.WriteString(m.lobbyView())
	}

	if m.state.LastError != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.state.LastError))
	}
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.status)
	}

	sb.WriteString(promptStyle.Render(m.input.View()))
	sb.WriteString("\n")
	if m.showHelp {
		sb.WriteString(helpStyle.Render(helpText))
	} else {
		sb.WriteString(helpStyle.Render("help · esc to quit"))
	}

	return docStyle.Render(sb.String())
}

func (m *Model) connectionLine() string {
	switch {
	case m.reconnecting != "":
		return noticeStyle.Render("🔄 " + m.reconnecting)
	case m.connected:
		return helpStyle.Render(fmt.Sprintf("🟢 online · %d ms", m.conn.GetLatency()))
	default:
		return helpStyle.Render("🔴 offline")
	}
}

// lobbyView 大厅：可加入的房间与排行榜
func (m *Model) lobbyView() string {
	var sb strings.Builder

	sb.WriteString("Open rooms\n")
	if len(m.state.Lobby) == 0 {
		sb.WriteString(helpStyle.Render("No rooms waiting. Create one with `join <room> <name> <white|black>`."))
	} else {
		sb.WriteString(boxStyle.Render(m.lobby.View()))
	}
	sb.WriteString("\n")

	if len(m.state.Leaderboard) > 0 {
		sb.WriteString("\nLeaderboard\n")
		var lb strings.Builder
		for _, e := range m.state.Leaderboard {
			fmt.Fprintf(&lb, "%2d. %-16s %d\n", e.Rank, e.PlayerName, e.Wins)
		}
		sb.WriteString(boxStyle.Render(strings.TrimRight(lb.String(), "\n")))
		sb.WriteString("\n")
	}

	if st := m.state.Stats; st != nil {
		sb.WriteString("\n")
		if st.Found {
			sb.WriteString(fmt.Sprintf("%s: %d games · %d wins · %d losses", st.PlayerName, st.TotalGames, st.Wins, st.Losses))
		} else {
			sb.WriteString(helpStyle.Render(fmt.Sprintf("No games recorded for %s.", st.PlayerName)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// gameView 对局：棋盘和侧边信息
func (m *Model) gameView() string {
	board := m.board.Render(m.state.LastMove)
	return lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", boxStyle.Render(m.sidePanel())) + "\n"
}

func (m *Model) sidePanel() string {
	gs := m.state
	var sb strings.Builder

	fmt.Fprintf(&sb, "Room:   %s\n", gs.RoomID)
	fmt.Fprintf(&sb, "You:    %s (%s)\n", gs.PlayerName, client.ColorName(gs.Color))
	fmt.Fprintf(&sb, "Status: %s\n", gs.Status)

	switch gs.Status {
	case "waiting":
		sb.WriteString("Waiting for an opponent...\n")
	case "playing":
		turn := client.ColorName(gs.Turn)
		if gs.MyTurn() {
			turn = TurnIcon + " " + turn + " (you)"
		}
		fmt.Fprintf(&sb, "Turn:   %s\n", turn)
		fmt.Fprintf(&sb, "Clock:  %ds\n", gs.TurnTimeLeft)
	case "ended":
		fmt.Fprintf(&sb, "Winner: %s\n", client.ColorName(gs.Winner))
		fmt.Fprintf(&sb, "Reason: %s\n", gs.Reason)
	}

	fmt.Fprintf(&sb, "Score:  White %d - %d Black\n", gs.Score.White, gs.Score.Black)
	fmt.Fprintf(&sb, "Games:  %d", gs.TotalGamesPlayed)

	for _, n := range gs.Notices {
		sb.WriteString("\n")
		sb.WriteString(noticeStyle.Render(n))
	}
	return sb.String()
}
