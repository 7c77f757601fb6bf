package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/palemoky/checkers-duel/internal/protocol"
)

const boardSize = 8

// 棋子编码，与网页端一致：颜色 1 白 2 黑，王 +2
const (
	Empty     = 0
	WhiteMan  = 1
	BlackMan  = 2
	WhiteKing = 3
	BlackKing = 4
)

var errOffBoard = errors.New("square is off the board")

// Board 终端客户端本地棋盘，仅做展示和最基本的走子推演
type Board [boardSize][boardSize]int

// NewBoard 标准开局：黑方在上 (0-2 行)，白方在下 (5-7 行)，只用深色格
func NewBoard() Board {
	var b Board
	for r := range boardSize {
		for c := range boardSize {
			if (r+c)%2 == 0 {
				continue
			}
			switch {
			case r < 3:
				b[r][c] = BlackMan
			case r > 4:
				b[r][c] = WhiteMan
			}
		}
	}
	return b
}

// DecodeBoard 解析服务端转发的棋盘
func DecodeBoard(raw json.RawMessage) (Board, error) {
	var b Board
	if len(raw) == 0 || string(raw) == "null" {
		return NewBoard(), nil
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("decode board: %w", err)
	}
	return b, nil
}

// Encode 编码为二维数组
func (b Board) Encode() json.RawMessage {
	data, _ := json.Marshal(b)
	return data
}

// colorOf 棋子颜色
func colorOf(piece int) int {
	switch piece {
	case WhiteMan, WhiteKing:
		return 1
	case BlackMan, BlackKing:
		return 2
	default:
		return 0
	}
}

func onBoard(r, c int) bool {
	return r >= 0 && r < boardSize && c >= 0 && c < boardSize
}

// Apply 推演一步：移动棋子，跳吃时移除中间棋子，到底线升王
// 规则校验只做到能生成新棋盘为止，合法性由玩家自己负责。
func (b Board) Apply(m protocol.MoveData) (Board, bool, error) {
	if !onBoard(m.R1, m.C1) || !onBoard(m.R2, m.C2) {
		return b, false, errOffBoard
	}
	piece := b[m.R1][m.C1]
	if piece == Empty {
		return b, false, fmt.Errorf("no piece at (%d,%d)", m.R1, m.C1)
	}
	if b[m.R2][m.C2] != Empty {
		return b, false, fmt.Errorf("square (%d,%d) is occupied", m.R2, m.C2)
	}

	captured := false
	dr, dc := m.R2-m.R1, m.C2-m.C1
	if abs(dr) == 2 && abs(dc) == 2 {
		b[m.R1+dr/2][m.C1+dc/2] = Empty
		captured = true
	}

	b[m.R1][m.C1] = Empty
	switch {
	case piece == WhiteMan && m.R2 == 0:
		piece = WhiteKing
	case piece == BlackMan && m.R2 == boardSize-1:
		piece = BlackKing
	}
	b[m.R2][m.C2] = piece
	return b, captured, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Render 渲染棋盘，高亮上一步
func (b Board) Render(last *protocol.LastMove) string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := range boardSize {
		fmt.Fprintf(&sb, " %d ", c)
	}
	sb.WriteString("\n")

	for r := range boardSize {
		fmt.Fprintf(&sb, " %d ", r)
		for c := range boardSize {
			style := lightSquare
			if (r+c)%2 == 1 {
				style = darkSquare
			}
			if last != nil && ((r == last.R1 && c == last.C1) || (r == last.R2 && c == last.C2)) {
				style = lastMoveStyle
			}
			sb.WriteString(style.Render(" " + pieceIcon(b[r][c]) + " "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func pieceIcon(piece int) string {
	switch piece {
	case WhiteMan:
		return WhiteManIcon
	case WhiteKing:
		return WhiteKingIcon
	case BlackMan:
		return BlackManIcon
	case BlackKing:
		return BlackKingIcon
	default:
		return " "
	}
}
