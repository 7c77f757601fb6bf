package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind 输入命令类型
type CommandKind int

const (
	CmdJoin CommandKind = iota + 1
	CmdMove
	CmdSurrender
	CmdNoMoves
	CmdAgain
	CmdTop
	CmdStats
	CmdPing
	CmdHelp
	CmdQuit
)

// Command 解析后的输入命令
type Command struct {
	Kind CommandKind

	// join；stats 只用 PlayerName
	RoomID     string
	PlayerName string
	Color      int

	// move，NextTurn 为 0 时由客户端推算
	R1, C1, R2, C2 int
	NextTurn       int

	// top
	Limit int
}

var errEmptyCommand = errors.New("empty command")

const helpText = "join <room> <name> <white|black> · move r1 c1 r2 c2 [next] · surrender · lost · again · top [n] · stats <name> · ping · quit"

// ParseCommand 解析一行输入
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return Command{}, errEmptyCommand
	}

	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "join", "j":
		return parseJoin(args)
	case "move", "m":
		return parseMove(args)
	case "surrender", "resign":
		return Command{Kind: CmdSurrender}, nil
	case "lost":
		return Command{Kind: CmdNoMoves}, nil
	case "again", "rematch":
		return Command{Kind: CmdAgain}, nil
	case "top", "leaderboard":
		cmd := Command{Kind: CmdTop, Limit: 10}
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return Command{}, fmt.Errorf("invalid limit %q", args[0])
			}
			cmd.Limit = n
		}
		return cmd, nil
	case "stats":
		if len(args) != 1 {
			return Command{}, errors.New("usage: stats <name>")
		}
		return Command{Kind: CmdStats, PlayerName: args[0]}, nil
	case "ping":
		return Command{Kind: CmdPing}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CmdQuit}, nil
	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func parseJoin(args []string) (Command, error) {
	if len(args) != 3 {
		return Command{}, errors.New("usage: join <room> <name> <white|black>")
	}
	color, err := parseColor(args[2])
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: CmdJoin, RoomID: args[0], PlayerName: args[1], Color: color}, nil
}

func parseColor(s string) (int, error) {
	switch strings.ToLower(s) {
	case "white", "w", "1":
		return 1, nil
	case "black", "b", "2":
		return 2, nil
	default:
		return 0, fmt.Errorf("invalid color %q, use white or black", s)
	}
}

func parseMove(args []string) (Command, error) {
	if len(args) != 4 && len(args) != 5 {
		return Command{}, errors.New("usage: move r1 c1 r2 c2 [next]")
	}
	nums := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return Command{}, fmt.Errorf("invalid number %q", a)
		}
		nums[i] = n
	}

	cmd := Command{Kind: CmdMove, R1: nums[0], C1: nums[1], R2: nums[2], C2: nums[3]}
	if len(nums) == 5 {
		if nums[4] != 1 && nums[4] != 2 {
			return Command{}, fmt.Errorf("next turn must be 1 or 2, got %d", nums[4])
		}
		cmd.NextTurn = nums[4]
	}
	return cmd, nil
}
