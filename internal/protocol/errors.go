package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeInvalidRequest    = 1003 // 参数缺失或越界
	ErrCodeRoomNotFound      = 2001
	ErrCodeRoomUnavailable   = 2002 // 对局进行中或已满
	ErrCodeNotInRoom         = 2003
	ErrCodeSeatTaken         = 2004 // 该颜色已被他人占用
	ErrCodeNameTaken         = 2005 // 与对手重名
	ErrCodeGameNotPlaying    = 3001
	ErrCodeGameNotEnded      = 3002
	ErrCodeInvalidMove       = 3003
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "Unknown error.",
	ErrCodeInvalidMsg:        "Malformed message.",
	ErrCodeRateLimit:         "Too many messages, slow down.",
	ErrCodeInvalidRequest:    "Room id, player name and a color of 1 or 2 are required.",
	ErrCodeRoomNotFound:      "Room not found.",
	ErrCodeRoomUnavailable:   "Room is currently in progress or full.",
	ErrCodeNotInRoom:         "You are not seated in this room.",
	ErrCodeSeatTaken:         "That color is already taken by another player.",
	ErrCodeNameTaken:         "Name already used by the opponent. Choose a different name.",
	ErrCodeGameNotPlaying:    "Game is not in progress.",
	ErrCodeGameNotEnded:      "Game has not ended yet.",
	ErrCodeInvalidMove:       "Move must hand the turn to color 1 or 2.",
	ErrCodeServerMaintenance: "Server is under maintenance.",
}
