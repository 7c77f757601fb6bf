package apperrors

import (
	"errors"

	"github.com/palemoky/checkers-duel/internal/protocol"
)

// Kind 错误分类
type Kind int

const (
	// KindValidation 请求不合法，需要回复请求方
	KindValidation Kind = iota
	// KindNotFound 房间或座位不存在，按约定静默忽略
	KindNotFound
	// KindInvalidState 当前状态不允许该操作
	KindInvalidState
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Kind    Kind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

func newError(code int, kind Kind) *GameError {
	return &GameError{Code: code, Kind: kind, Message: protocol.ErrorMessages[code]}
}

// 预定义错误
var (
	ErrInvalidJoin     = newError(protocol.ErrCodeInvalidRequest, KindValidation)
	ErrSeatTaken       = newError(protocol.ErrCodeSeatTaken, KindValidation)
	ErrNameCollision   = newError(protocol.ErrCodeNameTaken, KindValidation)
	ErrRoomUnavailable = newError(protocol.ErrCodeRoomUnavailable, KindValidation)
	ErrMaintenance     = newError(protocol.ErrCodeServerMaintenance, KindValidation)
	ErrRoomNotFound    = newError(protocol.ErrCodeRoomNotFound, KindNotFound)
	ErrNotInRoom       = newError(protocol.ErrCodeNotInRoom, KindNotFound)
	ErrGameNotPlaying  = newError(protocol.ErrCodeGameNotPlaying, KindInvalidState)
	ErrGameNotEnded    = newError(protocol.ErrCodeGameNotEnded, KindInvalidState)
	ErrInvalidMove     = newError(protocol.ErrCodeInvalidMove, KindValidation)
	ErrNoWinner        = newError(protocol.ErrCodeInvalidRequest, KindValidation)
)

// As 提取 GameError
func As(err error) (*GameError, bool) {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsValidation 是否为需要回复请求方的校验错误
func IsValidation(err error) bool {
	ge, ok := As(err)
	return ok && ge.Kind == KindValidation
}

// IsNotFound 是否为房间/座位不存在
func IsNotFound(err error) bool {
	ge, ok := As(err)
	return ok && ge.Kind == KindNotFound
}
