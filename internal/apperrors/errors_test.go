package apperrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/checkers-duel/internal/protocol"
)

func TestGameError_Messages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "That color is already taken by another player.", ErrSeatTaken.Error())
	assert.Equal(t, "Name already used by the opponent. Choose a different name.", ErrNameCollision.Error())
	assert.Equal(t, "Room is currently in progress or full.", ErrRoomUnavailable.Error())
	assert.Equal(t, protocol.ErrCodeSeatTaken, ErrSeatTaken.Code)
}

func TestKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
	}{
		{"seat taken", ErrSeatTaken, true, false},
		{"wrapped name collision", fmt.Errorf("join r1: %w", ErrNameCollision), true, false},
		{"room not found", ErrRoomNotFound, false, true},
		{"not in room", fmt.Errorf("move: %w", ErrNotInRoom), false, true},
		{"not playing", ErrGameNotPlaying, false, false},
		{"plain error", fmt.Errorf("boom"), false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
		})
	}
}

func TestAs(t *testing.T) {
	t.Parallel()

	ge, ok := As(fmt.Errorf("wrap: %w", ErrInvalidJoin))
	assert.True(t, ok)
	assert.Same(t, ErrInvalidJoin, ge)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
