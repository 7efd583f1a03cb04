package prompt

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
)

func TestIsYes(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{"yes", true},
		{" YES ", true},
		{"Y\n", true},
		{"", false},
		{"n", false},
		{"no", false},
		{"yep", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.answer), func(t *testing.T) {
			assert.Equal(t, tt.want, IsYes(tt.answer))
		})
	}
}

func TestMapErr(t *testing.T) {
	assert.ErrorIs(t, mapErr(liner.ErrPromptAborted), ErrAborted)
	assert.ErrorIs(t, mapErr(io.EOF), ErrAborted)
	assert.NoError(t, mapErr(nil))

	other := errors.New("tty gone")
	assert.Equal(t, other, mapErr(other))
}

func TestLinerCloseWithoutUse(t *testing.T) {
	l := NewLiner("")
	assert.NoError(t, l.Close(), "closing an unused liner must not touch the terminal")
}
