package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  KeyEvent
	}{
		{"newline enters", "\n", KeyEvent{Key: KeyEnter}},
		{"carriage return enters", "\r", KeyEvent{Key: KeyEnter}},
		{"ctrl-c", "\x03", KeyEvent{Key: KeyCtrlC}},
		{"backspace", "\x7f", KeyEvent{Key: KeyBackspace}},
		{"printable char", "y", KeyEvent{Key: KeyChar, Rune: 'y'}},
		{"arrow up", "\x1b[A", KeyEvent{Key: KeyArrowUp}},
		{"arrow right", "\x1b[C", KeyEvent{Key: KeyRight}},
		{"arrow left", "\x1b[D", KeyEvent{Key: KeyLeft}},
		{"home", "\x1b[H", KeyEvent{Key: KeyHome}},
		{"end", "\x1b[F", KeyEvent{Key: KeyEnd}},
		{"delete", "\x1b[3~", KeyEvent{Key: KeyDelete}},
		{"empty input is eof", "", KeyEvent{Key: KeyEOF}},
		{"bare escape", "\x1bx", KeyEvent{Key: KeyOther}},
		{"control byte", "\x01", KeyEvent{Key: KeyOther}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKey(strings.NewReader(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseKeyConsumesSequence(t *testing.T) {
	r := strings.NewReader("\x1b[Ay")
	assert.Equal(t, KeyEvent{Key: KeyArrowUp}, ParseKey(r))
	assert.Equal(t, KeyEvent{Key: KeyChar, Rune: 'y'}, ParseKey(r))
}
