package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Key is one logical key event decoded from the input stream
type Key int

const (
	KeyChar Key = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyArrowUp
	KeyCtrlC
	KeyEOF
	KeyOther
)

// KeyEvent pairs the decoded key with its rune for KeyChar
type KeyEvent struct {
	Key  Key
	Rune rune
}

// ParseKey reads one logical key event from r. It understands the common
// xterm escape sequences for arrows, home/end and delete, and works on both
// raw-mode terminals and plain pipes (tests feed piped key bytes).
func ParseKey(r io.Reader) KeyEvent {
	b, ok := readByte(r)
	if !ok {
		return KeyEvent{Key: KeyEOF}
	}

	switch b {
	case '\n', '\r':
		return KeyEvent{Key: KeyEnter}
	case 0x03:
		return KeyEvent{Key: KeyCtrlC}
	case 0x7f, 0x08:
		return KeyEvent{Key: KeyBackspace}
	case 0x1b:
		return parseEscape(r)
	}
	if b >= 32 && b < 127 {
		return KeyEvent{Key: KeyChar, Rune: rune(b)}
	}
	return KeyEvent{Key: KeyOther}
}

func parseEscape(r io.Reader) KeyEvent {
	b, ok := readByte(r)
	if !ok {
		return KeyEvent{Key: KeyEOF}
	}
	if b != '[' {
		return KeyEvent{Key: KeyOther}
	}
	b, ok = readByte(r)
	if !ok {
		return KeyEvent{Key: KeyEOF}
	}
	switch b {
	case 'A':
		return KeyEvent{Key: KeyArrowUp}
	case 'C':
		return KeyEvent{Key: KeyRight}
	case 'D':
		return KeyEvent{Key: KeyLeft}
	case 'H':
		return KeyEvent{Key: KeyHome}
	case 'F':
		return KeyEvent{Key: KeyEnd}
	case '3':
		readByte(r) // trailing '~'
		return KeyEvent{Key: KeyDelete}
	case '1':
		readByte(r)
		return KeyEvent{Key: KeyHome}
	case '4':
		readByte(r)
		return KeyEvent{Key: KeyEnd}
	}
	return KeyEvent{Key: KeyOther}
}

func readByte(r io.Reader) (byte, bool) {
	var buf [1]byte
	n, err := r.Read(buf[:])
	if n == 0 || err != nil {
		return 0, false
	}
	return buf[0], true
}

// readKey reads one key event from stdin, switching into raw mode when stdin
// is a terminal so single keypresses arrive without Enter. Raw mode also
// turns Ctrl-C into a plain 0x03 byte, which ParseKey reports as KeyCtrlC.
func readKey() KeyEvent {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, old)
		}
	}
	return ParseKey(os.Stdin)
}
