package ui

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/nlshell/nlsh/internal/session"
)

// ForceInteractiveEnv makes the confirm loop read piped stdin as key bytes
// instead of auto-accepting. Used by the integration-style tests.
const ForceInteractiveEnv = "NLSH_FORCE_INTERACTIVE"

// Terminal implements session.UI against the controlling terminal. One
// keypress is one decision: Enter/y accepts, e explains, arrow-up edits,
// c copies, n cancels, Ctrl-C interrupts.
type Terminal struct{}

// NewTerminal creates the terminal-backed session UI
func NewTerminal() *Terminal {
	return &Terminal{}
}

func interactive() bool {
	if os.Getenv(ForceInteractiveEnv) != "" {
		return true
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Decide shows the proposal and blocks for one decision. On a
// non-interactive stdin the proposal is auto-accepted, which is what the
// piped/scripted invocation path wants.
func (t *Terminal) Decide(p session.Proposal, allowExplain bool) (session.Decision, error) {
	DisplayCommand(p.Raw)

	if !interactive() {
		return session.DecisionAccept, nil
	}

	t.printDecisionPrompt(allowExplain)

	for {
		ev := readKey()
		switch {
		case ev.Key == KeyEnter || (ev.Key == KeyChar && (ev.Rune == 'y' || ev.Rune == 'Y')):
			return session.DecisionAccept, nil
		case allowExplain && ev.Key == KeyChar && (ev.Rune == 'e' || ev.Rune == 'E'):
			return session.DecisionExplain, nil
		case ev.Key == KeyChar && (ev.Rune == 'c' || ev.Rune == 'C'):
			return session.DecisionCopy, nil
		case ev.Key == KeyArrowUp:
			return session.DecisionEdit, nil
		case ev.Key == KeyChar && (ev.Rune == 'n' || ev.Rune == 'N'):
			return session.DecisionCancel, nil
		case ev.Key == KeyCtrlC:
			return session.DecisionCancel, session.ErrInterrupted
		case ev.Key == KeyEOF:
			return session.DecisionCancel, nil
		}
	}
}

func (t *Terminal) printDecisionPrompt(allowExplain bool) {
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)
	cyan := color.New(color.FgCyan)

	if allowExplain {
		yellow.Fprint(os.Stderr, "Run this? ")
		gray.Fprintln(os.Stderr, "(Y/e/n)")
		cyan.Fprintln(os.Stderr, "[Y/Enter] execute  [E] explain  [C] copy  [Arrow Up] edit  [N] cancel")
	} else {
		yellow.Fprint(os.Stderr, "Run this? ")
		gray.Fprintln(os.Stderr, "(Y/n)")
		cyan.Fprintln(os.Stderr, "[Y/Enter] execute  [C] copy  [Arrow Up] edit  [N] cancel")
	}
}

// Edit presents the current command as a prefilled, editable buffer. Arrows,
// home/end, backspace and delete work; Enter confirms, EOF abandons the
// edit, Ctrl-C interrupts the whole session.
func (t *Terminal) Edit(current string) (string, bool, error) {
	if !interactive() {
		return current, false, nil
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintln(os.Stderr, "[Enter] confirm  [Ctrl+C] quit")

	buf := []rune(current)
	pos := len(buf)
	t.redrawEditLine(buf, pos)

	for {
		ev := readKey()
		switch ev.Key {
		case KeyEnter:
			fmt.Fprintln(os.Stderr)
			return string(buf), true, nil
		case KeyCtrlC:
			fmt.Fprintln(os.Stderr)
			return "", false, session.ErrInterrupted
		case KeyEOF:
			fmt.Fprintln(os.Stderr)
			return "", false, nil
		case KeyBackspace:
			if pos > 0 {
				buf = append(buf[:pos-1], buf[pos:]...)
				pos--
			}
		case KeyDelete:
			if pos < len(buf) {
				buf = append(buf[:pos], buf[pos+1:]...)
			}
		case KeyLeft:
			if pos > 0 {
				pos--
			}
		case KeyRight:
			if pos < len(buf) {
				pos++
			}
		case KeyHome:
			pos = 0
		case KeyEnd:
			pos = len(buf)
		case KeyChar:
			buf = append(buf[:pos], append([]rune{ev.Rune}, buf[pos:]...)...)
			pos++
		}
		t.redrawEditLine(buf, pos)
	}
}

// redrawEditLine repaints the edit buffer in place and positions the cursor.
// Column is 1-indexed; "$ " occupies the first two columns.
func (t *Terminal) redrawEditLine(buf []rune, pos int) {
	cyan := color.New(color.FgCyan)
	white := color.New(color.FgHiWhite, color.Bold)
	fmt.Fprint(os.Stderr, "\r\x1b[K")
	cyan.Fprint(os.Stderr, "$ ")
	white.Fprint(os.Stderr, string(buf))
	fmt.Fprintf(os.Stderr, "\x1b[%dG", 3+pos)
}

// ShowExplanation renders the explanation markdown
func (t *Terminal) ShowExplanation(text string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, FormatMarkdown(text))
}

// ShowError displays a session-level error
func (t *Terminal) ShowError(message string) {
	ShowError(message)
}

// Copy puts the command on the system clipboard
func (t *Terminal) Copy(command string) {
	if err := clipboard.WriteAll(command); err != nil {
		ShowError(fmt.Sprintf("failed to copy to clipboard: %v", err))
		return
	}
	ShowSuccess("command copied to clipboard")
}
