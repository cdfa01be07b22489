// Package shell runs accepted commands in the context of the user's
// interactive shell and records them in that shell's history. Execution in
// context is achieved either by emitting the command for the installed
// wrapper function to eval, or by running it through the user's own shell
// with passthrough stdio; the history append is a separate best-effort write
// to the shell's history file.
package shell

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"
)

// Integration is the capability contract the session hands an accepted
// command to: run it in the invoking shell's context, and make it part of
// that shell's persistent history.
type Integration interface {
	Execute(command string) (int, error)
	AppendHistory(command string) error
}

// Injector implements Integration for bash, zsh, fish and plain sh.
// Zero-value fields are resolved from the environment.
type Injector struct {
	Shell    string // shell binary, defaults to $SHELL or /bin/sh
	HistFile string // history file, defaults to $HISTFILE or the shell's convention
	Debug    bool
}

// NewInjector creates an injector for the invoking shell
func NewInjector() *Injector {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return &Injector{Shell: sh}
}

// Run appends the command to shell history (best-effort) and then executes
// it. When stdout is captured — the shell wrapper invokes us inside $(...) —
// the command is emitted for the wrapper to eval so it runs with the parent
// shell's environment, cwd and aliases. A failed history append warns and
// never blocks execution.
func (j *Injector) Run(command string) (int, error) {
	if err := j.AppendHistory(command); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record shell history: %v\n", err)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) || os.Getenv("NLSH_FORCE_INTERACTIVE") != "" {
		return j.Execute(command)
	}

	fmt.Println(command)
	return 0, nil
}

// Execute runs the command through the user's shell with passthrough stdio
// and surfaces the underlying exit status unchanged. cd/export/unset mutate
// this process so the interactive loop behaves like a shell.
func (j *Injector) Execute(command string) (int, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return 0, nil
	}

	if handled, err := j.runBuiltin(trimmed); handled {
		if err != nil {
			return 1, err
		}
		return 0, nil
	}

	if j.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Shell: executing %q via %s\n", trimmed, j.Shell)
	}

	cmd := exec.Command(j.Shell, "-c", trimmed)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("command failed: %w", err)
}

// runBuiltin handles the few commands that must affect this process rather
// than a child shell. Only bare single-line invocations qualify.
func (j *Injector) runBuiltin(command string) (bool, error) {
	if strings.ContainsAny(command, "\n|&;<>$`") {
		return false, nil
	}
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "cd":
		target := ""
		if len(parts) > 1 {
			target = parts[1]
		}
		if target == "" || target == "~" {
			home, err := os.UserHomeDir()
			if err != nil {
				return true, err
			}
			target = home
		} else if strings.HasPrefix(target, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return true, err
			}
			target = filepath.Join(home, target[2:])
		}
		return true, os.Chdir(target)
	case "export":
		for _, part := range parts[1:] {
			if key, value, ok := strings.Cut(part, "="); ok {
				os.Setenv(key, value)
			}
		}
		return true, nil
	case "unset":
		for _, name := range parts[1:] {
			os.Unsetenv(name)
		}
		return true, nil
	}
	return false, nil
}

// AppendHistory writes the command to the shell's history file so it shows
// up exactly as if the user had typed it.
func (j *Injector) AppendHistory(command string) error {
	path, err := j.historyPath()
	if err != nil {
		return err
	}

	existing, _ := os.ReadFile(path)
	entry := formatHistoryEntry(j.shellName(), command, existing, time.Now())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(entry)
	return err
}

func (j *Injector) shellName() string {
	return filepath.Base(j.Shell)
}

func (j *Injector) historyPath() (string, error) {
	if j.HistFile != "" {
		return j.HistFile, nil
	}
	if hf := os.Getenv("HISTFILE"); hf != "" {
		return hf, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	switch j.shellName() {
	case "zsh":
		return filepath.Join(home, ".zsh_history"), nil
	case "fish":
		return filepath.Join(home, ".local/share/fish/fish_history"), nil
	default:
		return filepath.Join(home, ".bash_history"), nil
	}
}

// formatHistoryEntry renders one history record in the target shell's
// on-disk format. zsh extended format is used only when the existing file
// already uses it.
func formatHistoryEntry(shellName, command string, existing []byte, now time.Time) string {
	switch shellName {
	case "zsh":
		if strings.HasPrefix(string(existing), ": ") {
			return fmt.Sprintf(": %d:0;%s\n", now.Unix(), command)
		}
		return command + "\n"
	case "fish":
		return fmt.Sprintf("- cmd: %s\n  when: %d\n", command, now.Unix())
	default:
		return command + "\n"
	}
}
