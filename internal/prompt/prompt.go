// Package prompt holds the generate/explain templates consumed by the
// provider client, along with the cleanup applied to model output before it
// is treated as a shell command.
package prompt

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Kind names a template
type Kind string

const (
	Generate Kind = "generate"
	Explain  Kind = "explain"
)

// DefaultGenerateTemplate is the compiled-in command generation prompt.
// Placeholders are filled by BuildGenerate.
const DefaultGenerateTemplate = `You are a shell command translator. Convert the user's request into a shell command for {os}.

Environment context:
- Current dir: {cwd}
- Home dir: {home}
- User: {user}
- Shell: {shell}

Rules:
- Output ONLY the command, nothing else
- No explanations, no markdown, no backticks
- If unclear, make a reasonable assumption
- Prefer simple, common commands
- Use appropriate shell syntax and commands for this environment
- Consider the current directory context when generating paths
- Use ~ for home directory when appropriate

User request: {request}`

// DefaultExplainTemplate is the compiled-in explanation prompt.
const DefaultExplainTemplate = `Explain the following shell command to someone comfortable with the terminal but unfamiliar with this particular invocation.

Command: {command}

Rules:
- Start with a one-sentence summary of what the command does
- Then break down each flag or pipeline stage briefly
- Mention anything destructive or surprising
- Keep it short; use plain markdown`

// Valid reports whether a template contains the placeholder its kind requires.
// A generate template without {request} or an explain template without
// {command} would silently drop the user's input, so such overrides are
// ignored at lookup time.
func Valid(kind Kind, text string) bool {
	switch kind {
	case Generate:
		return strings.Contains(text, "{request}")
	case Explain:
		return strings.Contains(text, "{command}")
	}
	return false
}

// Default returns the compiled-in template for kind
func Default(kind Kind) string {
	if kind == Explain {
		return DefaultExplainTemplate
	}
	return DefaultGenerateTemplate
}

// BuildGenerate expands the generate template with the current environment
// and the user's request.
func BuildGenerate(template, request string) string {
	r := strings.NewReplacer(
		"{os}", osName(),
		"{cwd}", workingDir(),
		"{home}", homeDir(),
		"{user}", userName(),
		"{shell}", shellName(),
		"{request}", request,
	)
	return r.Replace(template)
}

// BuildExplain expands the explain template with the command under review
func BuildExplain(template, command string) string {
	return strings.ReplaceAll(template, "{command}", command)
}

// CleanResponse reduces raw model output to a single trimmed command line.
// Models frequently wrap the command in a code fence, prefix it with "$ ", or
// append prose after it; all of that is stripped.
func CleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		for _, lang := range []string{"shell", "bash", "zsh", "fish", "sh"} {
			cleaned = strings.TrimPrefix(cleaned, lang)
		}
		if idx := strings.Index(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
	}

	cleaned = strings.TrimSpace(cleaned)
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "$ ")
		line = strings.Trim(line, "`")
		if line != "" {
			return line
		}
	}
	return ""
}

// CleanExplanation trims fences and whitespace from explanation text while
// preserving its internal markdown.
func CleanExplanation(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```markdown")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func osName() string {
	switch runtime.GOOS {
	case "linux":
		return linuxName()
	case "darwin":
		return "macOS"
	case "windows":
		return "Windows"
	default:
		return runtime.GOOS
	}
}

func linuxName() string {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return "linux"
	}
	var name, version string
	for _, line := range strings.Split(string(data), "\n") {
		if v, ok := strings.CutPrefix(line, "NAME="); ok {
			name = strings.Trim(v, `"`)
		} else if v, ok := strings.CutPrefix(line, "VERSION_ID="); ok {
			version = strings.Trim(v, `"`)
		}
	}
	switch {
	case name != "" && version != "":
		return "linux (" + name + " " + version + ")"
	case name != "":
		return "linux (" + name + ")"
	default:
		return "linux"
	}
}

func workingDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "/"
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}

func userName() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "user"
}

func shellName() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return filepath.Base(sh)
	}
	return "sh"
}
