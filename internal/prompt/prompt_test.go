package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain command",
			input:    "ls -la",
			expected: "ls -la",
		},
		{
			name:     "surrounding whitespace",
			input:    "  ls -la\n",
			expected: "ls -la",
		},
		{
			name:     "bash code fence",
			input:    "```bash\nfind . -name '*.go'\n```",
			expected: "find . -name '*.go'",
		},
		{
			name:     "fence without language",
			input:    "```\ndu -sh *\n```",
			expected: "du -sh *",
		},
		{
			name:     "shell language tag",
			input:    "```shell\ngrep -r TODO .\n```",
			expected: "grep -r TODO .",
		},
		{
			name:     "dollar prefix",
			input:    "$ tar -czf backup.tar.gz .",
			expected: "tar -czf backup.tar.gz .",
		},
		{
			name:     "inline backticks",
			input:    "`uptime`",
			expected: "uptime",
		},
		{
			name:     "command followed by prose",
			input:    "df -h\n\nThis shows disk usage in human-readable form.",
			expected: "df -h",
		},
		{
			name:     "leading blank lines",
			input:    "\n\n  \nwhoami",
			expected: "whoami",
		},
		{
			name:     "empty response",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t\n",
			expected: "",
		},
		{
			name:     "fence with only whitespace inside",
			input:    "```bash\n\n```",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanResponse(tt.input))
		})
	}
}

func TestCleanExplanation(t *testing.T) {
	input := "```markdown\n# rm -rf\n\nRemoves files **recursively**.\n```"
	cleaned := CleanExplanation(input)
	assert.Equal(t, "# rm -rf\n\nRemoves files **recursively**.", cleaned)

	// internal markdown survives
	assert.Contains(t, cleaned, "**recursively**")
}

func TestBuildGenerate(t *testing.T) {
	template := "os={os} request={request}"
	built := BuildGenerate(template, "list all files")

	assert.Contains(t, built, "request=list all files")
	assert.NotContains(t, built, "{request}")
	assert.NotContains(t, built, "{os}")
}

func TestBuildGeneratePlaceholdersAreLiteral(t *testing.T) {
	// a request containing placeholder syntax must not be expanded again
	built := BuildGenerate(DefaultGenerateTemplate, "print {cwd} literally")
	assert.Contains(t, built, "print {cwd} literally")
}

func TestBuildExplain(t *testing.T) {
	built := BuildExplain(DefaultExplainTemplate, "ls -la")
	assert.Contains(t, built, "Command: ls -la")
	assert.NotContains(t, built, "{command}")
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Generate, "do {request} now"))
	assert.False(t, Valid(Generate, "no placeholder here"))
	assert.True(t, Valid(Explain, "what does {command} do"))
	assert.False(t, Valid(Explain, "nothing"))
	assert.False(t, Valid(Kind("bogus"), "{request} {command}"))
}

func TestStoreDefaults(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.Equal(t, DefaultGenerateTemplate, store.Get(Generate))
	assert.Equal(t, DefaultExplainTemplate, store.Get(Explain))

	_, ok := store.Override(Generate)
	assert.False(t, ok)
}

func TestStoreSetAndGet(t *testing.T) {
	store := NewStore(t.TempDir())

	custom := "custom template with {request}"
	require.NoError(t, store.Set(Generate, custom))

	assert.Equal(t, custom, store.Get(Generate))

	// the other kind is unaffected
	assert.Equal(t, DefaultExplainTemplate, store.Get(Explain))
}

func TestStoreInvalidOverrideIgnored(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Set(Generate, "missing the placeholder"))

	// override exists on disk but lookup falls back to the default
	_, ok := store.Override(Generate)
	assert.True(t, ok)
	assert.Equal(t, DefaultGenerateTemplate, store.Get(Generate))
}

func TestStoreSetOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Set(Explain, "first {command}"))
	require.NoError(t, store.Set(Explain, "second {command}"))

	assert.Equal(t, "second {command}", store.Get(Explain))
}

func TestStoreSetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Set(Generate, "tpl {request}"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.Path(Generate)), entries[0].Name())
}

func TestStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	store := NewStore(dir)
	require.NoError(t, store.Set(Generate, "tpl {request}"))
	assert.Equal(t, "tpl {request}", store.Get(Generate))
}

func TestDefaultTemplatesAreValid(t *testing.T) {
	assert.True(t, Valid(Generate, DefaultGenerateTemplate))
	assert.True(t, Valid(Explain, DefaultExplainTemplate))
	assert.True(t, strings.Contains(DefaultGenerateTemplate, "{os}"))
}
