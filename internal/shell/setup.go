package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const integrationMarker = "# nlsh shell integration"

// bashFunction wraps the binary so accepted commands are eval'd by the
// invoking shell and therefore run with its environment, cwd and aliases.
// Subcommands pass straight through; only a generated command gets captured.
const bashFunction = `nlsh() {
    case "$1" in
        ""|api|explain|prompt|history|uninstall|help|completion|--*|-*)
            command nlsh "$@"
            return $?
            ;;
    esac
    local cmd
    cmd=$(command nlsh "$@")
    local exit_code=$?
    if [ $exit_code -eq 0 ] && [ -n "$cmd" ]; then
        eval "$cmd"
    else
        return $exit_code
    fi
}`

const fishFunction = `function nlsh
    if test (count $argv) -eq 0
        command nlsh
        return $status
    end
    switch $argv[1]
        case api explain prompt history uninstall help completion '--*' '-*'
            command nlsh $argv
            return $status
    end
    set cmd (command nlsh $argv)
    set exit_code $status
    if test $exit_code -eq 0 -a -n "$cmd"
        eval $cmd
    else
        return $exit_code
    end
end`

// AutoSetup installs the wrapper function into the shells present on this
// machine. Returns true when anything new was written, so the caller can
// tell the user to reload their shell.
func AutoSetup() (bool, error) {
	bashAdded, err := setupBash()
	if err != nil {
		return false, err
	}
	fishAdded, err := setupFish()
	if err != nil {
		return bashAdded, err
	}
	return bashAdded || fishAdded, nil
}

func setupBash() (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	rcPath := filepath.Join(home, ".bashrc")

	content, err := os.ReadFile(rcPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if strings.Contains(string(content), "nlsh()") {
		return false, nil
	}

	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s\n%s\n", integrationMarker, bashFunction); err != nil {
		return false, err
	}
	return true, nil
}

func setupFish() (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	configDir := filepath.Join(home, ".config/fish")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return false, nil
	}

	funcPath := filepath.Join(configDir, "functions/nlsh.fish")
	if _, err := os.Stat(funcPath); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(funcPath), 0755); err != nil {
		return false, err
	}
	body := integrationMarker + "\n" + fishFunction + "\n"
	if err := os.WriteFile(funcPath, []byte(body), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveIntegration undoes AutoSetup. Returns true when anything was
// removed.
func RemoveIntegration() (bool, error) {
	bashRemoved, err := removeBash()
	if err != nil {
		return false, err
	}
	fishRemoved, err := removeFish()
	if err != nil {
		return bashRemoved, err
	}
	return bashRemoved || fishRemoved, nil
}

func removeBash() (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	rcPath := filepath.Join(home, ".bashrc")

	content, err := os.ReadFile(rcPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !strings.Contains(string(content), "nlsh()") {
		return false, nil
	}

	cleaned, found := removeMarkedBlock(string(content), integrationMarker, "nlsh()")
	if !found {
		return false, nil
	}
	return true, os.WriteFile(rcPath, []byte(cleaned), 0644)
}

func removeFish() (bool, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return false, err
	}
	funcPath := filepath.Join(home, ".config/fish/functions/nlsh.fish")
	if _, err := os.Stat(funcPath); os.IsNotExist(err) {
		return false, nil
	}
	return true, os.Remove(funcPath)
}

// removeMarkedBlock strips the marker comment plus the brace-balanced
// function that follows it. Content outside the block is untouched.
func removeMarkedBlock(content, marker, functionSig string) (string, bool) {
	lines := strings.Split(content, "\n")
	var kept []string
	skip := false
	inFunction := false
	depth := 0
	found := false

	for _, line := range lines {
		if strings.TrimSpace(line) == marker {
			skip = true
			found = true
			continue
		}
		if skip {
			if !inFunction && strings.Contains(line, functionSig) {
				inFunction = true
				depth += strings.Count(line, "{")
				continue
			}
			if inFunction {
				depth += strings.Count(line, "{")
				depth -= strings.Count(line, "}")
				if depth == 0 {
					skip = false
					inFunction = false
				}
				continue
			}
			continue
		}
		kept = append(kept, line)
	}

	if found {
		for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
			kept = kept[:len(kept)-1]
		}
		return strings.Join(kept, "\n") + "\n", true
	}
	return content, false
}
