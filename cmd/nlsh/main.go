package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	goprompt "github.com/elk-language/go-prompt"
	"github.com/spf13/cobra"

	"github.com/nlshell/nlsh/internal/config"
	"github.com/nlshell/nlsh/internal/history"
	"github.com/nlshell/nlsh/internal/prompt"
	"github.com/nlshell/nlsh/internal/provider"
	"github.com/nlshell/nlsh/internal/session"
	"github.com/nlshell/nlsh/internal/setup"
	"github.com/nlshell/nlsh/internal/shell"
	"github.com/nlshell/nlsh/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	debug bool
)

const exitInterrupt = 130

func main() {
	rootCmd := &cobra.Command{
		Use:     "nlsh [request...]",
		Short:   "Natural language interface for your shell",
		Long:    "nlsh translates natural language into shell commands using a configurable AI provider",
		Version: version,
		Args:    cobra.ArbitraryArgs,
		RunE:    runRoot,

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Configure the AI provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return setup.Run()
		},
	}

	explainCmd := &cobra.Command{
		Use:   "explain <command...>",
		Short: "Explain a shell command",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExplain,
	}

	promptCmd := &cobra.Command{
		Use:   "prompt <generate|explain> <show|edit>",
		Short: "View or edit the prompt templates",
		Args:  cobra.ExactArgs(2),
		RunE:  runPrompt,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent invocations",
		RunE:  runHistory,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove shell integration and configuration",
		RunE:  runUninstall,
	}

	rootCmd.AddCommand(apiCmd, explainCmd, promptCmd, historyCmd, uninstallCmd)

	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err.Error())
		os.Exit(1)
	}
}

// buildClient loads the configuration and wires the provider client
func buildClient() (*provider.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg == nil {
		return nil, nil, errors.New("no API provider configured. run 'nlsh api' to set one up")
	}

	prov, err := provider.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, nil, err
	}
	templates := prompt.NewStore(configDir)
	warnInvalidOverrides(templates)

	return provider.NewClient(prov, templates), cfg, nil
}

func warnInvalidOverrides(store *prompt.Store) {
	if text, ok := store.Override(prompt.Generate); ok && !prompt.Valid(prompt.Generate, text) {
		ui.ShowWarning("generate prompt must contain the {request} placeholder; using default")
	}
	if text, ok := store.Override(prompt.Explain); ok && !prompt.Valid(prompt.Explain, text) {
		ui.ShowWarning("explain prompt must contain the {command} placeholder; using default")
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	added, err := shell.AutoSetup()
	if err != nil {
		ui.Debugf(debug, "Shell: integration setup failed: %v", err)
	}
	if added {
		ui.ShowInfo("shell integration installed. restart your shell or run 'source ~/.bashrc'")
		return nil
	}

	client, cfg, err := buildClient()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		runREPL(client, cfg)
		return nil
	}

	request := strings.Join(args, " ")
	status := processRequest(client, cfg, request, false)
	os.Exit(status)
	return nil
}

// processRequest runs one request through generate, the session loop and,
// on acceptance, the shell injector. Returns the process exit status.
// repl mode executes directly instead of emitting for the wrapper.
func processRequest(client *provider.Client, cfg *config.Config, request string, repl bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.Debugf(debug, "Main: request %q (model=%s)", request, cfg.ActiveModel())

	stopSpinner := ui.StartSpinner(fmt.Sprintf("using %s...", cfg.ActiveModel()))
	command, err := client.GenerateCommand(ctx, request)
	stopSpinner()
	if err != nil {
		if provider.IsCancelled(err) {
			return exitInterrupt
		}
		ui.ShowError(err.Error())
		return 1
	}
	ui.Debugf(debug, "Provider: generated %q", command)

	proposal := session.Proposal{Raw: command, Source: session.SourceGenerated}
	sess := session.New(proposal, ui.NewTerminal(), &spinnerExplainer{client: client})
	result, err := sess.Run(ctx)
	if err != nil {
		ui.ShowError(err.Error())
		return 1
	}

	executed := result.State == session.StateAccepted
	recordHistory(request, result, executed)

	if !executed {
		ui.ShowInfo("Cancelled.")
		if ctx.Err() != nil {
			return exitInterrupt
		}
		return 0
	}

	injector := shell.NewInjector()
	injector.Debug = debug
	var status int
	if repl {
		status, err = injector.Execute(result.Proposal.Raw)
		if err == nil {
			if histErr := injector.AppendHistory(result.Proposal.Raw); histErr != nil {
				ui.Debugf(debug, "Shell: history append failed: %v", histErr)
			}
		}
	} else {
		status, err = injector.Run(result.Proposal.Raw)
	}
	if err != nil {
		ui.ShowError(err.Error())
		return 1
	}
	return status
}

// spinnerExplainer decorates the provider client's explain call with an
// activity spinner.
type spinnerExplainer struct {
	client *provider.Client
}

func (e *spinnerExplainer) ExplainCommand(ctx context.Context, command string) (string, error) {
	stopSpinner := ui.StartSpinner("explaining...")
	defer stopSpinner()
	return e.client.ExplainCommand(ctx, command)
}

func recordHistory(request string, result session.Result, executed bool) {
	path, err := history.DefaultPath()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open history: %v\n", err)
		return
	}
	defer store.Close()

	record := history.Record{
		Request:  request,
		Command:  result.Proposal.Raw,
		Executed: executed,
		Edited:   result.Proposal.Source == session.SourceEdited,
	}
	if err := store.Add(record); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save history: %v\n", err)
	}
}

// runREPL keeps prompting for requests until the user exits
func runREPL(client *provider.Client, cfg *config.Config) {
	ui.ShowInfo(fmt.Sprintf("nlsh interactive mode (%s). Ctrl+D to exit.", cfg.ActiveModel()))

	done := false
	executor := func(input string) {
		input = strings.TrimSpace(input)
		if input == "" {
			return
		}
		if input == "exit" || input == "quit" {
			done = true
			return
		}
		processRequest(client, cfg, input, true)
	}

	p := goprompt.New(
		executor,
		goprompt.WithPrefix("nlsh> "),
		goprompt.WithTitle("nlsh"),
		goprompt.WithPrefixTextColor(goprompt.Cyan),
		goprompt.WithExitChecker(func(in string, breakline bool) bool {
			return done
		}),
		goprompt.WithKeyBind(goprompt.KeyBind{
			Key: goprompt.ControlC,
			Fn: func(p *goprompt.Prompt) bool {
				done = true
				return false
			},
		}),
		goprompt.WithKeyBind(goprompt.KeyBind{
			Key: goprompt.ControlD,
			Fn: func(p *goprompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					done = true
				}
				return false
			},
		}),
	)
	p.Run()
}

func runExplain(cmd *cobra.Command, args []string) error {
	client, _, err := buildClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := strings.Join(args, " ")
	stopSpinner := ui.StartSpinner("explaining...")
	explanation, err := client.ExplainCommand(ctx, command)
	stopSpinner()
	if err != nil {
		if provider.IsCancelled(err) {
			os.Exit(exitInterrupt)
		}
		return err
	}

	fmt.Println(ui.FormatMarkdown(explanation))
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	var kind prompt.Kind
	switch args[0] {
	case "generate":
		kind = prompt.Generate
	case "explain":
		kind = prompt.Explain
	default:
		return fmt.Errorf("unknown template %q (expected generate or explain)", args[0])
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	store := prompt.NewStore(configDir)

	switch args[1] {
	case "show":
		fmt.Println(store.Get(kind))
		return nil
	case "edit":
		return editTemplate(store, kind)
	default:
		return fmt.Errorf("unknown action %q (expected show or edit)", args[1])
	}
}

func editTemplate(store *prompt.Store, kind prompt.Kind) error {
	if _, ok := store.Override(kind); !ok {
		// seed the override file so the user edits the default, not a
		// blank buffer
		if err := store.Set(kind, prompt.Default(kind)); err != nil {
			return err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
	}
	editCmd := exec.Command(editor, store.Path(kind))
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("failed to run editor: %w", err)
	}

	if text, ok := store.Override(kind); ok && !prompt.Valid(kind, text) {
		if kind == prompt.Generate {
			ui.ShowWarning("generate prompt must contain the {request} placeholder; the default will be used")
		} else {
			ui.ShowWarning("explain prompt must contain the {command} placeholder; the default will be used")
		}
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, err := history.DefaultPath()
	if err != nil {
		return err
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(20)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.ShowInfo("no history yet")
		return nil
	}

	for _, r := range records {
		marker := " "
		if r.Executed {
			marker = "✓"
		}
		fmt.Printf("%s %s  %-40q  %s\n", marker, r.Timestamp.Format("2006-01-02 15:04"), r.Request, r.Command)
	}
	return nil
}

func runUninstall(cmd *cobra.Command, args []string) error {
	var confirmed bool
	confirm := &survey.Confirm{
		Message: "Remove shell integration and configuration?",
		Default: false,
	}
	if err := survey.AskOne(confirm, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		ui.ShowInfo("Cancelled")
		return nil
	}

	removed, err := shell.RemoveIntegration()
	if err != nil {
		return fmt.Errorf("failed to remove shell integration: %w", err)
	}
	if removed {
		ui.ShowSuccess("shell integration removed")
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.RemoveAll(configDir); err != nil {
		return fmt.Errorf("failed to remove configuration: %w", err)
	}
	ui.ShowSuccess("configuration removed")
	ui.ShowInfo("delete the nlsh binary to finish uninstalling")
	return nil
}
