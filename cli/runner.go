// Command execution for CLI commands.
//
// Information Hiding:
// - Runtime wiring (provider, store, engine) hidden
// - Output formatting hidden

package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/petrides/loom/checkpoint"
	"github.com/petrides/loom/config"
	"github.com/petrides/loom/graph"
	"github.com/petrides/loom/llm"
	"github.com/petrides/loom/logging"
	"github.com/petrides/loom/thread"
	"github.com/petrides/loom/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider  string
	MaxRounds int
	Verbose   bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxRounds: graph.DefaultMaxRounds,
	}
}

// runtime bundles the wired components behind the commands.
type runtime struct {
	settings config.Settings
	engine   *graph.Engine
	titles   *thread.Service
	store    *checkpoint.SqliteStore
}

func (r *runtime) Close() {
	_ = r.store.Close()
}

// buildRuntime wires provider, tools, store, and engine from settings.
func buildRuntime(opts Options) (*runtime, error) {
	settings, err := config.New(opts.Provider)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{Level: settings.Log.Level, Pretty: settings.Log.Pretty}
	if opts.Verbose {
		logCfg.Level = "debug"
		logCfg.Pretty = true
	}
	log := logging.New(logCfg)

	apiKey, err := config.APIKeyFor(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}

	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProviderBuilder(providerType).
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
	if err != nil {
		return nil, err
	}

	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		tools.NewCalculatorTool(),
		tools.NewStockPriceTool(settings.Agent.AlphaVantageKey),
		tools.NewSearchTool(),
	} {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}

	store, err := checkpoint.OpenSqlite(settings.Store.Path)
	if err != nil {
		return nil, err
	}

	gateway := llm.NewGateway(provider, log).WithMaxAttempts(settings.Agent.ModelRetries)
	executor := tools.NewExecutor(registry)

	maxRounds := settings.Agent.MaxRounds
	if opts.MaxRounds > 0 {
		maxRounds = opts.MaxRounds
	}
	engine := graph.NewEngine(gateway, executor, store, log).WithMaxRounds(maxRounds)

	return &runtime{
		settings: settings,
		engine:   engine,
		titles:   thread.NewService(store, log),
		store:    store,
	}, nil
}

// RunAsk sends a single message on a thread and prints the reply.
// An empty thread id starts a new thread.
func RunAsk(ctx context.Context, threadID, text string, opts Options) error {
	rt, err := buildRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if threadID == "" {
		threadID = thread.NewThreadID()
		fmt.Printf("thread: %s\n", threadID)
	}

	return sendMessage(ctx, rt, threadID, text)
}

// RunThreads lists all known threads with their titles.
func RunThreads(ctx context.Context, opts Options) error {
	rt, err := buildRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	infos, err := rt.titles.List(ctx)
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Println("No threads yet.")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%-36s  %-32s  %s\n",
			info.ThreadID, info.Title, info.Latest.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// RunSetTitle sets a thread's display title.
func RunSetTitle(ctx context.Context, threadID, title string, opts Options) error {
	rt, err := buildRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.titles.SetTitle(ctx, threadID, title)
}

// RunChat starts an interactive REPL on the given thread.
// An empty thread id starts a new thread.
func RunChat(ctx context.Context, threadID string, opts Options) error {
	rt, err := buildRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	if threadID == "" {
		threadID = thread.NewThreadID()
	}

	fmt.Printf("loom chat (%s / %s)\n", rt.settings.LLM.Provider, rt.settings.LLM.Model)
	fmt.Printf("thread: %s\n", threadID)
	fmt.Println("Commands: /new, /threads, /switch <id>, /title <text>, /history, /quit")

	// Replay existing history when resuming.
	history, err := rt.engine.History(ctx, threadID)
	if err != nil {
		return err
	}
	printConversation(history)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, newThread, err := handleCommand(ctx, rt, threadID, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			if done {
				return nil
			}
			if newThread != "" {
				threadID = newThread
				fmt.Printf("thread: %s\n", threadID)
				history, err := rt.engine.History(ctx, threadID)
				if err == nil {
					printConversation(history)
				}
			}
			continue
		}

		if err := sendMessage(ctx, rt, threadID, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}

	return scanner.Err()
}

// handleCommand processes a slash command. Returns (quit, switch-to-thread).
func handleCommand(ctx context.Context, rt *runtime, threadID, line string) (bool, string, error) {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/quit", "/exit":
		return true, "", nil
	case "/new":
		return false, thread.NewThreadID(), nil
	case "/switch":
		if rest == "" {
			return false, "", fmt.Errorf("usage: /switch <thread-id>")
		}
		return false, rest, nil
	case "/title":
		if rest == "" {
			return false, "", fmt.Errorf("usage: /title <text>")
		}
		return false, "", rt.titles.SetTitle(ctx, threadID, rest)
	case "/threads":
		infos, err := rt.titles.List(ctx)
		if err != nil {
			return false, "", err
		}
		for _, info := range infos {
			fmt.Printf("  %s  %s\n", info.ThreadID, info.Title)
		}
		return false, "", nil
	case "/history":
		history, err := rt.engine.History(ctx, threadID)
		if err != nil {
			return false, "", err
		}
		printConversation(history)
		return false, "", nil
	default:
		return false, "", fmt.Errorf("unknown command %q", cmd)
	}
}

// sendMessage runs one user message through the engine and prints everything
// appended after it.
func sendMessage(ctx context.Context, rt *runtime, threadID, text string) error {
	if err := rt.titles.EnsureTitle(ctx, threadID, text); err != nil {
		return err
	}

	before, err := rt.engine.History(ctx, threadID)
	if err != nil {
		return err
	}

	messages, err := rt.engine.HandleUserMessage(ctx, threadID, text)
	if err != nil {
		return err
	}

	// Skip history plus the user message we just sent.
	printConversation(messages[len(before)+1:])
	return nil
}

// ListTools prints the builtin tool catalog.
func ListTools(verbose bool) {
	registry := tools.NewRegistry()

	// Register default tools (errors ignored - no duplicates in this list)
	_ = registry.Register(tools.NewCalculatorTool())
	_ = registry.Register(tools.NewStockPriceTool(""))
	_ = registry.Register(tools.NewSearchTool())

	fmt.Println("Available tools:")
	fmt.Println()

	for _, def := range registry.Definitions() {
		fmt.Printf("  %s\n", def.Name)
		fmt.Printf("    %s\n", def.Description)

		if verbose {
			printSchemaParams(def.Parameters)
		}
		fmt.Println()
	}
}

// printSchemaParams renders the properties of a JSON schema object.
func printSchemaParams(schema map[string]interface{}) {
	props, ok := schema["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		return
	}

	required := map[string]bool{}
	if reqs, ok := schema["required"].([]string); ok {
		for _, r := range reqs {
			required[r] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("    Parameters:")
	for _, name := range names {
		req := ""
		if required[name] {
			req = "*"
		}
		paramType, desc := "", ""
		if prop, ok := props[name].(map[string]interface{}); ok {
			paramType, _ = prop["type"].(string)
			desc, _ = prop["description"].(string)
		}
		fmt.Printf("      %s%s: %s - %s\n", name, req, paramType, desc)
	}
}

func printConversation(messages []llm.ChatMessage) {
	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleUser:
			fmt.Printf("you: %s\n", msg.Content)
		case llm.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				for _, tc := range msg.ToolCalls {
					fmt.Printf("  [calling %s]\n", tc.Name)
				}
				continue
			}
			fmt.Printf("assistant: %s\n", msg.Content)
		case llm.RoleTool:
			fmt.Printf("  [%s -> %s]\n", msg.ToolName, truncate(msg.Content, 120))
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
