// Package main provides the loom CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/petrides/loom/cli"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	provider  string
	maxRounds int
	verbose   bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Tool-calling chat agent with durable threads",
		Long: `A conversational agent that answers with LLM tool calling and persists
every conversation turn to a local SQLite checkpoint store.

Threads survive restarts: resume any thread by id and the full
conversation is replayed before your next message.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (groq, openai, anthropic, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxRounds, "max-rounds", "m", 0, "Maximum model rounds per user message (0 = configured default)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(threadsCmd())
	rootCmd.AddCommand(titleCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{
		Provider:  provider,
		MaxRounds: maxRounds,
		Verbose:   verbose,
	}
}

func chatCmd() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Without --thread a fresh thread is created. With --thread the existing
conversation is replayed and continued.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunChat(context.Background(), threadID, options())
		},
	}

	cmd.Flags().StringVarP(&threadID, "thread", "t", "", "Thread ID to resume")

	return cmd
}

func askCmd() *cobra.Command {
	var threadID string

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunAsk(context.Background(), threadID, args[0], options())
		},
	}

	cmd.Flags().StringVarP(&threadID, "thread", "t", "", "Thread ID to continue (empty starts a new one)")

	return cmd
}

func threadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List saved threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunThreads(context.Background(), options())
		},
	}
}

func titleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title [thread-id] [title]",
		Short: "Set a thread's display title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunSetTitle(context.Background(), args[0], args[1], options())
		},
	}
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}
