// ABOUTME: Messages command reads the local Messages store from the terminal
// ABOUTME: Subcommands for conversation history, unread, and number normalization
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"applebridge/internal/config"
	"applebridge/internal/messages"
)

// NewMessagesCmd creates the messages command group
func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Read the local Messages store",
		Long: `Read conversation history or unread messages from the local
Messages database. Requires Full Disk Access.`,
	}

	cmd.AddCommand(newMessagesReadCmd())
	cmd.AddCommand(newMessagesUnreadCmd())
	cmd.AddCommand(newMessagesNormalizeCmd())
	return cmd
}

func newMessagesReadCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "read <phoneNumber>",
		Short: "Show recent messages exchanged with a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if limit <= 0 {
				limit = cfg.DefaultReadLimit
			}
			candidates := messages.NormalizePhoneNumber(args[0])
			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "Matching handles: %s\n\n", strings.Join(candidates, ", "))
			}

			msgs, err := store.QueryBySender(cmd.Context(), candidates, limit)
			if err != nil {
				return err
			}
			printMessages(cmd, msgs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum messages to show")
	return cmd
}

func newMessagesUnreadCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Show unread messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if limit <= 0 {
				limit = cfg.DefaultReadLimit
			}
			msgs, err := store.QueryUnread(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No unread messages.")
				return nil
			}
			printMessages(cmd, msgs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum messages to show")
	return cmd
}

func newMessagesNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <phoneNumber>",
		Short: "Show the handle candidates derived from a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, candidate := range messages.NormalizePhoneNumber(args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), candidate)
			}
			return nil
		},
	}
}

func openStore() (*messages.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := messages.Open(cfg.MessagesDBPath, messages.StoreOptions{
		Retries:    cfg.StoreRetries,
		RetryDelay: cfg.StoreRetryDelay,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func printMessages(cmd *cobra.Command, msgs []messages.Message) {
	out := cmd.OutOrStdout()
	for _, msg := range msgs {
		direction := "from"
		if msg.IsFromMe {
			direction = "to"
		}
		fmt.Fprintf(out, "[%s] %s %s:\n%s\n\n", msg.Date, direction, msg.Sender, msg.Content)
	}
}
