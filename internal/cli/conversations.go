package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/helmdeck/helmdeck/internal/api"
	"github.com/helmdeck/helmdeck/internal/archive"
	"github.com/helmdeck/helmdeck/internal/chat"
	"github.com/helmdeck/helmdeck/internal/config"
	"github.com/helmdeck/helmdeck/internal/identity"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "List, inspect, and delete conversations",
	Run:     runConversationsList,
}

var conversationsHistoryCmd = &cobra.Command{
	Use:   "history <conversation-id>",
	Short: "Print a conversation's message history",
	Args:  cobra.ExactArgs(1),
	Run:   runConversationsHistory,
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a conversation on the gateway",
	Args:  cobra.ExactArgs(1),
	Run:   runConversationsDelete,
}

var conversationsOffline bool

func init() {
	conversationsCmd.AddCommand(conversationsHistoryCmd)
	conversationsCmd.AddCommand(conversationsDeleteCmd)
	conversationsCmd.PersistentFlags().BoolVar(&conversationsOffline, "offline", false, "read from the local archive instead of the gateway")
}

func newGatewayClient() (*api.Client, *config.Config) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}
	return api.NewClient(cfg.Gateway.BaseURL, identity.NewStore(cfg.Gateway.AuthToken)), cfg
}

func openMirror(cfg *config.Config) *archive.Store {
	mirror, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		fmt.Printf("Archive error: %v\n", err)
		os.Exit(1)
	}
	return mirror
}

func runConversationsList(cmd *cobra.Command, args []string) {
	printHeader("💬 Conversations")
	client, cfg := newGatewayClient()

	if conversationsOffline {
		mirror := openMirror(cfg)
		defer mirror.Close()
		convs, err := mirror.Conversations()
		if err != nil {
			fmt.Printf("Archive error: %v\n", err)
			os.Exit(1)
		}
		if len(convs) == 0 {
			fmt.Println("No archived conversations.")
			return
		}
		for _, c := range convs {
			fmt.Printf("%s  %3d messages  last seen %s\n",
				color.CyanString(c.ID), c.MessageCount, c.LastSeen.Format("2006-01-02 15:04"))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	convs, err := client.ListConversations(ctx)
	if err != nil {
		fmt.Printf("Gateway error: %v (try --offline for the local archive)\n", err)
		os.Exit(1)
	}
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range convs {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  updated %s\n",
			color.CyanString(c.ID), title, c.UpdatedAt.Format("2006-01-02 15:04"))
	}
}

func runConversationsHistory(cmd *cobra.Command, args []string) {
	conversationID := args[0]
	client, cfg := newGatewayClient()

	var msgs []chat.Message
	var err error
	if conversationsOffline {
		mirror := openMirror(cfg)
		defer mirror.Close()
		msgs, err = mirror.Messages(conversationID)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		msgs, err = client.Messages(ctx, conversationID)
	}
	if err != nil {
		fmt.Printf("History error: %v\n", err)
		os.Exit(1)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		who := color.CyanString("you")
		if m.Role == chat.RoleAssistant {
			who = color.MagentaString("assistant")
			if m.TaskResult {
				who += color.YellowString(" [task]")
			}
		}
		fmt.Printf("%s %s\n%s\n\n", who, m.Timestamp.Format("2006-01-02 15:04:05"), m.Content)
	}
}

func runConversationsDelete(cmd *cobra.Command, args []string) {
	conversationID := args[0]
	client, _ := newGatewayClient()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.DeleteConversation(ctx, conversationID); err != nil {
		fmt.Printf("Delete error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", conversationID)
}
