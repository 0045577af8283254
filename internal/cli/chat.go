package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/helmdeck/helmdeck/internal/api"
	"github.com/helmdeck/helmdeck/internal/archive"
	"github.com/helmdeck/helmdeck/internal/bus"
	"github.com/helmdeck/helmdeck/internal/chat"
	"github.com/helmdeck/helmdeck/internal/config"
	"github.com/helmdeck/helmdeck/internal/identity"
	"github.com/helmdeck/helmdeck/internal/ui"
)

var (
	chatConversationID string
	chatDebug          bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat console",
	Run:   runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatConversationID, "conversation", "c", "", "conversation id to resume (empty starts a new one)")
	chatCmd.Flags().BoolVar(&chatDebug, "debug", false, "write debug logs to ~/.helmdeck/debug.log")
}

// consoleRouter maps gateway-minted conversation ids onto the active view.
// The switch is consumed as a no-op by the session when the timeline already
// holds the live exchange.
type consoleRouter struct {
	session *chat.Session
}

func (r *consoleRouter) Navigate(conversationID string) {
	r.session.SwitchConversation(conversationID)
}

func runChat(cmd *cobra.Command, args []string) {
	setupChatLogging()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	store := identity.NewStore(cfg.Gateway.AuthToken)

	eventBus := bus.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eventBus.Dispatch(ctx)

	client := api.NewClient(cfg.Gateway.BaseURL, store)

	var mirror *archive.Store
	if cfg.Archive.Enabled {
		mirror, err = archive.Open(cfg.Archive.Path)
		if err != nil {
			fmt.Printf("Archive disabled: %v\n", err)
		} else {
			defer mirror.Close()
		}
	}

	router := &consoleRouter{}
	session := chat.NewSession(chat.Config{
		SocketURL:         cfg.SocketTarget(),
		KeepaliveInterval: cfg.Chat.KeepaliveInterval,
		PollInterval:      cfg.Chat.PollInterval,
		PollMaxAttempts:   cfg.Chat.PollMaxAttempts,
	}, chat.Deps{
		Identity: store,
		History:  client.Messages,
		Router:   router,
		Events:   eventBus,
	})
	router.session = session
	defer session.Close()

	program := tea.NewProgram(ui.NewModel(session, chatConversationID), tea.WithAltScreen())

	eventBus.Subscribe(func(evt *bus.Event) {
		program.Send(ui.BusEventMsg{Event: evt})
		if mirror != nil && evt.Type == bus.EventTimelineUpdated {
			if err := mirror.SaveMessages(session.ConversationID(), session.Timeline().Snapshot()); err != nil {
				slog.Warn("Archive write failed", "error", err)
			}
		}
	})

	session.Open(chatConversationID)

	if _, err := program.Run(); err != nil {
		fmt.Printf("Console error: %v\n", err)
		os.Exit(1)
	}
}

// setupChatLogging keeps slog off the terminal while the console owns the
// screen.
func setupChatLogging() {
	if !chatDebug {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	home, _ := os.UserHomeDir()
	path := filepath.Join(home, config.ConfigDir, "debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
