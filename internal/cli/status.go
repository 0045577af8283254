package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/helmdeck/helmdeck/internal/api"
	"github.com/helmdeck/helmdeck/internal/config"
	"github.com/helmdeck/helmdeck/internal/identity"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("🏷️ helmdeck Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway and local status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("📊 helmdeck Status")
		fmt.Printf("Version: %s\n", version)

		// Check config
		if configPath, err := config.ConfigPath(); err == nil {
			if _, err := os.Stat(configPath); err == nil {
				fmt.Println("Config:  ✓ Found (" + configPath + ")")
			} else {
				fmt.Println("Config:  ✗ Not found (using defaults and environment)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Gateway: " + cfg.Gateway.BaseURL)

		store := identity.NewStore(cfg.Gateway.AuthToken)
		if store.Valid() {
			fmt.Println("Token:   ✓ Found")
		} else {
			fmt.Println("Token:   ✗ Not set")
		}

		client := api.NewClient(cfg.Gateway.BaseURL, store)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		info, err := client.Status(ctx)
		if err != nil {
			fmt.Printf("Reach:   ✗ Gateway unreachable (%v)\n", err)
			return
		}
		fmt.Printf("Reach:   ✓ Gateway up (version %s, mode %s, uptime %ds)\n",
			info.Version, info.Mode, info.UptimeSeconds)

		auth, err := client.VerifyAuth(ctx)
		switch {
		case err != nil:
			fmt.Printf("Auth:    ? Verify failed (%v)\n", err)
		case !auth.AuthRequired:
			fmt.Println("Auth:    ✓ Not required")
		case auth.Valid:
			fmt.Println("Auth:    ✓ Token accepted")
		default:
			fmt.Println("Auth:    ✗ Token rejected")
		}
	},
}
