package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/app"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/config"
)

// newServeCmd creates the `orgclaw serve` command: run the organizer service.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the organizer service",
		Long: `Starts the organizer: connects the configured chat transports, the
scheduler and the admin gateway, and serves conversations until
interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd)

			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			secrets := config.NewSecrets(openVault(cfg, logger))

			a, err := app.New(cfg, secrets, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Run(ctx)
		},
	}
}

// openVault unlocks the encrypted vault when one exists. A locked vault is
// not an error; key resolution then falls back to keyring and environment.
func openVault(cfg config.Config, logger *slog.Logger) *config.Vault {
	vault := config.NewVault(cfg.VaultFile())
	if !vault.Exists() {
		return nil
	}
	pass := os.Getenv("ORGCLAW_VAULT_PASSWORD")
	if pass == "" {
		logger.Warn("vault exists but ORGCLAW_VAULT_PASSWORD is not set, skipping")
		return nil
	}
	if err := vault.Unlock(pass); err != nil {
		logger.Warn("vault unlock failed", "error", err)
		return nil
	}
	return vault
}
