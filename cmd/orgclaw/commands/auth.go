package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/config"
)

// newAuthCmd creates the `orgclaw auth` command group: provider API keys in
// the OS keyring.
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Stores provider API keys in the OS keyring (Secret Service, Keychain
or Credential Manager). Environment variables of the form
NANOBOT_PROVIDERS__<NAME>__API_KEY always take precedence.

Examples:
  orgclaw auth set-key openai
  orgclaw auth get-key openai
  orgclaw auth delete-key openai`,
	}

	cmd.AddCommand(
		newAuthSetKeyCmd(),
		newAuthGetKeyCmd(),
		newAuthDeleteKeyCmd(),
	)
	return cmd
}

func newAuthSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider>",
		Short: "Store a provider API key in the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if !config.KeyringAvailable() {
				return fmt.Errorf("OS keyring is not available on this system")
			}
			key, err := config.ReadPassword(fmt.Sprintf("API key for %s: ", provider))
			if err != nil {
				return fmt.Errorf("reading key: %w", err)
			}
			if key == "" {
				return fmt.Errorf("empty key")
			}
			if err := config.StoreProviderKey(provider, key); err != nil {
				return fmt.Errorf("storing key: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key for %s stored in the OS keyring.\n", provider)
			return nil
		},
	}
}

func newAuthGetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-key <provider>",
		Short: "Check whether a provider API key is stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			key := config.GetProviderKey(provider)
			if key == "" {
				return fmt.Errorf("no key stored for %s", provider)
			}
			// Never print the key itself.
			fmt.Fprintf(cmd.OutOrStdout(), "Key for %s is present (%d characters).\n",
				provider, len(key))
			return nil
		},
	}
}

func newAuthDeleteKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-key <provider>",
		Short: "Remove a provider API key from the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if err := config.DeleteProviderKey(provider); err != nil {
				return fmt.Errorf("deleting key for %s: %w", provider, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Key for %s removed.\n", provider)
			return nil
		},
	}
}
