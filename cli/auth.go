package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "gesturekit"
const keyringUser = "server-token"

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Server token commands",
	Long:  `Commands for managing the bearer token the server requires and the CLI sends.`,
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Store the server token in the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("token cannot be empty")
		}

		if err := keyring.Set(keyringService, keyringUser, args[0]); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		fmt.Println("Token stored.")
		return nil
	},
}

var authClearTokenCmd = &cobra.Command{
	Use:   "clear-token",
	Short: "Remove the server token from the system keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				fmt.Println("No token stored")
				return nil
			}
			return fmt.Errorf("failed to remove token: %w", err)
		}

		fmt.Println("Token removed.")
		return nil
	},
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Display the server token in effect",
	Long:  `Displays the token from the environment, the config file or the keyring, in that order.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := resolveToken()
		if token == "" {
			return fmt.Errorf("no token configured for gesturekit")
		}

		fmt.Println(token)
		return nil
	},
}

// resolveToken returns the configured token (config file or environment),
// falling back to the keyring. An empty token disables authentication.
func resolveToken() string {
	if cfg.Server.Token != "" {
		return cfg.Server.Token
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		return ""
	}
	return token
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetTokenCmd, authClearTokenCmd, authTokenCmd)
}
