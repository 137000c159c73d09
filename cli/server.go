package cli

import (
	"fmt"

	"github.com/mobile-next/gesturekit/daemon"
	"github.com/mobile-next/gesturekit/server"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the gesturekit touch session server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gesturekit server",
	Long:  `Starts the gesturekit server, serving JSON-RPC on /rpc and /ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := listenAddress(cmd)

		// GetBool/GetInt cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		maxSessions, _ := cmd.Flags().GetInt("max-sessions")

		if !cmd.Flags().Changed("cors") {
			enableCORS = cfg.Server.CORS
		}
		if maxSessions <= 0 {
			maxSessions = cfg.Server.MaxSessions
		}

		if isDaemon && !daemon.IsChild() {
			addr, err := utils.NormalizeListenAddr(listenAddr)
			if err != nil {
				return err
			}
			if !utils.IsAddrAvailable(addr) {
				return fmt.Errorf("address %s is already in use", addr)
			}

			_, err = daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		return server.StartServer(server.Options{
			Addr:        listenAddr,
			EnableCORS:  enableCORS,
			MaxSessions: maxSessions,
			Token:       resolveToken(),
			Gesture:     cfg.Gestures,
		})
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized gesturekit server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := daemon.KillServer(listenAddress(cmd), resolveToken())
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// listenAddress prefers the --listen flag, then the config file
func listenAddress(cmd *cobra.Command) string {
	// GetString cannot fail for defined flags
	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = cfg.Server.Listen
	}
	return addr
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().Int("max-sessions", 0, "Maximum number of live touch sessions (default from config)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default from config)")
}
