package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/config"
	"github.com/mobile-next/gesturekit/server"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/spf13/cobra"
)

// cfg is the loaded configuration, available to every command after startup
var cfg = config.Default()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gesturekit",
	Short: "Touch gesture recognition for video player controls",
	Long:  `Turns raw touch samples into seek, volume and brightness changes, locally or over a JSON-RPC server.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       server.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func initConfig() error {
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	utils.SetVerbose(verbose || cfg.Log.Verbose)
	utils.SetJSON(cfg.Log.JSON)
	if cfg.Path != "" {
		utils.Verbose("Loaded config from %s", cfg.Path)
	}

	return commands.SetGestureConfig(cfg.Gestures)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.ini (default: $XDG_CONFIG_HOME/gesturekit/config.ini)")
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if os.Getenv("NO_COLOR") == "" {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}

// printResponse prints a command response and turns an error status into an error
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
