package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/types"
	"github.com/spf13/cobra"
)

var gestureCmd = &cobra.Command{
	Use:   "gesture",
	Short: "Run touch gestures through the recognizer",
	Long:  `Replay recorded touch streams or synthesized swipes and print the resulting property changes.`,
}

var gestureReplayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Replay a recorded touch stream",
	Long: `Replays touch actions from a JSON file ("-" reads stdin). The file holds either an array of
{"type":"pointerDown","x":..,"y":..} actions or a replay request with width, height and actions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		req, err := parseReplayRequest(data)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		// an explicit flag wins over the file, the flag default fills a missing size
		if cmd.Flags().Changed("width") || req.Width <= 0 {
			req.Width = screenWidth
		}
		if cmd.Flags().Changed("height") || req.Height <= 0 {
			req.Height = screenHeight
		}
		if mpvSocket != "" {
			req.MPVSocket = mpvSocket
		}

		return printResponse(commands.ReplayCommand(*req))
	},
}

var gestureSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Run a straight swipe through the recognizer",
	Long:  `Synthesizes a swipe from x1,y1 to x2,y2 and replays it. Coordinates should be provided as a single string "x1,y1,x2,y2".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args[0], 4)
		if err != nil {
			return printResponse(commands.NewErrorResponse(err))
		}

		req := commands.SwipeRequest{
			Width:     screenWidth,
			Height:    screenHeight,
			X1:        coords[0],
			Y1:        coords[1],
			X2:        coords[2],
			Y2:        coords[3],
			Steps:     swipeSteps,
			MPVSocket: mpvSocket,
		}

		return printResponse(commands.SwipeCommand(req))
	},
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// parseReplayRequest accepts a bare action array or a full replay request
func parseReplayRequest(data []byte) (*commands.ReplayRequest, error) {
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("[")) {
		var actions []types.TouchAction
		if err := json.Unmarshal(data, &actions); err != nil {
			return nil, fmt.Errorf("invalid actions: %w", err)
		}
		return &commands.ReplayRequest{Actions: actions}, nil
	}

	var req commands.ReplayRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid replay request: %w", err)
	}
	return &req, nil
}

// parseCoords parses a comma separated list of exactly n numbers
func parseCoords(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d comma separated values, got '%s'", n, s)
	}

	coords := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s'", part)
		}
		coords[i] = v
	}
	return coords, nil
}

func init() {
	rootCmd.AddCommand(gestureCmd)

	gestureCmd.AddCommand(gestureReplayCmd)
	gestureCmd.AddCommand(gestureSwipeCmd)

	gestureCmd.PersistentFlags().Float64Var(&screenWidth, "width", 1080, "Screen width in pixels")
	gestureCmd.PersistentFlags().Float64Var(&screenHeight, "height", 1920, "Screen height in pixels")
	gestureCmd.PersistentFlags().StringVar(&mpvSocket, "mpv-socket", "", "Drive the mpv instance listening on this IPC socket")

	gestureSwipeCmd.Flags().IntVar(&swipeSteps, "steps", 10, "Number of intermediate move samples")
}
