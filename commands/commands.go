package commands

import (
	"github.com/mobile-next/gesturekit/gestures"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// gestureConfig is the recognizer tuning used by every command.
// It is set once at startup from the config file via SetGestureConfig.
var gestureConfig = gestures.DefaultConfig()

// SetGestureConfig replaces the recognizer tuning used by commands.
func SetGestureConfig(cfg gestures.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	gestureConfig = cfg
	return nil
}

// GestureConfig returns the recognizer tuning used by commands.
func GestureConfig() gestures.Config {
	return gestureConfig
}
