package commands

import (
	"fmt"
	"time"

	"github.com/mobile-next/gesturekit/gestures"
	"github.com/mobile-next/gesturekit/player"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
)

const defaultSwipeSteps = 10

// observers run on the touch path, so a missing or hung mpv must fail fast
const (
	mpvRetries = 1
	mpvTimeout = 250 * time.Millisecond
)

// ReplayRequest represents the parameters for a gesture replay command
type ReplayRequest struct {
	Width   float64             `json:"width"`
	Height  float64             `json:"height"`
	Actions []types.TouchAction `json:"actions"`
	// MPVSocket drives a running mpv instead of a simulated player
	MPVSocket string `json:"mpvSocket,omitempty"`
	// Player is the starting state of the simulated player
	Player *player.MemoryState `json:"player,omitempty"`
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
	X1        float64             `json:"x1"`
	Y1        float64             `json:"y1"`
	X2        float64             `json:"x2"`
	Y2        float64             `json:"y2"`
	Steps     int                 `json:"steps,omitempty"`
	MPVSocket string              `json:"mpvSocket,omitempty"`
	Player    *player.MemoryState `json:"player,omitempty"`
}

// ActionResult is the outcome of feeding one touch action to a recognizer
type ActionResult struct {
	Type    string           `json:"type"`
	X       float64          `json:"x"`
	Y       float64          `json:"y"`
	Handled bool             `json:"handled"`
	State   gestures.State   `json:"state"`
	Events  []gestures.Event `json:"events"`
}

// ReplayResponse is the data of a successful replay
type ReplayResponse struct {
	Results  []ActionResult      `json:"results"`
	Events   []gestures.Event    `json:"events"`
	State    gestures.State      `json:"state"`
	Feedback player.Feedback     `json:"feedback"`
	Player   *player.MemoryState `json:"player,omitempty"`
}

// ParseActions converts touch actions to recognizer phases, failing on the
// first unknown action type.
func ParseActions(actions []types.TouchAction) ([]gestures.Phase, error) {
	phases := make([]gestures.Phase, len(actions))
	for i, action := range actions {
		phase, err := gestures.ParsePhase(action.Type)
		if err != nil {
			return nil, fmt.Errorf("action at index %d: %v", i, err)
		}
		phases[i] = phase
	}
	return phases, nil
}

// RunActions feeds actions to the recognizer one by one and collects what
// the recorder saw for each of them.
func RunActions(r *gestures.Recognizer, rec *gestures.Recorder, actions []types.TouchAction) ([]ActionResult, error) {
	phases, err := ParseActions(actions)
	if err != nil {
		return nil, err
	}

	results := make([]ActionResult, len(actions))
	for i, action := range actions {
		handled := r.HandleEvent(phases[i], action.Position())
		results[i] = ActionResult{
			Type:    phases[i].String(),
			X:       action.X,
			Y:       action.Y,
			Handled: handled,
			State:   r.State(),
			Events:  rec.Drain(),
		}
	}
	return results, nil
}

// ReplayCommand replays a recorded touch stream through a fresh recognizer
func ReplayCommand(req ReplayRequest) *CommandResponse {
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse(fmt.Errorf("width and height must be positive, got width=%g, height=%g", req.Width, req.Height))
	}

	if len(req.Actions) == 0 {
		return NewErrorResponse(fmt.Errorf("actions array is required and cannot be empty"))
	}

	var backend player.Backend
	var memory *player.MemoryBackend
	if req.MPVSocket != "" {
		utils.Verbose("Driving mpv at %s", req.MPVSocket)
		backend = player.NewMPV(req.MPVSocket, player.WithRetries(mpvRetries), player.WithTimeout(mpvTimeout))
	} else {
		state := player.DefaultMemoryState()
		if req.Player != nil {
			state = *req.Player
		}
		memory = player.NewMemoryBackend(state)
		backend = memory
	}

	controller := player.NewController(backend)
	rec := gestures.NewRecorder()
	recognizer, err := gestures.NewWithConfig(req.Width, req.Height, gestures.Multi(rec, controller), gestureConfig)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to create recognizer: %v", err))
	}

	results, err := RunActions(recognizer, rec, req.Actions)
	if err != nil {
		return NewErrorResponse(err)
	}

	response := ReplayResponse{
		Results:  results,
		Events:   []gestures.Event{},
		State:    recognizer.State(),
		Feedback: controller.Feedback(),
	}
	for _, result := range results {
		response.Events = append(response.Events, result.Events...)
	}
	if memory != nil {
		state := memory.State()
		response.Player = &state
	}

	utils.Verbose("Replayed %d actions, %d events", len(req.Actions), len(response.Events))
	return NewSuccessResponse(response)
}

// SwipeActions synthesizes a straight swipe: down, steps interpolated moves, up
func SwipeActions(x1, y1, x2, y2 float64, steps int) []types.TouchAction {
	if steps <= 0 {
		steps = defaultSwipeSteps
	}

	actions := make([]types.TouchAction, 0, steps+2)
	actions = append(actions, types.TouchAction{Type: "pointerDown", X: x1, Y: y1})
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		actions = append(actions, types.TouchAction{
			Type: "pointerMove",
			X:    x1 + (x2-x1)*f,
			Y:    y1 + (y2-y1)*f,
		})
	}
	actions = append(actions, types.TouchAction{Type: "pointerUp", X: x2, Y: y2})
	return actions
}

// SwipeCommand replays a synthesized swipe from (x1,y1) to (x2,y2)
func SwipeCommand(req SwipeRequest) *CommandResponse {
	if req.Steps < 0 {
		return NewErrorResponse(fmt.Errorf("steps must be non-negative, got %d", req.Steps))
	}

	return ReplayCommand(ReplayRequest{
		Width:     req.Width,
		Height:    req.Height,
		Actions:   SwipeActions(req.X1, req.Y1, req.X2, req.Y2, req.Steps),
		MPVSocket: req.MPVSocket,
		Player:    req.Player,
	})
}
