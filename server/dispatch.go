package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/player"
	"github.com/mobile-next/gesturekit/types"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

type SessionCreateParams struct {
	Width  float64             `json:"width"`
	Height float64             `json:"height"`
	Player *player.MemoryState `json:"player,omitempty"`
}

type SessionParams struct {
	SessionID string `json:"sessionId"`
}

type SessionTouchParams struct {
	SessionID string  `json:"sessionId"`
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type SessionGestureParams struct {
	SessionID string              `json:"sessionId"`
	Actions   []types.TouchAction `json:"actions"`
}

// methodRegistry returns a map of method names to handler functions.
// It is shared by the HTTP and WebSocket transports.
func (s *Server) methodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"session_create":  s.handleSessionCreate,
		"session_touch":   s.handleSessionTouch,
		"session_gesture": s.handleSessionGesture,
		"session_state":   s.handleSessionState,
		"session_delete":  s.handleSessionDelete,
		"gesture_replay":  handleGestureReplay,
		"gesture_swipe":   handleGestureSwipe,
		"server.shutdown": s.handleShutdown,
	}
}

// Execute dispatches a method call using the registry
func (s *Server) Execute(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methodRegistry()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}

func (s *Server) handleSessionCreate(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: width, height")
	}

	var p SessionCreateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("invalid parameters: %v. Expected fields: width, height", err)
	}

	if p.Width <= 0 || p.Height <= 0 {
		return nil, invalidParams("width and height must be positive, got width=%g, height=%g", p.Width, p.Height)
	}

	session, err := s.sessions.Create(p.Width, p.Height, p.Player)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return map[string]interface{}{
		"sessionId": session.ID,
		"trigger":   session.State().Trigger,
	}, nil
}

func (s *Server) lookupSession(params json.RawMessage, v interface{ sessionID() string }, fields string) (*Session, error) {
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: %s", fields)
	}

	if err := json.Unmarshal(params, v); err != nil {
		return nil, invalidParams("invalid parameters: %v. Expected fields: %s", err, fields)
	}

	if v.sessionID() == "" {
		return nil, invalidParams("'sessionId' is required")
	}

	return s.sessions.Get(v.sessionID())
}

func (p *SessionParams) sessionID() string {
	return p.SessionID
}

func (p *SessionTouchParams) sessionID() string {
	return p.SessionID
}

func (p *SessionGestureParams) sessionID() string {
	return p.SessionID
}

func (s *Server) handleSessionTouch(params json.RawMessage) (interface{}, error) {
	var p SessionTouchParams
	session, err := s.lookupSession(params, &p, "sessionId, type, x, y")
	if err != nil {
		return nil, err
	}

	result, err := session.Touch(types.TouchAction{Type: p.Type, X: p.X, Y: p.Y})
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	return result, nil
}

func (s *Server) handleSessionGesture(params json.RawMessage) (interface{}, error) {
	var p SessionGestureParams
	session, err := s.lookupSession(params, &p, "sessionId, actions")
	if err != nil {
		return nil, err
	}

	if len(p.Actions) == 0 {
		return nil, invalidParams("actions array is required and cannot be empty")
	}

	result, err := session.Gesture(p.Actions)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	return result, nil
}

func (s *Server) handleSessionState(params json.RawMessage) (interface{}, error) {
	var p SessionParams
	session, err := s.lookupSession(params, &p, "sessionId")
	if err != nil {
		return nil, err
	}

	return session.State(), nil
}

func (s *Server) handleSessionDelete(params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: sessionId")
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("invalid parameters: %v. Expected fields: sessionId", err)
	}

	if p.sessionID() == "" {
		return nil, invalidParams("'sessionId' is required")
	}

	if !s.sessions.Delete(p.SessionID) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, p.SessionID)
	}

	return okResponse, nil
}

// gesture_replay and gesture_swipe only run against a simulated player; a
// remote caller must not pick local sockets.
func handleGestureReplay(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: width, height, actions")
	}

	var req commands.ReplayRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, invalidParams("invalid parameters: %v. Expected fields: width, height, actions", err)
	}
	req.MPVSocket = ""

	response := commands.ReplayCommand(req)
	if response.Status == "error" {
		return nil, invalidParams("%s", response.Error)
	}
	return response.Data, nil
}

func handleGestureSwipe(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, invalidParams("'params' is required with fields: width, height, x1, y1, x2, y2")
	}

	var req commands.SwipeRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, invalidParams("invalid parameters: %v. Expected fields: width, height, x1, y1, x2, y2", err)
	}
	req.MPVSocket = ""

	response := commands.SwipeCommand(req)
	if response.Status == "error" {
		return nil, invalidParams("%s", response.Error)
	}
	return response.Data, nil
}

func (s *Server) handleShutdown(params json.RawMessage) (interface{}, error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	return okResponse, nil
}
