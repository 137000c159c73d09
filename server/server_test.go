package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mobile-next/gesturekit/gestures"
	"github.com/mobile-next/gesturekit/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	s, err := New(opts)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postRPC(t *testing.T, url string, body string, headers map[string]string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func callRPC(t *testing.T, url string, method string, params interface{}) JSONRPCResponse {
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp := postRPC(t, url, string(body), nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rpcResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	return rpcResp
}

// decodeResult re-decodes a generic JSON-RPC result into a typed value.
func decodeResult(t *testing.T, resp JSONRPCResponse, v interface{}) {
	require.Nil(t, resp.Error, "unexpected error: %v", resp.Error)
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func errorField(t *testing.T, resp JSONRPCResponse) map[string]interface{} {
	require.NotNil(t, resp.Error)
	errorMap, ok := resp.Error.(map[string]interface{})
	require.True(t, ok)
	return errorMap
}

func createSession(t *testing.T, url string, state *player.MemoryState) string {
	params := map[string]interface{}{"width": 1000, "height": 2000}
	if state != nil {
		params["player"] = state
	}

	var created struct {
		SessionID string  `json:"sessionId"`
		Trigger   float64 `json:"trigger"`
	}
	decodeResult(t, callRPC(t, url, "session_create", params), &created)
	require.NotEmpty(t, created.SessionID)
	assert.InDelta(t, 33.333, created.Trigger, 0.001)
	return created.SessionID
}

func TestRootEndpoint(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, Version, data["version"])
}

func TestRPCEndpoint_GetNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	resp, err := http.Get(ts.URL + "/rpc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRPCEndpoint_InvalidRequests(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	tests := []struct {
		name         string
		body         string
		expectedCode float64
		expectedData string
	}{
		{"invalid json", `{not json`, ErrCodeParseError, errMsgParseError},
		{"wrong version", `{"jsonrpc":"1.0","method":"session_state","id":1}`, ErrCodeInvalidRequest, errMsgInvalidJSONRPC},
		{"missing id", `{"jsonrpc":"2.0","method":"session_state"}`, ErrCodeInvalidRequest, errMsgIDRequired},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, ErrCodeInvalidRequest, errMsgMethodRequired},
		{"unknown method", `{"jsonrpc":"2.0","method":"io_tap","id":1}`, ErrCodeMethodNotFound, "Method 'io_tap' not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, ts.URL, tt.body, nil)
			defer resp.Body.Close()

			var rpcResp JSONRPCResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))

			errorMap := errorField(t, rpcResp)
			assert.Equal(t, tt.expectedCode, errorMap["code"])
			assert.Equal(t, tt.expectedData, errorMap["data"])
		})
	}
}

func TestRPC_SessionLifecycle(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	state := player.DefaultMemoryState()
	state.Position = 100
	state.Duration = 600
	id := createSession(t, ts.URL, &state)

	var touch TouchResult
	decodeResult(t, callRPC(t, ts.URL, "session_touch", map[string]interface{}{
		"sessionId": id, "type": "pointerDown", "x": 500, "y": 1000,
	}), &touch)
	assert.True(t, touch.Handled)
	assert.Equal(t, gestures.StateDown, touch.State)
	assert.Empty(t, touch.Events)

	decodeResult(t, callRPC(t, ts.URL, "session_touch", map[string]interface{}{
		"sessionId": id, "type": "pointerMove", "x": 560, "y": 1000,
	}), &touch)
	assert.True(t, touch.Handled)
	assert.Equal(t, gestures.StateControlSeek, touch.State)
	require.Len(t, touch.Events, 2)
	assert.Equal(t, gestures.Init, touch.Events[0].Kind)
	assert.Equal(t, gestures.Seek, touch.Events[1].Kind)
	assert.InDelta(t, 9.0, touch.Events[1].Delta, 1e-9)
	assert.Equal(t, player.Feedback{Visible: true, Text: "01:49\n[+00:09]"}, touch.Feedback)

	decodeResult(t, callRPC(t, ts.URL, "session_touch", map[string]interface{}{
		"sessionId": id, "type": "pointerUp", "x": 560, "y": 1000,
	}), &touch)
	assert.False(t, touch.Handled)
	assert.Equal(t, []gestures.Event{{Kind: gestures.Finalize}}, touch.Events)
	assert.False(t, touch.Feedback.Visible)

	var sessionState SessionState
	decodeResult(t, callRPC(t, ts.URL, "session_state", map[string]interface{}{"sessionId": id}), &sessionState)
	assert.Equal(t, id, sessionState.SessionID)
	assert.Equal(t, gestures.StateUp, sessionState.State)
	assert.Equal(t, 109, sessionState.Player.Position)
	assert.Equal(t, 1000.0, sessionState.Screen.Width)

	resp := callRPC(t, ts.URL, "session_delete", map[string]interface{}{"sessionId": id})
	assert.Nil(t, resp.Error)

	resp = callRPC(t, ts.URL, "session_state", map[string]interface{}{"sessionId": id})
	errorMap := errorField(t, resp)
	assert.Equal(t, float64(ErrCodeServerError), errorMap["code"])
	assert.Contains(t, errorMap["data"], "session not found")
}

func TestRPC_SessionGesture(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	id := createSession(t, ts.URL, nil)

	var result GestureResult
	decodeResult(t, callRPC(t, ts.URL, "session_gesture", map[string]interface{}{
		"sessionId": id,
		"actions": []map[string]interface{}{
			{"type": "pointerDown", "x": 200, "y": 1000},
			{"type": "pointerMove", "x": 200, "y": 900},
			{"type": "pointerUp", "x": 200, "y": 900},
		},
	}), &result)

	require.Len(t, result.Results, 3)
	assert.Equal(t, gestures.StateControlBright, result.Results[1].State)
	assert.Equal(t, gestures.StateUp, result.State)

	var sessionState SessionState
	decodeResult(t, callRPC(t, ts.URL, "session_state", map[string]interface{}{"sessionId": id}), &sessionState)
	assert.InDelta(t, 0.575, sessionState.Player.Brightness, 1e-9)
}

func TestRPC_InvalidParams(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	id := createSession(t, ts.URL, nil)

	tests := []struct {
		name   string
		method string
		params interface{}
	}{
		{"create without params", "session_create", nil},
		{"create with zero width", "session_create", map[string]interface{}{"width": 0, "height": 10}},
		{"touch without session", "session_touch", map[string]interface{}{"type": "pointerDown"}},
		{"touch with unknown type", "session_touch", map[string]interface{}{"sessionId": id, "type": "tap"}},
		{"gesture without actions", "session_gesture", map[string]interface{}{"sessionId": id}},
		{"replay without actions", "gesture_replay", map[string]interface{}{"width": 10, "height": 10}},
		{"delete without session", "session_delete", map[string]interface{}{}},
		{"delete with empty session", "session_delete", map[string]interface{}{"sessionId": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errorMap := errorField(t, callRPC(t, ts.URL, tt.method, tt.params))
			assert.Equal(t, float64(ErrCodeInvalidParams), errorMap["code"])
			assert.Equal(t, errTitleInvalidParams, errorMap["message"])
		})
	}
}

func TestRPC_GestureSwipe(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	var data struct {
		Events []gestures.Event     `json:"events"`
		Player *player.MemoryState `json:"player"`
	}
	decodeResult(t, callRPC(t, ts.URL, "gesture_swipe", map[string]interface{}{
		"width": 1000, "height": 2000,
		"x1": 300, "y1": 1600, "x2": 700, "y2": 1600,
		"mpvSocket": "/tmp/should-be-ignored.sock",
	}), &data)

	require.NotNil(t, data.Player)
	assert.Equal(t, []int{-1}, data.Player.SubSeeks)
	assert.Equal(t, gestures.SeekSub, data.Events[0].Kind)
}

func TestRPC_TokenRequired(t *testing.T) {
	_, ts := newTestServer(t, Options{Token: "secret"})

	body := `{"jsonrpc":"2.0","method":"session_create","params":{"width":10,"height":10},"id":1}`

	resp := postRPC(t, ts.URL, body, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postRPC(t, ts.URL, body, map[string]string{"Authorization": "Bearer wrong"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postRPC(t, ts.URL, body, map[string]string{"Authorization": "Bearer secret"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// the banner stays public
	banner, err := http.Get(ts.URL)
	require.NoError(t, err)
	banner.Body.Close()
	assert.Equal(t, http.StatusOK, banner.StatusCode)
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, Options{EnableCORS: true})

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/rpc", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_ShutdownOverRPC(t *testing.T) {
	s, err := New(Options{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe()
	}()

	result, err := s.Execute("server.shutdown", nil)
	require.NoError(t, err)
	assert.Equal(t, okResponse, result)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// a second shutdown is a no-op
	assert.NoError(t, s.Shutdown(context.Background()))
}

func TestExecute_UnknownMethod(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	_, err = s.Execute("devices", json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "method not found")

}
