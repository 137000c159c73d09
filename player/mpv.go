package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	defaultRetries      = 3
	retryDelay          = 100 * time.Millisecond
	defaultDialTimeout  = 1 * time.Second
	defaultReplyTimeout = 2 * time.Second
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// ipcMessage is anything mpv writes back: replies carry request_id, events
// carry event.
type ipcMessage struct {
	Data      interface{} `json:"data"`
	Error     string      `json:"error"`
	RequestID int64       `json:"request_id"`
	Event     string      `json:"event"`
}

// MPVError is an error reported by mpv itself, as opposed to a transport
// failure. It is never retried.
type MPVError struct {
	Command string
	Reason  string
}

func (e *MPVError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Reason)
}

// MPV is a Backend talking to a running mpv through --input-ipc-server.
//
// mpv has no notion of display brightness, so brightness is mapped onto the
// "brightness" video equalizer property (-100..100).
type MPV struct {
	socketPath   string
	retries      int
	dialTimeout  time.Duration
	replyTimeout time.Duration

	mu    sync.Mutex
	reqID int64
}

// MPVOption tunes how long an MPV waits on the socket.
type MPVOption func(*MPV)

// WithRetries sets how many times a command is attempted on transport errors.
func WithRetries(n int) MPVOption {
	return func(m *MPV) {
		if n > 0 {
			m.retries = n
		}
	}
}

// WithTimeout bounds both connecting to the socket and waiting for a reply.
func WithTimeout(d time.Duration) MPVOption {
	return func(m *MPV) {
		if d > 0 {
			m.dialTimeout = d
			m.replyTimeout = d
		}
	}
}

func NewMPV(socketPath string, opts ...MPVOption) *MPV {
	m := &MPV{
		socketPath:   socketPath,
		retries:      defaultRetries,
		dialTimeout:  defaultDialTimeout,
		replyTimeout: defaultReplyTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MPV) TimePos() (int, error) {
	v, err := m.getFloat("time-pos")
	return int(v), err
}

func (m *MPV) Duration() (int, error) {
	v, err := m.getFloat("duration")
	return int(v), err
}

func (m *MPV) Seek(pos int) error {
	_, err := m.command("seek", pos, "absolute+keyframes")
	return err
}

func (m *MPV) SubSeek(offset int) error {
	_, err := m.command("sub-seek", offset)
	return err
}

func (m *MPV) Volume() (int, error) {
	v, err := m.getFloat("volume")
	return int(v), err
}

func (m *MPV) MaxVolume() (int, error) {
	v, err := m.getFloat("volume-max")
	return int(v), err
}

func (m *MPV) SetVolume(volume int) error {
	_, err := m.command("set_property", "volume", volume)
	return err
}

func (m *MPV) Brightness() (float64, error) {
	v, err := m.getFloat("brightness")
	if err != nil {
		return 0, err
	}
	return (v + 100) / 200, nil
}

func (m *MPV) SetBrightness(brightness float64) error {
	_, err := m.command("set_property", "brightness", int(brightness*200-100))
	return err
}

func (m *MPV) getFloat(name string) (float64, error) {
	data, err := m.command("get_property", name)
	if err != nil {
		return 0, err
	}

	v, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: unexpected value %v", name, data)
	}
	return v, nil
}

// command sends one IPC command and waits for its reply, retrying on
// transport errors.
func (m *MPV) command(args ...interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < m.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		m.reqID++
		data, err := m.roundTrip(m.reqID, args)
		if err == nil {
			return data, nil
		}

		var mpvErr *MPVError
		if errors.As(err, &mpvErr) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", m.retries, lastErr)
}

func (m *MPV) roundTrip(id int64, args []interface{}) (interface{}, error) {
	conn, err := net.DialTimeout("unix", m.socketPath, m.dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(m.replyTimeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.Event != "" || msg.RequestID != id {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, &MPVError{Command: fmt.Sprint(args[0]), Reason: msg.Error}
		}
		return msg.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: %w", io.ErrUnexpectedEOF)
}
