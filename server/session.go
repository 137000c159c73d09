package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/gestures"
	"github.com/mobile-next/gesturekit/player"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/sirupsen/logrus"
)

const DefaultMaxSessions = 64

var ErrSessionNotFound = errors.New("session not found")

// Session is one touch surface: a recognizer bound to a simulated player.
// Samples are processed one at a time, in arrival order.
type Session struct {
	ID      string
	Created time.Time

	mu         sync.Mutex
	recognizer *gestures.Recognizer
	recorder   *gestures.Recorder
	controller *player.Controller
	backend    *player.MemoryBackend
}

// TouchResult is the outcome of a single touch sample.
type TouchResult struct {
	Handled  bool             `json:"handled"`
	State    gestures.State   `json:"state"`
	Events   []gestures.Event `json:"events"`
	Feedback player.Feedback  `json:"feedback"`
}

// GestureResult is the outcome of a batch of touch samples.
type GestureResult struct {
	Results  []commands.ActionResult `json:"results"`
	State    gestures.State          `json:"state"`
	Feedback player.Feedback         `json:"feedback"`
}

// SessionState describes a session.
type SessionState struct {
	SessionID string             `json:"sessionId"`
	Screen    types.ScreenSize   `json:"screen"`
	Trigger   float64            `json:"trigger"`
	State     gestures.State     `json:"state"`
	Feedback  player.Feedback    `json:"feedback"`
	Player    player.MemoryState `json:"player"`
	Created   time.Time          `json:"created"`
}

func newSession(width, height float64, state player.MemoryState, cfg gestures.Config) (*Session, error) {
	backend := player.NewMemoryBackend(state)
	controller := player.NewController(backend)
	recorder := gestures.NewRecorder()

	recognizer, err := gestures.NewWithConfig(width, height, gestures.Multi(recorder, controller), cfg)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         uuid.NewString(),
		Created:    time.Now(),
		recognizer: recognizer,
		recorder:   recorder,
		controller: controller,
		backend:    backend,
	}, nil
}

// Touch feeds a single sample.
func (s *Session) Touch(action types.TouchAction) (*TouchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := commands.RunActions(s.recognizer, s.recorder, []types.TouchAction{action})
	if err != nil {
		return nil, err
	}

	return &TouchResult{
		Handled:  results[0].Handled,
		State:    results[0].State,
		Events:   results[0].Events,
		Feedback: s.controller.Feedback(),
	}, nil
}

// Gesture feeds a batch of samples. Nothing is applied if any action is invalid.
func (s *Session) Gesture(actions []types.TouchAction) (*GestureResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := commands.RunActions(s.recognizer, s.recorder, actions)
	if err != nil {
		return nil, err
	}

	return &GestureResult{
		Results:  results,
		State:    s.recognizer.State(),
		Feedback: s.controller.Feedback(),
	}, nil
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		SessionID: s.ID,
		Screen:    s.recognizer.Size(),
		Trigger:   s.recognizer.Trigger(),
		State:     s.recognizer.State(),
		Feedback:  s.controller.Feedback(),
		Player:    s.backend.State(),
		Created:   s.Created,
	}
}

// SessionStore keeps the most recently used sessions; the least recently
// used one is dropped when the store is full.
type SessionStore struct {
	cfg   gestures.Config
	cache *lru.Cache[string, *Session]
}

func NewSessionStore(size int, cfg gestures.Config) (*SessionStore, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}

	cache, err := lru.NewWithEvict(size, func(id string, _ *Session) {
		utils.WithFields(logrus.Fields{"session": id}).Debug("session evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &SessionStore{cfg: cfg, cache: cache}, nil
}

// Create starts a new session. A nil state uses player.DefaultMemoryState.
func (s *SessionStore) Create(width, height float64, state *player.MemoryState) (*Session, error) {
	initial := player.DefaultMemoryState()
	if state != nil {
		initial = *state
	}

	session, err := newSession(width, height, initial, s.cfg)
	if err != nil {
		return nil, err
	}

	s.cache.Add(session.ID, session)
	utils.WithFields(logrus.Fields{"session": session.ID, "width": width, "height": height}).Info("session created")
	return session, nil
}

func (s *SessionStore) Get(id string) (*Session, error) {
	session, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Delete removes a session, reporting whether it existed.
func (s *SessionStore) Delete(id string) bool {
	return s.cache.Remove(id)
}

func (s *SessionStore) Len() int {
	return s.cache.Len()
}
