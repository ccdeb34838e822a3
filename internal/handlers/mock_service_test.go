package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gym_timer/internal/models"
	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	mu sync.Mutex

	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

func (m *mockAuth) parsedToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParseToken
}

// mockTimer records commands; it is shared with the WebSocket writer
// goroutine, hence the mutex.
type mockTimer struct {
	mu sync.Mutex

	startErr  error
	pauseErr  error
	resumeErr error
	toggleErr error
	addErr    error
	resetErr  error
	toggleTo  string

	calls       []string
	lastSeconds int
}

func (m *mockTimer) record(call string, seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	m.lastSeconds = seconds
}

func (m *mockTimer) snapshot() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...), m.lastSeconds
}

func (m *mockTimer) Start(ctx context.Context, seconds int) error {
	m.record("start", seconds)
	return m.startErr
}
func (m *mockTimer) Pause(ctx context.Context) error {
	m.record("pause", 0)
	return m.pauseErr
}
func (m *mockTimer) Resume(ctx context.Context) error {
	m.record("resume", 0)
	return m.resumeErr
}
func (m *mockTimer) TogglePause(ctx context.Context) (string, error) {
	m.record("toggle", 0)
	return m.toggleTo, m.toggleErr
}
func (m *mockTimer) AddSeconds(ctx context.Context, seconds int) error {
	m.record("add", seconds)
	return m.addErr
}
func (m *mockTimer) Reset(ctx context.Context) error {
	m.record("reset", 0)
	return m.resetErr
}

type mockAlarm struct {
	mu        sync.Mutex
	ringing   bool
	dismissed int
}

func (m *mockAlarm) DismissAlarm(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed++
	was := m.ringing
	m.ringing = false
	return was
}

type mockSets struct {
	mu      sync.Mutex
	current *int
	err     error
	lastSet int
}

func (m *mockSets) SelectSet(ctx context.Context, set int) (*int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSet = set
	if m.err != nil {
		return nil, m.err
	}
	v := set
	m.current = &v
	return m.current, nil
}

type mockMonitoring struct {
	state   models.TimerState
	err     error
	presets service.Presets
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.TimerState, error) {
	return m.state, m.err
}

func (m *mockMonitoring) Presets() service.Presets {
	if len(m.presets.Durations) == 0 {
		return service.DefaultPresets()
	}
	return m.presets
}

type mockEventLog struct {
	resp     []models.TimerEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.TimerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
