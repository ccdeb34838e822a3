package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gym_timer/internal/models"
	"gym_timer/internal/service"
)

func doGet(t *testing.T, s *service.Service, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := newTestRouter(s)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLogsHandler_ListAndValidation(t *testing.T) {
	auth := &mockAuth{parseID: 99}
	now := time.Now().UTC().Truncate(time.Second)
	entries := []models.TimerEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventStart, Description: "Countdown started (1:30)"},
		{EventID: "e2", OccurredAt: now.Add(1 * time.Second), Type: models.EventAddTime, Description: "Added 10s"},
	}
	logs := &mockEventLog{resp: entries}
	s := &service.Service{
		Authorization: auth,
		EventLog:      logs,
	}

	// invalid 'from' -> 400
	if w := doGet(t, s, "/api/v1/logs?from=notatime"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}

	// valid range, lowercase type is normalized before the service call
	q := "/api/v1/logs?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=add_time"
	w := doGet(t, s, q)
	if w.Code != http.StatusOK {
		t.Fatalf("logs status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                 `json:"count"`
		Events []models.TimerEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 {
		t.Fatalf("unexpected response: %+v", out)
	}
	if logs.lastType != models.EventAddTime {
		t.Fatalf("expected lastType ADD_TIME, got %q", logs.lastType)
	}
	if !logs.lastFrom.Equal(now) {
		t.Fatalf("from = %v, want %v", logs.lastFrom, now)
	}
}

func TestLogsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}

	w := doGet(t, s, "/api/v1/logs?from=2025-03-01&to=2025-03-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	wantTo := time.Date(2025, 3, 1, 23, 59, 59, 999999999, time.UTC)
	if !logs.lastTo.Equal(wantTo) {
		t.Fatalf("to = %v, want %v", logs.lastTo, wantTo)
	}
}

func TestLogsHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"unknown type", service.ErrUnknownEventType, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("list: %w", service.ErrInvalidTimeRange), http.StatusBadRequest},
		{"storage failure", errors.New("database is locked"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: &mockEventLog{err: tc.err}}
			if w := doGet(t, s, "/api/v1/logs?type=tick"); w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestLogsHandler_FromAfterTo(t *testing.T) {
	logs := &mockEventLog{}
	s := &service.Service{Authorization: &mockAuth{parseID: 1}, EventLog: logs}
	if w := doGet(t, s, "/api/v1/logs?from=2025-03-02&to=2025-03-01"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if logs.lastType != "" || !logs.lastFrom.IsZero() {
		t.Fatalf("service must not be called on an invalid range")
	}
}
