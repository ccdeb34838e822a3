package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gym_timer/internal/repository"
	"gym_timer/internal/service"
)

func postJSON(t *testing.T, s *service.Service, target, body string) (int, map[string]any) {
	t.Helper()
	r := newTestRouter(s)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestSignUp(t *testing.T) {
	cases := []struct {
		name     string
		auth     *mockAuth
		body     string
		wantCode int
		wantID   float64
	}{
		{"created", &mockAuth{signUpID: 42}, `{"username":"lifter","password":"hunter22"}`, http.StatusCreated, 42},
		{"short password", &mockAuth{}, `{"username":"lifter","password":"123"}`, http.StatusBadRequest, 0},
		{"missing username", &mockAuth{}, `{"password":"hunter22"}`, http.StatusBadRequest, 0},
		{"wrong types", &mockAuth{}, `{"username":1}`, http.StatusBadRequest, 0},
		{"taken", &mockAuth{signUpErr: fmt.Errorf("insert user: %w", repository.ErrUsernameTaken)}, `{"username":"lifter","password":"hunter22"}`, http.StatusConflict, 0},
		{"blank username", &mockAuth{signUpErr: service.ErrEmptyUsername}, `{"username":"   ","password":"hunter22"}`, http.StatusBadRequest, 0},
		{"blank password", &mockAuth{signUpErr: service.ErrEmptyPassword}, `{"username":"lifter","password":"      "}`, http.StatusBadRequest, 0},
		{"storage failure", &mockAuth{signUpErr: errors.New("insert user: database is locked")}, `{"username":"lifter","password":"hunter22"}`, http.StatusInternalServerError, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, out := postJSON(t, &service.Service{Authorization: tc.auth}, "/auth/sign-up", tc.body)
			if code != tc.wantCode {
				t.Fatalf("status=%d, want %d (%v)", code, tc.wantCode, out)
			}
			if code == http.StatusInternalServerError && out["error"] != "failed to create user" {
				t.Fatalf("internal error leaked: %v", out["error"])
			}
			if tc.wantID != 0 && out["id"] != tc.wantID {
				t.Fatalf("id = %v, want %v", out["id"], tc.wantID)
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	auth := &mockAuth{genTokenToken: "tok123"}
	s := &service.Service{Authorization: auth}

	code, out := postJSON(t, s, "/auth/sign-in", `{"username":"lifter","password":"hunter22"}`)
	if code != http.StatusOK || out["token"] != "tok123" || out["token_type"] != "Bearer" {
		t.Fatalf("sign-in: %d %v", code, out)
	}
	if auth.lastGenUsername != "lifter" || auth.lastGenPassword != "hunter22" {
		t.Fatalf("credentials not forwarded: %q %q", auth.lastGenUsername, auth.lastGenPassword)
	}

	auth.genTokenErr = service.ErrInvalidPassword
	code, out = postJSON(t, s, "/auth/sign-in", `{"username":"lifter","password":"wrongpass"}`)
	if code != http.StatusUnauthorized || out["error"] != "invalid credentials" {
		t.Fatalf("bad password: %d %v", code, out)
	}
}
