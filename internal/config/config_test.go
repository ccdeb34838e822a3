package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.DB.Path != "gymtimer.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timer.Tick != time.Second || cfg.Timer.AddStep != 10 || len(cfg.Timer.Presets) != 3 {
		t.Fatalf("unexpected timer defaults: %+v", cfg.Timer)
	}
	if cfg.Alarm.Timeout != 10*time.Second || cfg.Alarm.Vibration.Amplitude != 255 || cfg.Alarm.Vibration.Duration != 2*time.Second {
		t.Fatalf("unexpected alarm defaults: %+v", cfg.Alarm)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour || cfg.WS.ResyncInterval != 5*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileValues(t *testing.T) {
	dir := writeConfig(t, `
port: "9000"
db:
  path: "/tmp/timer.db"
timer:
  tick: 500ms
  presets: [30, 45]
  add_step: 5
alarm:
  timeout: 15s
sound:
  enabled: true
  frequency: 440
audio:
  router: none
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" || cfg.DB.Path != "/tmp/timer.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timer.Tick != 500*time.Millisecond || cfg.Timer.AddStep != 5 {
		t.Fatalf("unexpected timer: %+v", cfg.Timer)
	}
	if len(cfg.Timer.Presets) != 2 || cfg.Timer.Presets[0] != 30 || cfg.Timer.Presets[1] != 45 {
		t.Fatalf("unexpected presets: %v", cfg.Timer.Presets)
	}
	if cfg.Alarm.Timeout != 15*time.Second {
		t.Fatalf("alarm.timeout = %v", cfg.Alarm.Timeout)
	}
	if !cfg.Sound.Enabled || cfg.Sound.Frequency != 440 || cfg.Audio.Router != "none" {
		t.Fatalf("unexpected sound/audio: %+v %+v", cfg.Sound, cfg.Audio)
	}
	// untouched keys keep their defaults
	if cfg.Alarm.Vibration.Amplitude != 255 || cfg.Recorder.Queue != 256 {
		t.Fatalf("defaults lost: %+v %+v", cfg.Alarm, cfg.Recorder)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, "port: \"9000\"\nalarm:\n  timeout: 15s\n")
	t.Setenv("GYMTIMER_PORT", "7070")
	t.Setenv("GYMTIMER_ALARM_TIMEOUT", "20s")
	t.Setenv("GYMTIMER_AUTH_SIGNING_KEY", "s3cret")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" || cfg.Alarm.Timeout != 20*time.Second || cfg.Auth.SigningKey != "s3cret" {
		t.Fatalf("env not applied: port=%s timeout=%v key=%q", cfg.Port, cfg.Alarm.Timeout, cfg.Auth.SigningKey)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"zero tick", "timer:\n  tick: 0s\n", "timer.tick"},
		{"amplitude out of range", "alarm:\n  vibration:\n    amplitude: 300\n", "amplitude"},
		{"negative preset", "timer:\n  presets: [60, -1]\n", "presets"},
		{"volume too loud", "sound:\n  volume: 2\n", "sound.volume"},
		{"sub-millisecond beep", "sound:\n  on: 1ns\n  off: 0s\n", "sound.on"},
		{"negative pause", "sound:\n  off: -1s\n", "sound.off"},
		{"zero frequency", "sound:\n  frequency: 0\n", "sound.frequency"},
		{"ultrasonic frequency", "sound:\n  frequency: 40000\n", "sound.frequency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "port: [unclosed\n")); err == nil {
		t.Fatalf("expected a parse error")
	}
}
