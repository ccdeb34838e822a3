// Package config loads service settings from configs/config.yml with
// GYMTIMER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "GYMTIMER"
	configName = "config"
)

type Config struct {
	Port     string         `mapstructure:"port"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	Timer    TimerConfig    `mapstructure:"timer"`
	Alarm    AlarmConfig    `mapstructure:"alarm"`
	Sound    SoundConfig    `mapstructure:"sound"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	WS       WSConfig       `mapstructure:"ws"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Server   ServerConfig   `mapstructure:"server"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type TimerConfig struct {
	Tick    time.Duration `mapstructure:"tick"`
	Presets []int         `mapstructure:"presets"`
	AddStep int           `mapstructure:"add_step"`
}

type AlarmConfig struct {
	Timeout   time.Duration   `mapstructure:"timeout"`
	Vibration VibrationConfig `mapstructure:"vibration"`
}

type VibrationConfig struct {
	Duration  time.Duration `mapstructure:"duration"`
	Amplitude int           `mapstructure:"amplitude"`
}

// SoundConfig controls the host alarm tone.
type SoundConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Frequency float64       `mapstructure:"frequency"`
	Volume    float64       `mapstructure:"volume"`
	On        time.Duration `mapstructure:"on"`
	Off       time.Duration `mapstructure:"off"`
}

// AudioConfig picks the output router: auto, pulse or none.
type AudioConfig struct {
	Router string `mapstructure:"router"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type WSConfig struct {
	ResyncInterval time.Duration `mapstructure:"resync_interval"`
}

type RecorderConfig struct {
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	Queue         int           `mapstructure:"queue"`
}

type ServerConfig struct {
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "gymtimer.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	v.SetDefault("timer.tick", time.Second)
	v.SetDefault("timer.presets", []int{60, 90, 120})
	v.SetDefault("timer.add_step", 10)

	v.SetDefault("alarm.timeout", 10*time.Second)
	v.SetDefault("alarm.vibration.duration", 2*time.Second)
	v.SetDefault("alarm.vibration.amplitude", 255)

	v.SetDefault("sound.enabled", false)
	v.SetDefault("sound.frequency", 880.0)
	v.SetDefault("sound.volume", 0.4)
	v.SetDefault("sound.on", 500*time.Millisecond)
	v.SetDefault("sound.off", 500*time.Millisecond)

	v.SetDefault("audio.router", "auto")

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("ws.resync_interval", 5*time.Second)

	v.SetDefault("recorder.flush_interval", time.Second)
	v.SetDefault("recorder.queue", 256)

	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads config.yml from the given directories. A missing file is not
// an error: defaults and environment variables still apply.
func Load(dirs ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yml")
	for _, d := range dirs {
		v.AddConfigPath(d)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if len(dirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Audible range accepted for sound.frequency.
const (
	minToneHz = 20.0
	maxToneHz = 20000.0
)

// Validate rejects settings the timer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	if c.Timer.Tick <= 0 {
		errs = append(errs, fmt.Errorf("timer.tick must be positive, got %v", c.Timer.Tick))
	}
	if c.Timer.AddStep <= 0 {
		errs = append(errs, fmt.Errorf("timer.add_step must be positive, got %d", c.Timer.AddStep))
	}
	for _, p := range c.Timer.Presets {
		if p <= 0 {
			errs = append(errs, fmt.Errorf("timer.presets must be positive, got %d", p))
			break
		}
	}
	if c.Alarm.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("alarm.timeout must be positive, got %v", c.Alarm.Timeout))
	}
	if a := c.Alarm.Vibration.Amplitude; a < 1 || a > 255 {
		errs = append(errs, fmt.Errorf("alarm.vibration.amplitude must be 1..255, got %d", a))
	}
	if c.Sound.Volume < 0 || c.Sound.Volume > 1 {
		errs = append(errs, fmt.Errorf("sound.volume must be 0..1, got %v", c.Sound.Volume))
	}
	if f := c.Sound.Frequency; f < minToneHz || f > maxToneHz {
		errs = append(errs, fmt.Errorf("sound.frequency must be %v..%v Hz, got %v", minToneHz, maxToneHz, f))
	}
	if c.Sound.On < time.Millisecond {
		errs = append(errs, fmt.Errorf("sound.on must be at least 1ms, got %v", c.Sound.On))
	}
	if c.Sound.Off < 0 {
		errs = append(errs, fmt.Errorf("sound.off must not be negative, got %v", c.Sound.Off))
	}
	return errors.Join(errs...)
}
