package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "gym_timer/docs"
	"gym_timer/internal/alarm"
	"gym_timer/internal/audio"
	"gym_timer/internal/config"
	"gym_timer/internal/events"
	"gym_timer/internal/handlers"
	"gym_timer/internal/logger"
	"gym_timer/internal/repository"
	"gym_timer/internal/repository/db"
	"gym_timer/internal/server"
	"gym_timer/internal/service"
)

const configDir = "configs"

// @title                       Gym Timer API
// @version                     1.0
// @description                 Interval countdown with alarm, set counter and history.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load(configDir)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Encoding)

	// open DB
	conn, err := openDB(cfg.DB.Path, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	hub := events.NewHub()
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, buildDeps(cfg, hub, log))
	apiHandler := handlers.NewHandler(services, log, handlers.WithResyncInterval(cfg.WS.ResyncInterval))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.Restore(ctx); err != nil {
		log.Warnw("timer state not restored", "err", err)
	}

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		services.Recorder.Run(ctx, cfg.Recorder.FlushInterval)
	}()

	// start HTTP server
	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cfg.Server.ShutdownTimeout, srv, log)

	services.Close(context.Background())
	hub.Close()
	cancel()
	<-recorderDone
	log.Infow("bye")
}

// buildDeps maps configuration onto the timer session collaborators.
func buildDeps(cfg config.Config, hub *events.Hub, log *logger.Logger) service.Deps {
	deps := service.Deps{
		Hub:  hub,
		Tick: cfg.Timer.Tick,
		Alarm: alarm.Config{
			Timeout: cfg.Alarm.Timeout,
			Vibration: alarm.Vibration{
				Duration:  cfg.Alarm.Vibration.Duration,
				Amplitude: cfg.Alarm.Vibration.Amplitude,
			},
		},
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Presets: service.Presets{
			Durations: cfg.Timer.Presets,
			AddStep:   cfg.Timer.AddStep,
		},
		RecorderQueue: cfg.Recorder.Queue,
		Log:           log,
	}

	if cfg.Sound.Enabled {
		deps.Player = audio.NewBeepPlayer(audio.ToneConfig{
			FrequencyHz: cfg.Sound.Frequency,
			Volume:      cfg.Sound.Volume,
			On:          cfg.Sound.On,
			Off:         cfg.Sound.Off,
		})

		router, err := audio.NewRouter(cfg.Audio.Router)
		switch {
		case errors.Is(err, audio.ErrNoRouter):
			log.Infow("no audio router on this host; alarm uses the current output")
		case err != nil:
			log.Warnw("audio router disabled", "err", err)
		}
		deps.Router = router
	}

	if cfg.Auth.SigningKey == "" {
		log.Warnw("auth.signing_key is empty; using the development key")
	}
	return deps
}

// openDB initializes the SQLite database using configuration.
func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "gymtimer.db")
		path = "gymtimer.db"
	}
	return db.InitDB(path)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM and then drains in-flight requests.
func waitForShutdown(timeout time.Duration, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
