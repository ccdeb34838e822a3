package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gym_timer/internal/events"
	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000

	streamBuffer   = 64
	commandBuffer  = 8
	maxResubscribe = 3
)

// Frame types written by the server in addition to the hub message types.
const (
	frameAck   = "ack"
	frameError = "error"
)

// Client commands accepted on the socket.
const (
	cmdStart     = "start"
	cmdPause     = "pause"
	cmdResume    = "resume"
	cmdToggle    = "toggle"
	cmdAdd       = "add"
	cmdReset     = "reset"
	cmdDismiss   = "dismiss"
	cmdSelectSet = "select_set"
)

var (
	errMissingToken   = errors.New("missing token")
	errMissingSeconds = errors.New("seconds is required")
	errMissingSet     = errors.New("set is required")
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsCommand is a client frame, e.g. {"type":"start","seconds":90}.
type wsCommand struct {
	Type    string `json:"type"`
	Seconds *int   `json:"seconds,omitempty"`
	Set     *int   `json:"set,omitempty"`

	parseErr error
}

type wsAck struct {
	Command string      `json:"command"`
	State   interface{} `json:"state,omitempty"`
}

// Upgrader for HTTP -> WebSocket.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // TODO: take allowed origins from config once a web client is deployed
}

// @Summary      Event stream
// @Description  Upgrades to a WebSocket. Sends a "state" frame on connect and every interval, forwards timer, alarm, set, vibrate and notification events, and accepts commands {"type":"start|pause|resume|toggle|add|reset|dismiss|select_set","seconds":N,"set":N}.
// @Tags         stream
// @Param        token        query  string  false  "JWT (alternative to the Authorization header)"
// @Param        interval     query  string  false  "State resync period, e.g. 2s"
// @Param        interval_ms  query  int     false  "State resync period in milliseconds"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	if _, err := h.authenticateWS(c); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	sub := h.subscribe()
	defer func() {
		if sub != nil {
			_ = sub.Close()
		}
	}()

	// Reader goroutine parses commands and detects disconnects.
	done := make(chan struct{})
	quit := make(chan struct{})
	defer close(quit)
	cmds := make(chan wsCommand, commandBuffer)
	go h.startReader(conn, cmds, done, quit)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()

	// Send initial state immediately.
	if err := h.sendState(ctx, conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	lagged := 0
	// All writes happen in this loop.
	for {
		var stream <-chan events.Message
		if sub != nil {
			stream = sub.C()
		}
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendState(ctx, conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case m, ok := <-stream:
			if !ok {
				// dropped for falling behind: subscribe again and resync
				lagged++
				if lagged > maxResubscribe {
					if h.log != nil {
						h.log.Infow("ws_stream_closed")
					}
					return
				}
				sub = h.subscribe()
				if err := h.sendState(ctx, conn); err != nil {
					return
				}
				continue
			}
			lagged = 0
			if err := writeEnvelope(conn, wsEnvelope{Type: m.Type, Data: m.Data}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case cmd := <-cmds:
			if err := writeEnvelope(conn, h.runCommand(ctx, cmd)); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// authenticateWS accepts the JWT from ?token= or a bearer Authorization
// header, since browsers cannot set headers on a WebSocket handshake.
func (h *Handler) authenticateWS(c *gin.Context) (int, error) {
	if h.services == nil || h.services.Authorization == nil {
		return 0, errMissingToken
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		token, _ = bearerToken(c.GetHeader("Authorization"))
	}
	if token == "" {
		return 0, errMissingToken
	}
	return h.services.ParseToken(token)
}

func (h *Handler) subscribe() *events.Subscription {
	if h.services == nil || h.services.Stream == nil {
		return nil
	}
	return h.services.Stream.Subscribe(streamBuffer)
}

// Helper: parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return h.resyncInterval
}

// Helper: startReader parses incoming frames into commands until the
// connection closes or the writer quits.
func (h *Handler) startReader(conn *websocket.Conn, cmds chan<- wsCommand, done chan<- struct{}, quit <-chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			cmd = wsCommand{parseErr: err}
		}
		select {
		case cmds <- cmd:
		case <-quit:
			return
		}
	}
}

// runCommand executes one client command and builds the reply frame.
func (h *Handler) runCommand(ctx context.Context, cmd wsCommand) wsEnvelope {
	if cmd.parseErr != nil {
		return wsEnvelope{Type: frameError, Error: "invalid command: " + cmd.parseErr.Error()}
	}
	name := strings.ToLower(strings.TrimSpace(cmd.Type))
	if err := h.dispatch(ctx, name, cmd); err != nil {
		if h.log != nil && !service.IsValidation(err) && !isClientCommandError(err) {
			h.log.Errorw("ws_command_failed", "command", name, "err", err)
		}
		return wsEnvelope{Type: frameError, Error: err.Error()}
	}
	ack := wsAck{Command: name}
	if st, err := h.services.Monitoring.GetState(ctx); err == nil {
		ack.State = st
	}
	return wsEnvelope{Type: frameAck, Data: ack}
}

func (h *Handler) dispatch(ctx context.Context, name string, cmd wsCommand) error {
	switch name {
	case cmdStart:
		if cmd.Seconds == nil {
			return errMissingSeconds
		}
		return h.services.Timer.Start(ctx, *cmd.Seconds)
	case cmdPause:
		return h.services.Timer.Pause(ctx)
	case cmdResume:
		return h.services.Timer.Resume(ctx)
	case cmdToggle:
		_, err := h.services.Timer.TogglePause(ctx)
		return err
	case cmdAdd:
		seconds := h.services.Monitoring.Presets().AddStep
		if cmd.Seconds != nil {
			seconds = *cmd.Seconds
		}
		return h.services.Timer.AddSeconds(ctx, seconds)
	case cmdReset:
		return h.services.Timer.Reset(ctx)
	case cmdDismiss:
		h.services.Alarm.DismissAlarm(ctx)
		return nil
	case cmdSelectSet:
		if cmd.Set == nil {
			return errMissingSet
		}
		_, err := h.services.Sets.SelectSet(ctx, *cmd.Set)
		return err
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, cmd.Type)
	}
}

var errUnknownCommand = errors.New("unknown command")

func isClientCommandError(err error) bool {
	return errors.Is(err, errMissingSeconds) || errors.Is(err, errMissingSet) || errors.Is(err, errUnknownCommand)
}

// Helper: sendState fetches and writes the current state with a write deadline.
func (h *Handler) sendState(ctx context.Context, conn *websocket.Conn) error {
	st, err := h.services.Monitoring.GetState(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_get_state_failed", "err", err)
		}
		return err
	}
	return writeEnvelope(conn, wsEnvelope{Type: events.TypeState, Data: st})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
