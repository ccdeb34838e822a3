package handlers

import (
	"errors"
	"io"
	"net/http"

	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK        = "ok"
	statusStarted   = "started"
	statusPaused    = "paused"
	statusResumed   = "resumed"
	statusToggled   = "toggled"
	statusTimeAdded = "time_added"
	statusReset     = "reset"
	statusDismissed = "dismissed"
	statusSetChosen = "set_selected"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// commandError answers 400 for rejected input and 500 for anything else.
func (h *Handler) commandError(c *gin.Context, logKey string, err error) {
	if service.IsValidation(err) {
		if h.log != nil {
			h.log.Infow(logKey, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, "command failed", logKey, err)
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// SecondsRequest is the payload of start and add.
type SecondsRequest struct {
	// Seconds to count down (start) or to add (add)
	Seconds *int `json:"seconds" example:"90"`
}

// SetRequest is the payload of set selection.
type SetRequest struct {
	// Set number 1..5; selecting the current set clears it
	Set *int `json:"set" example:"3"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start countdown
// @Description  Starts a new countdown, replacing any active one and silencing a ringing alarm
// @Tags         timer
// @Accept       json
// @Produce      json
// @Param        body  body      SecondsRequest  true  "Duration"
// @Success      200   {object}  map[string]interface{}  "status, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/timer/start [post]
// @Security     BearerAuth
func (h *Handler) startTimer(c *gin.Context) {
	var req SecondsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Seconds == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "seconds is required"})
		return
	}
	if err := h.services.Timer.Start(c.Request.Context(), *req.Seconds); err != nil {
		h.commandError(c, "timer_start_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusStarted, gin.H{"seconds": *req.Seconds})
}

// @Summary      Pause countdown
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string  "not running"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/pause [post]
// @Security     BearerAuth
func (h *Handler) pauseTimer(c *gin.Context) {
	if err := h.services.Timer.Pause(c.Request.Context()); err != nil {
		h.commandError(c, "timer_pause_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusPaused, gin.H{})
}

// @Summary      Resume countdown
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string  "not paused"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/resume [post]
// @Security     BearerAuth
func (h *Handler) resumeTimer(c *gin.Context) {
	if err := h.services.Timer.Resume(c.Request.Context()); err != nil {
		h.commandError(c, "timer_resume_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusResumed, gin.H{})
}

// @Summary      Toggle pause
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleTimer(c *gin.Context) {
	status, err := h.services.Timer.TogglePause(c.Request.Context())
	if err != nil {
		h.commandError(c, "timer_toggle_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusToggled, gin.H{"timer_status": status})
}

// @Summary      Add time
// @Description  Adds seconds to a running or paused countdown; starts a new one otherwise. Without a body the preset step is used.
// @Tags         timer
// @Accept       json
// @Produce      json
// @Param        body  body      SecondsRequest  false  "Seconds to add"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/timer/add [post]
// @Security     BearerAuth
func (h *Handler) addTime(c *gin.Context) {
	var req SecondsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	seconds := h.services.Monitoring.Presets().AddStep
	if req.Seconds != nil {
		seconds = *req.Seconds
	}
	if err := h.services.Timer.AddSeconds(c.Request.Context(), seconds); err != nil {
		h.commandError(c, "timer_add_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusTimeAdded, gin.H{"seconds": seconds})
}

// @Summary      Reset countdown
// @Description  Stops and zeroes the countdown and silences a ringing alarm. Idempotent.
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timer/reset [post]
// @Security     BearerAuth
func (h *Handler) resetTimer(c *gin.Context) {
	if err := h.services.Timer.Reset(c.Request.Context()); err != nil {
		h.commandError(c, "timer_reset_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusReset, gin.H{})
}

// @Summary      Get timer state
// @Tags         timer
// @Produce      json
// @Success      200  {object}  models.TimerState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/timer/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "timer_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Quick-start presets
// @Tags         timer
// @Produce      json
// @Success      200  {object}  service.Presets
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/timer/presets [get]
// @Security     BearerAuth
func (h *Handler) getPresets(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Presets())
}

// @Summary      Dismiss alarm
// @Description  Stops the ringing alarm. Dismissing when nothing rings is not an error.
// @Tags         alarm
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, dismissed, state"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alarm/dismiss [post]
// @Security     BearerAuth
func (h *Handler) dismissAlarm(c *gin.Context) {
	stopped := h.services.Alarm.DismissAlarm(c.Request.Context())
	h.respondWithStatusAndState(c, statusDismissed, gin.H{"dismissed": stopped})
}

// @Summary      Select set
// @Description  Toggles the set counter (1..5); selecting the current set clears it
// @Tags         sets
// @Accept       json
// @Produce      json
// @Param        body  body      SetRequest  true  "Set"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/sets/select [post]
// @Security     BearerAuth
func (h *Handler) selectSet(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Set == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + "set is required"})
		return
	}
	current, err := h.services.Sets.SelectSet(c.Request.Context(), *req.Set)
	if err != nil {
		h.commandError(c, "set_select_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusSetChosen, gin.H{"current_set": current})
}
