package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gym_timer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var (
	queryLayouts = []string{time.RFC3339, layoutDateTime, layoutDate}

	errBadTime = errors.New("use RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")
)

// @Summary      List timer history
// @Description  Filter the timer log by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to    query   string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). Date-only treated as end of day."  example(2025-08-31)
// @Param        type  query   string  false  "Event type"  Enums(START,PAUSE,RESUME,ADD_TIME,RESET,COMPLETE,ALARM_START,ALARM_STOP,SET_SELECT)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	filter, msg := logFilterFromQuery(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	entries, err := h.services.EventLog.List(c.Request.Context(), filter)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"count": len(entries), "events": entries})
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", filter.From, "to", filter.To, "type", filter.Type)
	}
}

// logFilterFromQuery reads from, to and type. A non-empty message means the
// query is unusable.
func logFilterFromQuery(c *gin.Context) (service.LogFilter, string) {
	f := service.LogFilter{Type: strings.ToUpper(strings.TrimSpace(c.Query("type")))}

	if qs := c.Query("from"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, "invalid 'from' time; " + err.Error()
		}
		f.From = t
	}
	if qs := c.Query("to"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			return f, "invalid 'to' time; " + err.Error()
		}
		// a bare date covers the whole day
		if !strings.ContainsAny(qs, "T ") {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = t
	}

	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, "'from' must be <= 'to'"
	}
	return f, ""
}

// parseQueryTime tries each accepted layout and returns the instant in UTC.
func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range queryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadTime
}
