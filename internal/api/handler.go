package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"JobReach/internal/batch"
	"JobReach/internal/cron"
	"JobReach/internal/models"
	"JobReach/internal/store"
)

// Handler exposes the control surface and the display routes. Every response
// carries a success flag plus either a payload or an error message; nothing
// here panics past the handler boundary.
type Handler struct {
	Store     store.Store
	Runner    *batch.Runner
	Scheduler *cron.Scheduler

	// DefaultCron is used when /cron/start gets no explicit schedule.
	DefaultCron cron.Config

	// Secret guards /send for external cron services when non-empty.
	Secret string

	Log *zap.Logger
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}

// SendEmails triggers a manual batch run. It may overlap a scheduled run
// against the same store; outcomes are append-only so nothing corrupts.
func (h *Handler) SendEmails(w http.ResponseWriter, r *http.Request) {
	if h.Secret != "" {
		if r.Header.Get("Authorization") != "Bearer "+h.Secret {
			h.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	result, err := h.Runner.Run(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": result.Sent > 0 || result.Failed > 0,
		"message": result.Message,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"errors":  result.Errors,
	})
}

// ViewData lists every recipient with total and pending counts.
func (h *Handler) ViewData(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.Store.ListAll(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pending := 0
	for _, rec := range recipients {
		if rec.Status == models.StatusPending {
			pending++
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"data":         recipients,
		"totalRows":    len(recipients),
		"pendingCount": pending,
	})
}

type updateStatusRequest struct {
	ID        int64  `json:"id"`
	NewStatus string `json:"newStatus"`
}

// UpdateStatus is the human-driven status change; the only way a recipient
// leaves "Pending".
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == 0 || req.NewStatus == "" {
		h.writeError(w, http.StatusBadRequest, "Missing id or newStatus")
		return
	}

	err := h.Store.UpdateStatus(r.Context(), req.ID, models.RecipientStatus(req.NewStatus))
	if errors.Is(err, store.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Status updated successfully",
	})
}

// Logs returns recent send attempts, newest first.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Store.ListLogs(r.Context(), 1000)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"logs":    logs,
	})
}

type cronStartRequest struct {
	Schedule string `json:"schedule"`
}

// CronStart arms the scheduler. A malformed expression is rejected before
// anything is armed.
func (h *Handler) CronStart(w http.ResponseWriter, r *http.Request) {
	cfg := h.DefaultCron

	var req cronStartRequest
	if r.Body != nil {
		// Empty body is fine, the configured default applies.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Schedule != "" {
		cfg.IntervalMode = false
		cfg.Expression = req.Schedule
	}

	if !cfg.IntervalMode {
		if err := cron.ValidateExpression(cfg.Expression); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid cron schedule format")
			return
		}
	}

	if err := h.Scheduler.Start(cfg); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Cron job started",
		"schedule": cfg.Describe(),
	})
}

// CronStop is idempotent; stopping a stopped scheduler succeeds.
func (h *Handler) CronStop(w http.ResponseWriter, r *http.Request) {
	h.Scheduler.Stop()

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Cron job stopped",
	})
}

// CronStatus is a pure read of in-memory scheduler state.
func (h *Handler) CronStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Scheduler.Status()

	payload := map[string]any{
		"success":   true,
		"isRunning": st.IsRunning,
		"mode":      st.Mode,
		"schedule":  st.Schedule,
	}
	if st.LastRun != nil {
		payload["lastRun"] = st.LastRun
	}

	h.writeJSON(w, http.StatusOK, payload)
}

// CronLogs returns recent execution records, newest first.
func (h *Handler) CronLogs(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListExecutionRecords(r.Context(), 500)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"logs":    records,
	})
}
