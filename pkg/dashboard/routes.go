// Package dashboard exposes the analytics API the front-end renders:
// session creation, KPI summaries, segmentations, the high-risk queue,
// CSV export and the reminder action.
package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mediinsight/platform/pkg/analytics/kpi"
	"github.com/mediinsight/platform/pkg/analytics/risk"
	"github.com/mediinsight/platform/pkg/cohort"
	"github.com/mediinsight/platform/pkg/common/config"
	"github.com/mediinsight/platform/pkg/common/logger"
	"github.com/mediinsight/platform/pkg/export"
	"github.com/mediinsight/platform/pkg/notify"
	"github.com/mediinsight/platform/pkg/session"
)

type Handler struct {
	cfg        *config.Config
	profile    cohort.Profile
	store      *session.Store
	dispatcher notify.Dispatcher
}

func NewHandler(cfg *config.Config, profile cohort.Profile, store *session.Store, dispatcher notify.Dispatcher) *Handler {
	return &Handler{cfg: cfg, profile: profile, store: store, dispatcher: dispatcher}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/api/v1/sessions", h.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/sessions/{id}/summary", h.handleSummary).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/sms-effect", h.handleSMSEffect).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/gender-breakdown", h.handleGenderBreakdown).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/high-risk", h.handleHighRisk).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/records", h.handleRecords).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/export", h.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/risk", h.handleRisk).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/sessions/{id}/reminders", h.handleReminders).Methods(http.MethodPost)
}

type createSessionRequest struct {
	Count int    `json:"count,omitempty"`
	Seed  *int64 `json:"seed,omitempty"`
}

type createSessionResponse struct {
	SessionID string    `json:"session_id"`
	Count     int       `json:"count"`
	Seed      *int64    `json:"seed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	count := req.Count
	if count == 0 {
		count = h.cfg.DefaultCohortSize
	}
	if count > h.cfg.MaxCohortSize {
		http.Error(w, fmt.Sprintf("count exceeds maximum of %d", h.cfg.MaxCohortSize), http.StatusBadRequest)
		return
	}

	var generator *cohort.Generator
	if req.Seed != nil {
		generator = cohort.NewSeededGenerator(h.profile, *req.Seed)
	} else {
		generator = cohort.NewGenerator(h.profile)
	}

	records, err := generator.Generate(count)
	if err != nil {
		if errors.Is(err, cohort.ErrInvalidCount) || errors.Is(err, cohort.ErrInvalidProfile) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sess := h.store.Put(r.Context(), records, req.Seed)
	logger.Log.WithFields(map[string]interface{}{
		"session_id": sess.ID,
		"count":      len(records),
	}).Info("Cohort session created")

	writeJSON(w, createSessionResponse{
		SessionID: sess.ID,
		Count:     len(records),
		Seed:      sess.Seed,
		CreatedAt: sess.CreatedAt,
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	summary, err := kpi.Summarize(sess.Records, h.cfg.UnitVisitValue)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summary)
}

type smsEffectResponse struct {
	ControlRate      *float64 `json:"control_rate,omitempty"`
	InterventionRate *float64 `json:"intervention_rate,omitempty"`
	Impact           *float64 `json:"impact,omitempty"`
	NoData           bool     `json:"no_data,omitempty"`
}

func (h *Handler) handleSMSEffect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var resp smsEffectResponse
	if rate, err := kpi.GroupRate(sess.Records, func(r cohort.AppointmentRecord) bool { return !r.SMSReceived }); err == nil {
		resp.ControlRate = &rate
	}
	if rate, err := kpi.GroupRate(sess.Records, func(r cohort.AppointmentRecord) bool { return r.SMSReceived }); err == nil {
		resp.InterventionRate = &rate
	}
	if resp.ControlRate != nil && resp.InterventionRate != nil {
		impact := *resp.ControlRate - *resp.InterventionRate
		resp.Impact = &impact
	} else {
		resp.NoData = true
	}
	writeJSON(w, resp)
}

func (h *Handler) handleGenderBreakdown(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, kpi.GenderBreakdown(sess.Records))
}

func (h *Handler) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	threshold := h.cfg.HighRiskLeadDays
	if raw := r.URL.Query().Get("lead_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "lead_days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	queue := kpi.HighRiskQueue(sess.Records, threshold)
	writeJSON(w, map[string]interface{}{
		"lead_days_threshold": threshold,
		"count":               len(queue),
		"records":             queue,
	})
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	matches := kpi.Search(sess.Records, r.URL.Query().Get("q"))
	writeJSON(w, map[string]interface{}{
		"count":   len(matches),
		"records": matches,
	})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.csv"`)
	if err := export.WriteCSV(w, sess.Records); err != nil {
		logger.Log.WithError(err).Error("Failed to stream cohort export")
	}
}

func (h *Handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	assessment, err := risk.Assess(sess.Records, risk.Options{})
	if err != nil {
		if errors.Is(err, risk.ErrEmptyCohort) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, assessment)
}

func (h *Handler) handleReminders(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	queue := kpi.HighRiskQueue(sess.Records, h.cfg.HighRiskLeadDays)
	sent, err := h.dispatcher.Dispatch(r.Context(), queue)
	if err != nil {
		logger.Log.WithError(err).Error("Reminder dispatch failed")
		http.Error(w, "failed to dispatch reminders", http.StatusBadGateway)
		return
	}

	writeJSON(w, map[string]interface{}{
		"targeted": len(queue),
		"sent":     sent,
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id := mux.Vars(r)["id"]
	sess, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return session.Session{}, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}
