package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leetrack/leetrack-common/pkg/domain"
	customerrors "github.com/leetrack/leetrack-common/pkg/errors"
	"github.com/leetrack/leetrack-common/pkg/service"
)

type handler struct {
	svc    Practice
	logger *slog.Logger
}

type rateReq struct {
	Comfort *int `json:"comfort"`
}

type iceboxReq struct {
	Icebox *bool `json:"icebox"`
}

type problemResp struct {
	Problem *domain.Problem `json:"problem"` // null when the page is not tracked
}

type errorResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *handler) listProblems(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	problems, err := h.svc.ListProblems(r.Context(), refresh)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if problems == nil {
		problems = []*domain.Problem{}
	}
	writeJSON(w, http.StatusOK, problems)
}

func (h *handler) activeProblem(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ActiveProblem(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) trackProblem(w http.ResponseWriter, r *http.Request) {
	var req service.TrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, customerrors.ErrValidationFailed("body", "bad json"))
		return
	}

	p, err := h.svc.TrackProblem(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Lookup(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) rate(w http.ResponseWriter, r *http.Request) {
	var req rateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Comfort == nil {
		h.writeError(w, customerrors.ErrValidationFailed("comfort", "required"))
		return
	}

	if err := h.svc.Rate(r.Context(), chi.URLParam(r, "id"), domain.Comfort(*req.Comfort)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setIcebox(w http.ResponseWriter, r *http.Request) {
	var req iceboxReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Icebox == nil {
		h.writeError(w, customerrors.ErrValidationFailed("icebox", "required"))
		return
	}

	if err := h.svc.SetIcebox(r.Context(), chi.URLParam(r, "id"), *req.Icebox); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) pickWeak(w http.ResponseWriter, r *http.Request) {
	comfort, err := strconv.Atoi(r.URL.Query().Get("comfort"))
	if err != nil {
		h.writeError(w, customerrors.ErrValidationFailed("comfort", "must be an integer"))
		return
	}

	p, err := h.svc.PickWeak(r.Context(), domain.Comfort(comfort))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) pickByTag(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode := domain.PickModeWeakest
	if raw := q.Get("mode"); raw != "" {
		var ok bool
		if mode, ok = domain.ParsePickMode(raw); !ok {
			h.writeError(w, customerrors.ErrValidationFailed("mode", "must be weakest, drill or random"))
			return
		}
	}

	p, err := h.svc.PickByTag(r.Context(), domain.Tag(strings.TrimSpace(q.Get("tag"))), mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) pickIcebox(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.PickIcebox(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, problemResp{Problem: p})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	var trackerErr *customerrors.TrackerError
	resp := errorResp{Code: "INTERNAL", Message: "server error"}
	if errors.As(err, &trackerErr) {
		resp = errorResp{Code: trackerErr.Code, Message: trackerErr.Message}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case customerrors.IsCode(err, customerrors.ErrCodeValidationFailed):
		return http.StatusBadRequest
	case customerrors.IsCode(err, customerrors.ErrCodeNoMatch):
		return http.StatusNotFound
	case customerrors.IsCode(err, customerrors.ErrCodeDuplicateRecord):
		return http.StatusConflict
	case customerrors.IsCode(err, customerrors.ErrCodeCredentialsMissing):
		return http.StatusPreconditionFailed
	case customerrors.IsCode(err, customerrors.ErrCodeRemoteOperationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
