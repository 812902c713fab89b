package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// Handler exposes the read-only dashboard endpoints. All routes are
// mounted behind the session middleware.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	out, err := h.svc.ListCustomers(r.Context(), page, perPage, q.Get("search"))
	if err != nil {
		h.logger.Errorw("list customers failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list customers"})
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CustomerDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
		return
	}
	out, err := h.svc.CustomerDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer not found"})
			return
		}
		h.logger.Errorw("customer detail failed", "customer", id, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load customer"})
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.svc.ListCampaigns(r.Context())
	if err != nil {
		h.logger.Errorw("list campaigns failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list campaigns"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		h.logger.Errorw("dashboard stats failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
