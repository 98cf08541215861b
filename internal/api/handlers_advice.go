package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/api/validate"
	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type AdviceHandler struct {
	svc *services.AdviceService
}

func NewAdviceHandler(svc *services.AdviceService) *AdviceHandler { return &AdviceHandler{svc: svc} }

func (h *AdviceHandler) LatestAdvice(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	a, err := h.svc.LatestAdvice(r.Context(), u.UserID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, a)
}

func (h *AdviceHandler) ListAdvice(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	p := validate.PageParams(r)

	items, total, err := h.svc.ListAdvice(r.Context(), u.UserID, p)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, newPageResponse(items, total, p))
}

// RequestAdvice enqueues generation and returns 202 with the task id;
// clients poll GET /api/tasks/{taskId} until it settles.
func (h *AdviceHandler) RequestAdvice(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	task, err := h.svc.RequestAdvice(r.Context(), u.UserID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusAccepted, task)
}

func (h *AdviceHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	elig, err := h.svc.CheckEligibility(r.Context(), u.UserID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, elig)
}

func (h *AdviceHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	taskID := mux.Vars(r)["taskId"]

	task, err := h.svc.GetTask(r.Context(), u.UserID, taskID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, task)
}
