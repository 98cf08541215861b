package api

import (
	"net/http"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	respond.WriteJSON(w, http.StatusOK, u)
}

// DeleteMe removes the account and every note, memory, advice and queued
// task belonging to it.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), u.UserID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
