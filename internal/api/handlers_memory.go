package api

import (
	"net/http"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/api/validate"
	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type MemoryHandler struct {
	svc *services.MemoryService
}

func NewMemoryHandler(svc *services.MemoryService) *MemoryHandler { return &MemoryHandler{svc: svc} }

// ListMemories exposes the read-only memory history. Memories are created
// by the pipeline only; there is no write endpoint.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	p := validate.PageParams(r)

	items, total, err := h.svc.ListMemories(r.Context(), u.UserID, p)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, newPageResponse(items, total, p))
}
