package api

import (
	"net/http"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type QuoteHandler struct {
	svc *services.QuoteService
}

func NewQuoteHandler(svc *services.QuoteService) *QuoteHandler { return &QuoteHandler{svc: svc} }

// RandomQuote is unauthenticated; the app shows it on the launch screen
// before login completes.
func (h *QuoteHandler) RandomQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Random(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, q)
}
