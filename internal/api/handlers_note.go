package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/respond"
	"github.com/JiwonJeong414/TechTive-Backend/internal/api/validate"
	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
)

type NoteHandler struct {
	svc *services.NoteService
}

func NewNoteHandler(svc *services.NoteService) *NoteHandler { return &NoteHandler{svc: svc} }

type noteRequest struct {
	Content string `json:"content"`
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var in noteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NoteContent(in.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	n, err := h.svc.CreateNote(r.Context(), u.UserID, in.Content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	p := validate.PageParams(r)

	notes, total, err := h.svc.ListNotes(r.Context(), u.UserID, p)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, newPageResponse(notes, total, p))
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	noteID := mux.Vars(r)["noteId"]

	n, err := h.svc.GetNote(r.Context(), u.UserID, noteID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	noteID := mux.Vars(r)["noteId"]

	var in noteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "invalid json")
		return
	}
	if err := validate.NoteContent(in.Content); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	n, err := h.svc.UpdateNote(r.Context(), u.UserID, noteID, in.Content)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	noteID := mux.Vars(r)["noteId"]

	if err := h.svc.DeleteNote(r.Context(), u.UserID, noteID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
