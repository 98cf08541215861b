// Package api wires the HTTP surface: routing, handlers and the middleware
// chain (panic recovery, auth).
package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/JiwonJeong414/TechTive-Backend/internal/api/recovery"
	"github.com/JiwonJeong414/TechTive-Backend/internal/auth"
	"github.com/JiwonJeong414/TechTive-Backend/internal/health"
	"github.com/JiwonJeong414/TechTive-Backend/internal/services"
	"github.com/JiwonJeong414/TechTive-Backend/internal/store"
)

// Deps carries everything the router needs. Construction happens in the
// run packages so tests can inject fakes.
type Deps struct {
	Store    store.Store
	Users    *services.UserService
	Notes    *services.NoteService
	Memories *services.MemoryService
	Advice   *services.AdviceService
	Quotes   *services.QuoteService
	Verifier auth.Verifier
	Checker  *health.ServiceHealthChecker
	Log      zerolog.Logger
}

// NewRouter builds the full route table. Health and quotes are public;
// everything else requires a verified bearer token.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware(d.Log))

	noteHandler := NewNoteHandler(d.Notes)
	memoryHandler := NewMemoryHandler(d.Memories)
	adviceHandler := NewAdviceHandler(d.Advice)
	userHandler := NewUserHandler(d.Users)
	quoteHandler := NewQuoteHandler(d.Quotes)
	healthHandler := NewHealthHandler(d.Checker, d.Store)

	// Public endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", healthHandler.CheckStorageHealth).Methods("GET")
	router.HandleFunc("/api/quotes/random", quoteHandler.RandomQuote).Methods("GET")

	// Authenticated endpoints
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(d.Verifier, d.Users, d.Log))

	authed.HandleFunc("/notes", noteHandler.CreateNote).Methods("POST")
	authed.HandleFunc("/notes", noteHandler.ListNotes).Methods("GET")
	authed.HandleFunc("/notes/{noteId:[0-9a-fA-F-]{36}}", noteHandler.GetNote).Methods("GET")
	authed.HandleFunc("/notes/{noteId:[0-9a-fA-F-]{36}}", noteHandler.UpdateNote).Methods("PUT")
	authed.HandleFunc("/notes/{noteId:[0-9a-fA-F-]{36}}", noteHandler.DeleteNote).Methods("DELETE")

	authed.HandleFunc("/memories", memoryHandler.ListMemories).Methods("GET")

	authed.HandleFunc("/advice", adviceHandler.ListAdvice).Methods("GET")
	authed.HandleFunc("/advice/latest", adviceHandler.LatestAdvice).Methods("GET")
	authed.HandleFunc("/advice/eligibility", adviceHandler.CheckEligibility).Methods("GET")
	authed.HandleFunc("/advice/generate", adviceHandler.RequestAdvice).Methods("POST")

	authed.HandleFunc("/tasks/{taskId:[0-9a-fA-F-]{36}}", adviceHandler.GetTask).Methods("GET")

	authed.HandleFunc("/users/me", userHandler.Me).Methods("GET")
	authed.HandleFunc("/users/me", userHandler.DeleteMe).Methods("DELETE")

	return router
}
