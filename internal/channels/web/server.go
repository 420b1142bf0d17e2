// ABOUTME: HTTP channel: chat, brief, knowledge base, and reminder routes
// ABOUTME: plus the Google OAuth link flow, on a chi router
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/harper/aide/internal/auth"
	"github.com/harper/aide/internal/kb"
	"github.com/harper/aide/internal/models"
)

// userHeader identifies the caller. Session auth in front of this service
// is out of scope; the header is trusted as-is.
const userHeader = "X-User"

// ChatHandler runs one user message through the agent.
type ChatHandler interface {
	HandleMessage(ctx context.Context, user, session, text string) (string, error)
}

// BriefSource produces the daily brief text.
type BriefSource interface {
	Generate(ctx context.Context, cred models.Credential, user string) (string, error)
}

// CredentialSource resolves a user's calendar credential.
type CredentialSource interface {
	CredentialFor(ctx context.Context, user string) (*models.Credential, error)
}

// Server is the HTTP channel adapter.
type Server struct {
	chat   ChatHandler
	briefs BriefSource
	kb     *kb.Store
	creds  CredentialSource
	oauth  *auth.Manager
}

// NewServer wires the HTTP channel. oauth may be nil, which disables the
// /auth routes.
func NewServer(chat ChatHandler, briefs BriefSource, store *kb.Store, creds CredentialSource, oauth *auth.Manager) *Server {
	return &Server{chat: chat, briefs: briefs, kb: store, creds: creds, oauth: oauth}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.health)
	r.Post("/chat", s.handleChat)
	r.Get("/brief", s.handleBrief)
	r.Get("/kb", s.handleGetKB)
	r.Put("/kb", s.handlePutKB)
	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", s.handleListReminders)
		r.Post("/", s.handleAddReminder)
		r.Delete("/{reminderID}", s.handleRemoveReminder)
	})
	if s.oauth != nil {
		r.Get("/auth/google", s.handleAuthStart)
		r.Get("/auth/callback", s.handleAuthCallback)
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	session := req.SessionID
	if session == "" {
		session = "web"
	}
	reply, err := s.chat.HandleMessage(r.Context(), user, session, req.Message)
	if err != nil {
		log.Printf("error: chat for %s: %v", user, err)
		if errors.Is(err, models.ErrContextUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "your history is temporarily unavailable, try again shortly")
			return
		}
		writeError(w, http.StatusBadGateway, "the assistant could not answer, try again")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	cred, err := s.creds.CredentialFor(r.Context(), user)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusConflict, "Google Calendar is not connected; visit /auth/google first")
			return
		}
		log.Printf("error: brief credential for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "could not load your calendar credential")
		return
	}
	text, err := s.briefs.Generate(r.Context(), *cred, user)
	if err != nil {
		log.Printf("error: brief for %s: %v", user, err)
		writeError(w, http.StatusBadGateway, "could not generate your brief")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"brief": text})
}

func (s *Server) handleGetKB(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	doc, err := s.kb.Load(user)
	if err != nil {
		log.Printf("error: loading knowledge base for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "could not load your knowledge base")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Marshal())
}

func (s *Server) handlePutKB(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	doc := models.ParseKnowledgeBaseDocument(body)
	if err := s.kb.Save(user, doc); err != nil {
		log.Printf("error: saving knowledge base for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "could not save your knowledge base")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	reminders, err := s.kb.Reminders(user)
	if err != nil {
		log.Printf("error: listing reminders for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "could not load your reminders")
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

type addReminderRequest struct {
	Text       string `json:"text"`
	Recurrence string `json:"recurrence"`
	Date       string `json:"date"`
}

func (s *Server) handleAddReminder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req addReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	rec := models.Recurrence(req.Recurrence)
	if req.Recurrence == "" {
		rec = models.RecurrenceNone
	}
	if !models.ValidRecurrence(rec) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown recurrence %q", req.Recurrence))
		return
	}
	reminder := models.NewReminder(req.Text, rec, req.Date)
	if err := s.kb.AppendReminder(user, reminder); err != nil {
		log.Printf("error: adding reminder for %s: %v", user, err)
		writeError(w, http.StatusInternalServerError, "could not save your reminder")
		return
	}
	writeJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleRemoveReminder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "reminderID")
	if err := s.kb.RemoveReminder(user, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("no reminder with id %s", id))
			return
		}
		log.Printf("error: removing reminder %s for %s: %v", id, user, err)
		writeError(w, http.StatusInternalServerError, "could not remove your reminder")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, s.oauth.AuthURL(user), http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if user == "" || code == "" {
		writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	if _, err := s.oauth.Exchange(r.Context(), user, code); err != nil {
		log.Printf("error: oauth exchange for %s: %v", user, err)
		writeError(w, http.StatusBadGateway, "could not complete Google sign-in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := r.Header.Get(userHeader)
	if user == "" {
		user = r.URL.Query().Get("user")
	}
	if user == "" {
		writeError(w, http.StatusUnauthorized, "identify yourself with the X-User header")
		return "", false
	}
	return user, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
