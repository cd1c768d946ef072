package server

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"sayit/auth"
	"sayit/domain"
	"sayit/errors"
	"sayit/services"

	"github.com/samber/lo"
)

const (
	maxBodyBytes    = 16 << 10
	internalMessage = "internal server error"
)

type BoardServer struct {
	boardService services.IBoardService
	authService  services.IAuthService
	issuer       *auth.TokenIssuer
	log          *slog.Logger
}

// NewBoardServer builds the API handler. The admin routes (login and delete) are only
// registered when authService is enabled.
func NewBoardServer(log *slog.Logger, boardService services.IBoardService,
	authService services.IAuthService, issuer *auth.TokenIssuer, frontendURL string) http.Handler {
	s := &BoardServer{boardService: boardService, authService: authService, issuer: issuer, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/messages", s.handleGetMessages)
	mux.HandleFunc("POST /api/messages", s.handlePostMessage)
	mux.HandleFunc("GET /api/messages/search", s.handleSearchMessages)

	if authService != nil && authService.Enabled() {
		requireAdmin := auth.RequireRole(issuer, auth.RoleAdmin, s.unauthorized)
		mux.HandleFunc("POST /api/admin/login", s.handleLogin)
		mux.Handle("DELETE /api/messages/{id}", requireAdmin(http.HandlerFunc(s.handleDeleteMessage)))
	}

	return chainMiddlewares(mux, withCORS(frontendURL), withLogging(log), withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type postMessageRequest struct {
	Content   string `json:"content"`
	Recipient string `json:"recipient"`
}

type loginRequest struct {
	Password string `json:"password"`
}

type messageResponse struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	Recipient string    `json:"recipient"`
	CardColor string    `json:"cardColor"`
	CreatedAt time.Time `json:"createdAt"`
}

type messagesResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Messages []messageResponse `json:"messages"`
}

type postMessageResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    messageResponse `json:"data"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message,omitempty"`
	Reason       string `json:"reason,omitempty"`
	CleanVersion string `json:"cleanVersion,omitempty"`
	Field        string `json:"field,omitempty"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *BoardServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Message: "SayIt API is running"})
}

func (s *BoardServer) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.boardService.GetMessages(r.Context())
	if err != nil {
		s.serverError(w, r, "Failed to fetch messages", err)
		return
	}
	writeJSON(w, http.StatusOK, toMessagesResponse(messages))
}

func (s *BoardServer) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.boardService.SearchMessages(r.Context(), domain.SearchMessagesCommand{
		Query: r.URL.Query().Get("q"),
	})
	switch {
	case stderrors.Is(err, errors.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.serverError(w, r, "Failed to search messages", err)
		return
	}
	writeJSON(w, http.StatusOK, toMessagesResponse(messages))
}

func (s *BoardServer) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var body postMessageRequest
	if !decodeBody(w, r, &body) {
		return
	}

	message, err := s.boardService.PostMessage(r.Context(), domain.PostMessageCommand{
		Content:   body.Content,
		Recipient: body.Recipient,
	})

	var validationErr *errors.ValidationError
	var rejection *errors.ModerationRejection
	switch {
	case stderrors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case stderrors.As(err, &rejection):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:        rejection.Message,
			Reason:       rejection.Reason,
			CleanVersion: rejection.CleanVersion,
			Field:        rejection.Field,
		})
	case err != nil:
		s.serverError(w, r, "Failed to post message", err)
	default:
		writeJSON(w, http.StatusCreated, postMessageResponse{
			Success: true,
			Message: "Message posted successfully!",
			Data:    toMessageResponse(message),
		})
	}
}

func (s *BoardServer) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	err := s.boardService.DeleteMessage(r.Context(), domain.DeleteMessageCommand{ID: r.PathValue("id")})
	switch {
	case stderrors.Is(err, errors.ErrMessageNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Message not found"})
	case err != nil:
		s.serverError(w, r, "Failed to delete message", err)
	default:
		s.log.Info("Message deleted", "id", r.PathValue("id"), "by", auth.SubjectFrom(r.Context()))
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Message deleted successfully"})
	}
}

func (s *BoardServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if !decodeBody(w, r, &body) {
		return
	}
	token, err := s.authService.Login(body.Password)
	if err != nil {
		status := errors.StatusCode(err)
		if status == http.StatusInternalServerError {
			s.serverError(w, r, "Failed to log in", err)
			return
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token.String()})
}

func (s *BoardServer) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	s.log.Warn("Unauthorized admin request", "path", r.URL.Path, "reason", reason)
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: reason})
}

// serverError logs the cause and answers with a body free of internal detail.
func (s *BoardServer) serverError(w http.ResponseWriter, r *http.Request, summary string, err error) {
	s.log.Error(summary, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: summary, Message: internalMessage})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toMessageResponse(message domain.Message) messageResponse {
	return messageResponse{
		ID:        message.ID.String(),
		Content:   message.Content,
		Recipient: message.Recipient,
		CardColor: message.CardColor,
		CreatedAt: message.CreatedAt,
	}
}

func toMessagesResponse(messages []domain.Message) messagesResponse {
	return messagesResponse{
		Success: true,
		Count:   len(messages),
		Messages: lo.Map(messages, func(item domain.Message, _ int) messageResponse {
			return toMessageResponse(item)
		}),
	}
}
