package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/saunderscox/taskolotl/pkg/jwt"
	"github.com/saunderscox/taskolotl/pkg/logger"
)

// UserResponse is the public profile returned by the me endpoint.
type UserResponse struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
	Permission        string `json:"permission"`
}

// Handler exposes the identity endpoints over HTTP. It is a thin transport
// layer: all decisions live in OAuthService, Refresher, and the middleware.
type Handler struct {
	oauth     *OAuthService
	issuer    *Issuer
	refresher *Refresher
	store     UserStore
	logger    *slog.Logger
}

// HandlerOption configures a Handler during construction.
type HandlerOption func(*Handler)

// WithHandlerLogger sets a custom logger for the handler.
func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates the identity HTTP handler.
func NewHandler(oauth *OAuthService, issuer *Issuer, refresher *Refresher, store UserStore, opts ...HandlerOption) *Handler {
	h := &Handler{
		oauth:     oauth,
		issuer:    issuer,
		refresher: refresher,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Login begins the federated login flow by redirecting to the provider.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	url, err := h.oauth.AuthURL(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build auth url",
			logger.Error(err), logger.Component("auth_handler"))
		writeError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Callback completes the federated login flow and responds with a token pair.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	user, err := h.oauth.Authenticate(r.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidState), errors.Is(err, ErrInvalidCode),
			errors.Is(err, ErrUnverifiedEmail), errors.Is(err, ErrMissingProfile):
			writeError(w, http.StatusUnauthorized, "authentication failed")
		default:
			h.logger.ErrorContext(r.Context(), "federated login failed",
				logger.Error(err), logger.Component("auth_handler"))
			writeError(w, http.StatusInternalServerError, "authentication processing failed")
		}
		return
	}

	pair, err := h.issuer.IssuePair(user)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue token pair",
			logger.UserID(user.ID.String()), logger.Error(err), logger.Component("auth_handler"))
		writeError(w, http.StatusInternalServerError, "authentication processing failed")
		return
	}

	h.logger.InfoContext(r.Context(), "authenticated via federated login",
		logger.UserID(user.ID.String()),
		slog.String("provider", user.OAuthProvider),
		logger.Component("auth_handler"),
	)
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges a refresh token for a new pair. Token invalidity is
// always user-visible here: a 401 with no silent fallback.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "missing refresh token")
		return
	}

	pair, err := h.refresher.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.ErrorContext(r.Context(), "refresh failed",
			logger.Error(err), logger.Component("auth_handler"))
		writeError(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

// Me returns the public profile of the verified identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r.Context())
	if err != nil {
		// A credential problem is the caller's fault; a store outage is not
		// and must not read as "your token is bad".
		if errors.Is(err, ErrInvalidCredential) || errors.Is(err, ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to load current user",
			logger.Error(err), logger.Component("auth_handler"))
		writeError(w, http.StatusInternalServerError, "profile unavailable")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{
		ID:                user.ID.String(),
		Email:             user.Email,
		Username:          user.Username,
		ProfilePictureURL: user.ProfilePictureURL,
		Permission:        string(user.Permission),
	})
}

type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
}

// Status reports whether the request carries a verified identity. Public on
// purpose: anonymous requests get {authenticated: false}, not a 401.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := jwt.IdentityFromContext(r.Context())
	resp := statusResponse{Authenticated: ok}
	if ok {
		resp.UserID = id.Subject
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentUser(ctx context.Context) (*User, error) {
	id, ok := jwt.IdentityFromContext(ctx)
	if !ok {
		return nil, ErrInvalidCredential
	}

	userID, err := uuid.Parse(id.Subject)
	if err != nil {
		return nil, ErrInvalidCredential
	}

	return h.store.GetByID(ctx, userID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
