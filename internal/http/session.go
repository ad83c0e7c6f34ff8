package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-portfolio/internal/auth"
	"github.com/goliatone/go-portfolio/internal/logging"
	"github.com/goliatone/go-portfolio/internal/validation"
	"github.com/goliatone/go-portfolio/pkg/interfaces"
)

var loginSchema = validation.MustCompile("login", map[string]any{
	"type":     "object",
	"required": []any{"username", "password"},
	"properties": map[string]any{
		"username": map[string]any{"type": "string"},
		"password": map[string]any{"type": "string"},
	},
})

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
}

// SessionAPI registers login and logout.
type SessionAPI struct {
	basePath     string
	auth         *auth.Authenticator
	logger       interfaces.Logger
	maxBodyBytes int64
}

// NewSessionAPI constructs the login/logout endpoints under /api.
func NewSessionAPI(authenticator *auth.Authenticator, logger interfaces.Logger) *SessionAPI {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &SessionAPI{
		basePath:     "/api",
		auth:         authenticator,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Register attaches the session endpoints to mux.
func (api *SessionAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.auth == nil {
		return fmt.Errorf("http: authenticator is required")
	}
	mux.HandleFunc("POST "+joinPath(api.basePath, "login"), api.handleLogin)
	mux.HandleFunc("POST "+joinPath(api.basePath, "logout"), api.handleLogout)
	return nil
}

func (api *SessionAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeJSON(w, r, api.maxBodyBytes, loginSchema, &payload); err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	token, err := api.auth.Login(r.Context(), auth.ClientIP(r), strings.TrimSpace(payload.Username), payload.Password)
	if err != nil {
		writeError(w, r, api.logger, err)
		return
	}
	http.SetCookie(w, api.auth.SessionCookie(token))
	writeJSON(w, http.StatusOK, loginResponse{Username: strings.TrimSpace(payload.Username)})
}

func (api *SessionAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, api.auth.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}
