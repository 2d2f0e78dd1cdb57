package api

import (
	"encoding/json"
	"net/http"
)

// AuthStatusResponse represents the current authentication status.
type AuthStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"userName,omitempty"`
}

// handleLogin initiates the OAuth login flow.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.authManager.GetAuthorizationURL()
	if err != nil {
		http.Error(w, "Failed to generate authorization URL", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"authUrl": authURL})
}

// handleAuthCallback handles the OAuth callback, exchanging the
// authorization code for tokens and starting the session.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessionStore.Get(r, sessionName)

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	tokens, err := s.authManager.ExchangeCodeForTokens(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange authorization code", http.StatusInternalServerError)
		return
	}

	session.Values["authenticated"] = true
	session.Values["access_token"] = tokens.AccessToken
	session.Values["refresh_token"] = tokens.RefreshToken
	session.Values["token_expiry"] = tokens.Expiry.Unix()

	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, s.config.FrontendURL, http.StatusFound)
}

// handleLogout clears the operator's session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessionStore.Get(r, sessionName)

	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1

	if err := session.Save(r, w); err != nil {
		http.Error(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "logged out"})
}

// handleAuthStatus reports whether the caller currently has a valid session.
func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessionStore.Get(r, sessionName)

	authenticated, _ := session.Values["authenticated"].(bool)
	userName, _ := session.Values["user_name"].(string)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthStatusResponse{
		Authenticated: authenticated,
		UserName:      userName,
	})
}

// currentUserName returns the session's user name, or "" if absent.
func (s *Server) currentUserName(r *http.Request) string {
	session, _ := s.sessionStore.Get(r, sessionName)
	userName, _ := session.Values["user_name"].(string)
	return userName
}
