package api

import (
	"log"
	"net/http"
)

// authMiddleware checks if the user is authenticated, refreshing the OAuth
// token transparently when it is close to expiry.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessionStore.Get(r, sessionName)

		authenticated, ok := session.Values["authenticated"].(bool)
		if !ok || !authenticated {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		refreshed, err := s.authManager.RefreshTokenIfNeeded(session)
		if err != nil {
			http.Error(w, "Authentication expired", http.StatusUnauthorized)
			return
		}

		if refreshed {
			if err := session.Save(r, w); err != nil {
				log.Printf("Failed to save session after token refresh: %v", err)
			}
		}

		next.ServeHTTP(w, r)
	})
}
