package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
			r.Get("/themes", h.ThemesHandler)
			r.Get("/results", h.ResultsHandler)

			r.Post("/games", h.CreateGameHandler)
			r.Route("/games/{id}", func(r chi.Router) {
				r.Get("/", h.GetGameHandler)
				r.Post("/select", h.SelectCardHandler)
				r.Post("/shuffle", h.ShuffleHandler)
				r.Post("/new", h.NewGameHandler)
			})
		})
	})
}

// InitAuth sets up HS256 verification and returns a week-long service token.
func (h *Handler) InitAuth(jwtKey string) string {
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        expirationTime,
	})
	if err != nil {
		log.Errorf("unable to encode service token: %v", err)
		return ""
	}

	log.Debugf("DEBUG: JWT for testing expires soon : %s", tokenString)
	return tokenString
}
