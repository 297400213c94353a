package http

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/pkg/e"
)

// SessionAuth проверяет сессионную куку на каждом запросе.
// Запросы без действующей сессии отклоняются до обращения к usecase-слою.
func SessionAuth(cfg *cfg.SessionCfg) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			token, err := jwt.ParseWithClaims(cookie.Value, &jwt.RegisteredClaims{},
				func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, e.ErrUnauthorized
					}

					return []byte(cfg.Secret), nil
				})
			if err != nil || !token.Valid {
				WriteError(w, e.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
