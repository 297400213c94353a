package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/pkg/e"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "session"

// AuthHandler выдаёт и отзывает сессионные куки оператора.
// Единственная учётная запись задаётся конфигурацией: имя и bcrypt-хэш пароля.
type AuthHandler struct {
	cfg    *cfg.SessionCfg
	logger logger.Logger
}

func NewAuthHandler(cfg *cfg.SessionCfg, logger logger.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, logger: logger}
}

// login
//
//	@Summary		Вход оператора
//	@Description	Проверяет учётные данные и выдаёт сессионную куку
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginRequest	true	"Учётные данные"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse	"Неверные учётные данные"
//	@Router			/auth/login [post]
func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, e.ErrInvalidCredentials)
		return
	}

	if req.Username != a.cfg.OperatorUser {
		a.logger.Warnf("Login rejected. user: %s", req.Username)
		WriteError(w, e.ErrInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.cfg.OperatorPasswordHash), []byte(req.Password)); err != nil {
		a.logger.Warnf("Login rejected. user: %s", req.Username)
		WriteError(w, e.ErrInvalidCredentials)
		return
	}

	expiresAt := time.Now().Add(a.cfg.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})

	signed, err := token.SignedString([]byte(a.cfg.Secret))
	if err != nil {
		a.logger.Errorf(err, "Failed to sign session token")
		WriteError(w, e.ErrInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// logout
//
//	@Summary	Выход оператора
//	@Tags		auth
//	@Success	204
//	@Router		/auth/logout [post]
func (a *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
