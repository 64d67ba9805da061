package middleware

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"identity/internal/logs"
	"identity/internal/models"
)

// Identity — контекст вызывающего, извлечённый из JWT-куки.
// CompanyID пустой — суперпользователь.
type Identity struct {
	UserID    string
	CompanyID string
	// Исходная кука: пробрасывается в Guardian как есть, без переподписи.
	RawToken string
}

const identityKey ctxKey = "identity"

// JWTAuth проверяет HS256-токен из куки и кладёт Identity в контекст.
// Claims: sub либо user_id + company_id.
func JWTAuth(secret, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				models.WriteProblem(w, http.StatusUnauthorized,
					"Unauthorized", "missing access token", nil)
				return
			}

			claims := jwt.MapClaims{}
			tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				logs.Logger.Warnf("invalid JWT: %v reqid=%s", err, GetRequestID(r))
				models.WriteProblem(w, http.StatusUnauthorized,
					"Unauthorized", "invalid or expired access token", nil)
				return
			}

			id := Identity{RawToken: c.Value}
			if sub, ok := claims["sub"].(string); ok {
				id.UserID = sub
			}
			if id.UserID == "" {
				if uid, ok := claims["user_id"].(string); ok {
					id.UserID = uid
				}
			}
			if cid, ok := claims["company_id"].(string); ok {
				id.CompanyID = cid
			}
			if id.UserID == "" {
				models.WriteProblem(w, http.StatusUnauthorized,
					"Unauthorized", "user_id missing in token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity достаёт Identity из контекста запроса.
func GetIdentity(r *http.Request) (Identity, bool) {
	v, ok := r.Context().Value(identityKey).(Identity)
	return v, ok
}
