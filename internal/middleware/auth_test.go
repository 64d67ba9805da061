package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func newAuthRouter(captured *Identity) *mux.Router {
	r := mux.NewRouter()
	r.Use(JWTAuth(testSecret, "access_token"))
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetIdentity(r); ok {
			*captured = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestJWTAuthValidToken(t *testing.T) {
	var got Identity
	router := newAuthRouter(&got)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":        "user-1",
		"company_id": "company-1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "company-1", got.CompanyID)
	assert.Equal(t, token, got.RawToken)
}

func TestJWTAuthUserIDClaimFallback(t *testing.T) {
	var got Identity
	router := newAuthRouter(&got)

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-2",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", got.UserID)
	// company_id нет — суперпользователь
	assert.Empty(t, got.CompanyID)
}

func TestJWTAuthRejects(t *testing.T) {
	var got Identity
	router := newAuthRouter(&got)

	cases := map[string]func(*http.Request){
		"no cookie": func(*http.Request) {},
		"garbage token": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: "not-a-jwt"})
		},
		"wrong secret": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t,
				"another-secret", jwt.MapClaims{"sub": "user-1"})})
		},
		"expired": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t,
				testSecret, jwt.MapClaims{
					"sub": "user-1",
					"exp": time.Now().Add(-time.Hour).Unix(),
				})})
		},
		"no subject": func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t,
				testSecret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})})
		},
	}
	for name, prep := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			prep(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/problem+json",
				rec.Header().Get("Content-Type"))
		})
	}
}
