package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCategory(t *testing.T) {
	err := Wrap(ErrNotFound, "user %s", "u-1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "u-1")

	// двойная обёртка тоже сохраняет категорию
	outer := Wrap(err, "lookup failed")
	assert.True(t, IsNotFound(outer))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[error]int{
		ErrValidation:                http.StatusBadRequest,
		ErrAuth:                      http.StatusUnauthorized,
		ErrForbidden:                 http.StatusForbidden,
		ErrNotFound:                  http.StatusNotFound,
		ErrConflict:                  http.StatusConflict,
		ErrCycle:                     http.StatusConflict,
		ErrUpstream:                  http.StatusInternalServerError,
		errors.New("raw db failure"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
		assert.Equal(t, want, HTTPStatus(Wrap(err, "context")), err.Error())
	}
}

func TestTitleNeverLeaksInternals(t *testing.T) {
	assert.Equal(t, "Internal Server Error",
		Title(errors.New("pq: connection refused")))
	assert.Equal(t, "Conflict", Title(Wrap(ErrCycle, "unit loop")))
}
