package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-cinema/internal/apperr"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(apperr.NotFound("movie %q not found", "Dune")))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(apperr.Conflict("seat taken")))
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(apperr.Invalid("bad rating")))
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(errors.New("plain")))
	assert.Equal(t, apperr.KindUnexpected, apperr.KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperr.NotFound("gone"))
	assert.True(t, apperr.IsNotFound(err))
}

func TestUnexpected_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperr.Unexpected(cause, "failed to load showtime %d", 7)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to load showtime 7")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(apperr.NotFound("x")))
	assert.Equal(t, http.StatusConflict, apperr.HTTPStatus(apperr.Conflict("x")))
	assert.Equal(t, http.StatusBadRequest, apperr.HTTPStatus(apperr.Invalid("x")))
	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(errors.New("x")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", apperr.KindNotFound.String())
	assert.Equal(t, "conflict", apperr.KindConflict.String())
	assert.Equal(t, "invalid_request", apperr.KindInvalid.String())
	assert.Equal(t, "unexpected", apperr.KindUnexpected.String())
}
