package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation: http.StatusBadRequest,
		KindNotFound:   http.StatusNotFound,
		KindForbidden:  http.StatusForbidden,
		KindConflict:   http.StatusConflict,
		KindStorage:    http.StatusBadGateway,
		KindInternal:   http.StatusInternalServerError,
		KindUnknown:    http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, New(kind, "x").HTTPStatus(), "kind %d", kind)
	}
}

func TestGetKindFollowsWrapChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("issue upload url: %w", Storage("storage unavailable", cause))

	assert.Equal(t, KindStorage, GetKind(err))
	assert.True(t, Is(err, KindStorage))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnknown, GetKind(cause))
}

func TestWithOpFormatsMessage(t *testing.T) {
	err := Validation("storageKey is required").WithOp("ConfirmUpload")
	assert.Equal(t, "ConfirmUpload: storageKey is required", err.Error())
}

func TestWithDetailsKeepsKindAndMessage(t *testing.T) {
	details := map[string]any{"allowed": []string{"image/jpeg"}}
	err := Validation("content type is not allowed").WithDetails(details)

	assert.Equal(t, KindValidation, err.Kind)
	assert.Equal(t, "content type is not allowed", err.Error())
	assert.Equal(t, details, err.Details)
}
