package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "user not found")
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(wrapped, CodeInternal))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestCodeOfPlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeBadGateway, "backend unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "backend unreachable: dial tcp: refused", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:      http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeTooManyRequests: http.StatusTooManyRequests,
		CodeBadGateway:      http.StatusBadGateway,
		CodeUnavailable:     http.StatusServiceUnavailable,
		Code("mystery"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %s", code)
	}
}
