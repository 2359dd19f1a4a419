package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindUpstream, http.StatusServiceUnavailable},
		{KindParse, http.StatusBadGateway},
		{KindEmptyResult, http.StatusBadGateway},
		{KindPersistence, http.StatusInternalServerError},
		{Kind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.kind).HTTPStatusCode())
		})
	}
}

func TestWithStatusOverridesKind(t *testing.T) {
	e := Upstream(errors.New("429"), WithStatus(http.StatusTooManyRequests))
	assert.Equal(t, http.StatusTooManyRequests, e.HTTPStatusCode())
	assert.Equal(t, KindUpstream, e.Kind)
}

func TestConvert(t *testing.T) {
	cause := errors.New("boom")

	wrapped := fmt.Errorf("saving: %w", Persistence(cause))
	e := Convert(wrapped)
	require.Equal(t, KindPersistence, e.Kind)
	assert.ErrorIs(t, e, cause)

	plain := Convert(cause)
	assert.Equal(t, KindInternal, plain.Kind)
	assert.ErrorIs(t, plain, cause)
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("parse: %w", Parse("no structure"))
	assert.True(t, IsKind(err, KindParse))
	assert.False(t, IsKind(err, KindEmptyResult))
	assert.False(t, IsKind(nil, KindParse))
}

func TestErrorMessage(t *testing.T) {
	e := InvalidInput("topic is required")
	assert.Equal(t, "invalid_input: topic is required", e.Error())

	e = Upstream(errors.New("timeout"))
	assert.Equal(t, "upstream_unavailable: quiz provider is unavailable: timeout", e.Error())
}
