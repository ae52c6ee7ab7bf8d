package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("update: %w", Forbidden("not the owner of this property"))

	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrPropertyNotFound)
}

func TestInvalidAmenityNames_ListsNames(t *testing.T) {
	err := InvalidAmenityNames([]string{"Moat", "Helipad"})

	assert.Equal(t, "invalid amenity names: Moat, Helipad", err.Error())
	assert.Equal(t, []string{"Moat", "Helipad"}, err.Details)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("list: %w", ErrInvalidRange)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindInvalidRange, appErr.Kind)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
	}{
		{KindPropertyNotFound, http.StatusNotFound},
		{KindUserNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindInvalidRange, http.StatusBadRequest},
		{KindInvalidAmenityNames, http.StatusBadRequest},
		{KindInvalidHouseRuleNames, http.StatusBadRequest},
		{KindConstraintViolation, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.kind))
		})
	}
}
