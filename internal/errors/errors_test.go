package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewConfigError("lag_days must not be negative"),
			want: "[CONFIG] lag_days must not be negative",
		},
		{
			name: "with cause",
			err:  NewDocumentFormatError("missing facts key", fmt.Errorf("unexpected end of JSON input")),
			want: "[DOCUMENT_FORMAT] missing facts key: unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("open data/raw/0000320193.json: no such file")
	err := NewStorageError("failed to read document", cause)

	require.ErrorIs(t, err, cause)
}

func TestIsType(t *testing.T) {
	docErr := NewDocumentFormatError("missing cik key", nil)
	wrapped := fmt.Errorf("entity 0000320193: %w", docErr)

	assert.True(t, IsType(wrapped, ErrTypeDocumentFormat))
	assert.False(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeDocumentFormat))
}

func TestAppError_WithContext(t *testing.T) {
	err := NewDocumentFormatError("missing facts key", nil).
		WithContext("entity_id", "0000320193")

	assert.Equal(t, "0000320193", err.Context["entity_id"])
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "config error maps to bad request",
			err:        NewConfigError("horizon_days must be positive"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONFIG",
		},
		{
			name:       "not found maps to 404",
			err:        NewNotFoundError("feature table"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "document format maps to 422",
			err:        NewDocumentFormatError("missing facts key", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "DOCUMENT_FORMAT",
		},
		{
			name:       "unknown maps to 500",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := ToAPIError(tt.err)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
		})
	}
}
