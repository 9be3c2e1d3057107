package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wmcornejo/reView/internal/interfaces/http/middleware"
	"github.com/wmcornejo/reView/pkg/errors"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key": "value"}`, rec.Body.String())
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		code       errors.ErrorCode
		wantStatus int
	}{
		{errors.ErrCodeBadRequest, http.StatusBadRequest},
		{errors.ErrCodeSignalInvalid, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeProjectUnknown, http.StatusNotFound},
		{errors.ErrCodeValidation, http.StatusUnprocessableEntity},
		{errors.ErrCodeProjectConfigInvalid, http.StatusUnprocessableEntity},
		{errors.ErrCodeColumnNotFound, http.StatusUnprocessableEntity},
		{errors.ErrCodeUnsupportedFormat, http.StatusUnsupportedMediaType},
		{errors.ErrCodeReadFailure, http.StatusInternalServerError},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeFigureBuild, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			writeAppError(rec, req, errors.New(tt.code, "boom"))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code.String(), resp.Error.Code)
			assert.Equal(t, "boom", resp.Error.Message)
		})
	}
}

func TestWriteAppError_Detail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	err := errors.New(errors.ErrCodeReadFailure, "read supply curve").
		WithDetail("/data/wind_sc.csv")
	writeAppError(rec, req, err)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "read supply curve", resp.Error.Message)
	assert.Equal(t, "/data/wind_sc.csv", resp.Error.Detail)
}

func TestWriteAppError_MasksUnclassified(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	writeAppError(rec, req, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeInternal.String(), resp.Error.Code)
	assert.Equal(t, "internal server error", resp.Error.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestWriteAppError_RequestIDPropagated(t *testing.T) {
	var rec *httptest.ResponseRecorder

	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, r, errors.New(errors.ErrCodeNotFound, "missing"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-xyz")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "req-xyz", resp.RequestID)
}

func TestDecodeJSON(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"name": "hydrogen"}`))

		var dest struct {
			Name string `json:"name"`
		}
		require.NoError(t, decodeJSON(req, &dest))
		assert.Equal(t, "hydrogen", dest.Name)
	})

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/",
			strings.NewReader(`{"name":`))

		var dest struct{}
		err := decodeJSON(req, &dest)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	})
}
