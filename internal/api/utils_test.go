package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, httptest.NewRequest(http.MethodGet, "/weather", nil), http.StatusBadRequest, "city is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "city is required", body["error"])
}

func TestSomethingWentWrong(t *testing.T) {
	rec := httptest.NewRecorder()
	SomethingWentWrong(rec, errors.New("city not found"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong: city not found", rec.Body.String())
}

func TestWriteJSONResponse_NoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNoContent, map[string]string{"x": "y"})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWantsJSON(t *testing.T) {
	assert.True(t, WantsJSON(httptest.NewRequest(http.MethodGet, "/weather?city=Paris&format=json", nil)))
	assert.False(t, WantsJSON(httptest.NewRequest(http.MethodGet, "/weather?city=Paris", nil)))
}
