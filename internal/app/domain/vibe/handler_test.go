package vibe

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func postAnalyze(svc *Service, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/places/analyze", h.AnalyzePlace)

	req := httptest.NewRequest(http.MethodPost, "/places/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzePlaceRequiresName(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	w := postAnalyze(svc, `{"placeTypes": ["cafe"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Place name is required")
}

func TestAnalyzePlaceUnconfiguredStillSucceeds(t *testing.T) {
	svc := NewService(nil, zap.NewNop())

	w := postAnalyze(svc, `{"placeName": "Jeita Grotto"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "undiscovered")
}

func TestAnalyzePlaceRefreshFailureIsServerError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider down")}
	svc := NewService(gen, zap.NewNop())

	w := postAnalyze(svc, `{
		"placeName": "Byblos Old Souk",
		"isRefresh": true,
		"existingNotes": [{"author": "amal", "content": "Jasmine everywhere."}]
	}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyzePlaceSuccess(t *testing.T) {
	gen := &fakeGenerator{text: validVibeJSON}
	svc := NewService(gen, zap.NewNop())

	w := postAnalyze(svc, `{"placeName": "Raouche Rocks"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "golden-hour")
}
