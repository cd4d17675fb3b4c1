package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transcendent/backend/internal/models"
	"transcendent/backend/pkg/npid"
)

func serve(t *testing.T, opts Options, fn func(*gin.Context) error) (int, StatusResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &Handler{log: zap.NewNop(), opts: opts}
	router := gin.New()
	router.Use(gin.CustomRecovery(h.Recover))
	router.GET("/", h.Wrap(fn))

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestFail_StatusMapping(t *testing.T) {
	storageErr := models.NewStorageError("find games", errors.New("connection reset"))
	_, badID := npid.FromHex("nope")
	require.Error(t, badID)

	tests := []struct {
		name       string
		opts       Options
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"invalid argument", Options{}, missingParam("id"), http.StatusBadRequest, ""},
		{"unauthorized", Options{}, models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"malformed id", Options{}, badID, http.StatusBadRequest, ""},
		{"malformed id legacy", Options{LegacyErrorBodies: true}, badID, http.StatusOK, ""},
		{"storage", Options{}, storageErr, http.StatusInternalServerError, "Internal server error"},
		{"storage legacy", Options{LegacyErrorBodies: true}, storageErr, http.StatusOK, "find games: connection reset"},
		{"wrapped argument legacy", Options{LegacyErrorBodies: true}, fmt.Errorf("%w: bad", models.ErrInvalidArgument), http.StatusBadRequest, "invalid argument: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, tt.opts, func(*gin.Context) error { return tt.err })
			assert.Equal(t, tt.wantStatus, code)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}

func TestRecover_ReturnsJSON(t *testing.T) {
	code, body := serve(t, Options{}, func(*gin.Context) error { panic("boom") })
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Message)
}

func TestParam_QueryThenForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request, _ = http.NewRequest(http.MethodGet, "/?id=from-query", nil)

	assert.Equal(t, "from-query", param(c, "id"))
	assert.Equal(t, "", param(c, "guid"))
}
