package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		storageErr error
		wantCode   int
		wantStatus string
	}{
		{name: "all healthy", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "storage down", storageErr: errors.New("bucket missing"), wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(nil, nil)
			h.AddCheck("storage", func(context.Context) error { return tt.storageErr })

			r := gin.New()
			r.GET("/health", h.Health)
			req, _ := http.NewRequest(http.MethodGet, "/health", nil)
			w := serve(r, req)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Checks, 1)
			assert.NotContains(t, resp.Checks, "database")
		})
	}
}
