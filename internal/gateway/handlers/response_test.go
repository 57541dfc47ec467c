package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantHTTP int
	}{
		{"not found", status.Errorf(codes.NotFound, "Policy with ID 7 not found"), http.StatusNotFound},
		{"conflict", status.Errorf(codes.AlreadyExists, "already decided"), http.StatusConflict},
		{"invalid argument", status.Errorf(codes.InvalidArgument, "reason is required"), http.StatusBadRequest},
		{"failed precondition", status.Errorf(codes.FailedPrecondition, "insufficient balance"), http.StatusBadRequest},
		{"internal", status.Errorf(codes.Internal, "boom"), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.wantHTTP, w.Code)
			assert.True(t, c.IsAborted())

			var resp APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestSuccessResponseEnvelope(t *testing.T) {
	resp := successWithMetaResponse("ok", []int{1, 2}, PaginationMeta{Page: 1, PageSize: 20, TotalCount: 2})

	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)
	assert.NotNil(t, resp.Data)
	assert.NotNil(t, resp.Meta)
}
