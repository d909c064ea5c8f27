package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDashlessUUID(t *testing.T) {
	id := GenerateDashlessUUID()
	assert.Regexp(t, regexp.MustCompile(`^[a-f0-9]{32}$`), id)
	// Version nibble of a v7 UUID.
	assert.Equal(t, byte('7'), id[12])
}

func TestGenerateDashlessUUID_UniqueAndOrdered(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	prev := ""
	for i := 0; i < n; i++ {
		id := GenerateDashlessUUID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		// The millisecond timestamp prefix never goes backwards.
		if prev != "" {
			assert.LessOrEqual(t, prev[:12], id[:12])
		}
		prev = id
	}
}

// Helper function to create a test Gin context
func createTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestGinError(t *testing.T) {
	c, w := createTestContext()

	GinError(c, http.StatusTeapot, "Generic error")

	assert.Equal(t, http.StatusTeapot, w.Code)
	var response APIError
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Generic error", response.Error)
	assert.True(t, c.IsAborted(), "Context should be aborted")
	assert.Len(t, c.Errors, 1)
}

func TestGinErrorHelpers(t *testing.T) {
	testCases := []struct {
		name       string
		helperFunc func(*gin.Context, string)
		wantCode   int
	}{
		{name: "BadRequest", helperFunc: GinBadRequest, wantCode: http.StatusBadRequest},
		{name: "Unauthorized", helperFunc: GinUnauthorized, wantCode: http.StatusUnauthorized},
		{name: "Forbidden", helperFunc: GinForbidden, wantCode: http.StatusForbidden},
		{name: "NotFound", helperFunc: GinNotFound, wantCode: http.StatusNotFound},
		{name: "Conflict", helperFunc: GinConflict, wantCode: http.StatusConflict},
		{name: "InternalServerError", helperFunc: GinInternalServerError, wantCode: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := createTestContext()
			tc.helperFunc(c, tc.name+" test")

			assert.Equal(t, tc.wantCode, w.Code)
			var response APIError
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.name+" test", response.Error)
			assert.True(t, c.IsAborted(), "Context should be aborted")
		})
	}
}
