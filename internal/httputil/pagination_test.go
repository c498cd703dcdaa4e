package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healo/piiguard/internal/httputil"
)

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		url            string
		expectedOffset int
		expectedLimit  int
		expectError    bool
		errorMsg       string
	}{
		{
			name:           "default values",
			url:            "/",
			expectedOffset: 0,
			expectedLimit:  50,
			expectError:    false,
		},
		{
			name:           "valid custom values",
			url:            "/?offset=10&limit=20",
			expectedOffset: 10,
			expectedLimit:  20,
			expectError:    false,
		},
		{
			name:           "max limit",
			url:            "/?limit=100",
			expectedOffset: 0,
			expectedLimit:  100,
			expectError:    false,
		},
		{
			name:        "offset negative",
			url:         "/?offset=-1",
			expectError: true,
			errorMsg:    "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:        "offset not an integer",
			url:         "/?offset=abc",
			expectError: true,
			errorMsg:    "invalid offset parameter: must be a non-negative integer",
		},
		{
			name:        "limit zero",
			url:         "/?limit=0",
			expectError: true,
			errorMsg:    "invalid limit parameter: must be between 1 and 100",
		},
		{
			name:        "limit exceeds max",
			url:         "/?limit=101",
			expectError: true,
			errorMsg:    "invalid limit parameter: must be between 1 and 100",
		},
		{
			name:        "limit not an integer",
			url:         "/?limit=xyz",
			expectError: true,
			errorMsg:    "invalid limit parameter: must be between 1 and 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			c.Request = req

			offset, limit, err := httputil.ParsePagination(c)

			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, tt.errorMsg, err.Error())
				// Check that values are 0 on error
				assert.Equal(t, 0, offset)
				assert.Equal(t, 0, limit)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedOffset, offset)
				assert.Equal(t, tt.expectedLimit, limit)
			}
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(target string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return c
	}

	t.Run("no bounds", func(t *testing.T) {
		from, to, err := httputil.ParseTimeRange(newContext("/"))
		require.NoError(t, err)
		assert.Nil(t, from)
		assert.Nil(t, to)
	})

	t.Run("offsets are converted to UTC", func(t *testing.T) {
		from, to, err := httputil.ParseTimeRange(
			newContext("/?created_at_from=2026-02-01T03:00:00%2B03:00&created_at_to=2026-02-02T00:00:00Z"),
		)
		require.NoError(t, err)
		assert.True(t, from.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, time.UTC, from.Location())
		assert.True(t, to.Equal(time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("invalid format", func(t *testing.T) {
		_, _, err := httputil.ParseTimeRange(newContext("/?created_at_to=2026-02-01"))
		assert.ErrorContains(t, err, "invalid created_at_to format")
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := httputil.ParseTimeRange(
			newContext("/?created_at_from=2026-02-02T00:00:00Z&created_at_to=2026-02-01T00:00:00Z"),
		)
		assert.ErrorContains(t, err, "created_at_from must be before or equal to created_at_to")
	})
}
