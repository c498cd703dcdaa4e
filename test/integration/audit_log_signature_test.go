package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAuditLogSignature_EndToEnd signs entries through real admin traffic, verifies them,
// then tampers with a stored row and expects verification to flag it.
func TestAuditLogSignature_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testCases := []struct {
		name     string
		dbDriver string
	}{
		{"PostgreSQL", "postgres"},
		{"MySQL", "mysql"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver, "aead")
			defer teardownIntegrationTest(t, ctx)

			start := time.Now().UTC().Add(-time.Minute)

			for i := 0; i < 3; i++ {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/admin/inquiries", nil, ctx.adminToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)
			}
			resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/admin/inquiries", nil, ctx.userToken)
			require.Equal(t, http.StatusForbidden, resp.StatusCode)
			ctx.drainAudit(t)

			useCase, err := ctx.container.AuditLogUseCase()
			require.NoError(t, err)

			end := time.Now().UTC().Add(time.Minute)

			t.Run("01_AllEntriesVerify", func(t *testing.T) {
				report, err := useCase.VerifyBatch(context.Background(), start, end)
				require.NoError(t, err)
				assert.Equal(t, int64(4), report.TotalChecked)
				assert.Equal(t, int64(4), report.SignedCount)
				assert.Equal(t, int64(4), report.ValidCount)
				assert.Zero(t, report.InvalidCount)
			})

			t.Run("02_TamperedEntryIsInvalid", func(t *testing.T) {
				query := "UPDATE audit_logs SET actor_email = 'someone@else.example' WHERE action = 'UNAUTHORIZED_ADMIN_ACCESS'"
				result, err := ctx.db.Exec(query)
				require.NoError(t, err)
				affected, err := result.RowsAffected()
				require.NoError(t, err)
				require.Equal(t, int64(1), affected)

				report, err := useCase.VerifyBatch(context.Background(), start, end)
				require.NoError(t, err)
				assert.Equal(t, int64(4), report.TotalChecked)
				assert.Equal(t, int64(3), report.ValidCount)
				assert.Equal(t, int64(1), report.InvalidCount)
				assert.Len(t, report.InvalidLogs, 1)
			})
		})
	}
}
