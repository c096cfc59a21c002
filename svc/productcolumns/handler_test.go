package productcolumns

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenant"
	"github.com/AlphaDigitAll/xQuantum-API/pkg/tenantdb"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind tenantdb.ErrorKind
		want int
	}{
		{tenantdb.KindUnauthorized, http.StatusUnauthorized},
		{tenantdb.KindForbidden, http.StatusForbidden},
		{tenantdb.KindConflict, http.StatusConflict},
		{tenantdb.KindInvalidReference, http.StatusBadRequest},
		{tenantdb.KindMissingField, http.StatusBadRequest},
		{tenantdb.KindUnavailable, http.StatusServiceUnavailable},
		{tenantdb.KindTimeout, http.StatusGatewayTimeout},
		{tenantdb.KindNotFound, http.StatusNotFound},
		{tenantdb.KindUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind), string(tt.kind))
	}
}

func identityCtx(orgID string) context.Context {
	return tenant.WithIdentity(context.Background(), tenant.Identity{
		OrgID:    orgID,
		UserID:   uuid.NewString(),
		Username: "Jane Seller",
	})
}

func doRequest(t *testing.T, h *Handler, method, target, body string, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandlerUpsert(t *testing.T) {
	t.Parallel()

	t.Run("creates a column", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{row: fakeRow{id: 7}}
		h := NewHandler(newTestService(t, conn))

		body := `{"subId":"` + uuid.NewString() + `","columnName":"cogs_q3","profileId":"` + uuid.NewString() + `"}`
		rec := doRequest(t, h, http.MethodPost, "/", body, identityCtx(testOrgID))
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    int  `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, 7, resp.Data)
	})

	t.Run("maps conflicts to 409", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{row: fakeRow{err: &pgconn.PgError{Code: "23505"}}}
		h := NewHandler(newTestService(t, conn))

		rec := doRequest(t, h, http.MethodPost, "/", `{"columnName":"cogs_q3"}`, identityCtx(testOrgID))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "already exists")
	})

	t.Run("requires tenant identity", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(newTestService(t, &fakeConn{}))
		rec := doRequest(t, h, http.MethodPost, "/", `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandlerUpdate(t *testing.T) {
	t.Parallel()

	t.Run("updates a column", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{execTag: pgconn.NewCommandTag("UPDATE 1")}
		h := NewHandler(newTestService(t, conn))

		body := `{"subId":"` + uuid.NewString() + `","columnName":"renamed","profileId":"` + uuid.NewString() + `"}`
		rec := doRequest(t, h, http.MethodPut, "/7", body, identityCtx(testOrgID))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects a non-numeric id", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(newTestService(t, &fakeConn{}))
		rec := doRequest(t, h, http.MethodPut, "/abc", `{}`, identityCtx(testOrgID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerList(t *testing.T) {
	t.Parallel()

	t.Run("lists columns for a subscription", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		conn := &fakeConn{rows: &fakeRows{columns: []Column{{ID: 1, SubID: subID, ColumnName: "cogs_q3", IsActive: true}}}}
		h := NewHandler(newTestService(t, conn))

		rec := doRequest(t, h, http.MethodGet, "/sub/"+subID.String(), "", identityCtx(testOrgID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cogs_q3")
	})

	t.Run("rejects an invalid subscription id", func(t *testing.T) {
		t.Parallel()

		h := NewHandler(newTestService(t, &fakeConn{}))
		rec := doRequest(t, h, http.MethodGet, "/sub/not-a-uuid", "", identityCtx(testOrgID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerDelete(t *testing.T) {
	t.Parallel()

	t.Run("soft-deletes a column", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{execTag: pgconn.NewCommandTag("UPDATE 1")}
		h := NewHandler(newTestService(t, conn))

		rec := doRequest(t, h, http.MethodDelete, "/7", "", identityCtx(testOrgID))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("database outages map to 503", func(t *testing.T) {
		t.Parallel()

		conn := &fakeConn{execErr: &pgconn.PgError{Code: "53300"}}
		h := NewHandler(newTestService(t, conn))

		rec := doRequest(t, h, http.MethodDelete, "/7", "", identityCtx(testOrgID))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
