package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/testutil/fixtures"
	"github.com/BaSui01/onboardflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listEmployees(t *testing.T, st store.RecordStore, query string) (*httptest.ResponseRecorder, apiEnvelope[EmployeeList]) {
	t.Helper()
	mux := http.NewServeMux()
	NewEmployeeHandler(st, nil).Register(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/employees"+query, nil))

	var env apiEnvelope[EmployeeList]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return w, env
}

func TestEmployeeHandler_List(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	for _, rec := range []types.EmployeeRecord{fixtures.Jane(), fixtures.John()} {
		require.NoError(t, st.Append(ctx, types.KeyPhone.Of(rec), rec))
	}

	w, env := listEmployees(t, st, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Data.Count)
	assert.Equal(t, "Jane Doe", env.Data.Employees[0].Name)
	assert.Equal(t, "John Smith", env.Data.Employees[1].Name)

	_, env = listEmployees(t, st, "?limit=1")
	require.Len(t, env.Data.Employees, 1)
	assert.Equal(t, "John Smith", env.Data.Employees[0].Name)
}

func TestEmployeeHandler_EmptyStore(t *testing.T) {
	w, env := listEmployees(t, store.NewMemoryStore(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, env.Data.Employees)
	assert.Equal(t, 0, env.Data.Count)
}

func TestEmployeeHandler_InvalidLimit(t *testing.T) {
	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=-3", "?limit=1001"} {
		w, env := listEmployees(t, store.NewMemoryStore(), q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(types.ErrInvalidRequest), env.Error.Code)
	}
}

func TestEmployeeHandler_StoreUnavailable(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.Close())

	w, env := listEmployees(t, st, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(types.ErrPersistenceUnavailable), env.Error.Code)
	assert.True(t, env.Error.Retryable)
}
