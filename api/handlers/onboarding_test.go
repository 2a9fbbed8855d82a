package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/onboardflow/session"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/testutil"
	"github.com/BaSui01/onboardflow/testutil/fixtures"
	"github.com/BaSui01/onboardflow/testutil/mocks"
	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 测试辅助
// =============================================================================

type apiEnvelope[T any] struct {
	Success bool       `json:"success"`
	Data    T          `json:"data"`
	Error   *ErrorInfo `json:"error"`
}

type testAPI struct {
	mux   *http.ServeMux
	ctrl  *session.Controller
	store *store.MemoryStore
	ex    *mocks.MockExtractor
}

func newTestAPI(t *testing.T, cfg session.Config, maxUpload int64) *testAPI {
	t.Helper()
	st := store.NewMemoryStore()
	ex := mocks.NewMockExtractor().
		WithRow("Jane Doe", mocks.Candidate("Jane Doe", "555-123-4567", "Engineer", "$85,000")).
		WithRow("John Smith", mocks.Candidate("John Smith", "(555) 987-6543", "Analyst", "62000.50"))

	ctrl := session.NewController(cfg, func(id string) *workflow.Workflow {
		return workflow.New(id, workflow.DefaultConfig(), nil, ex, st)
	})
	t.Cleanup(func() { _ = ctrl.Close() })

	mux := http.NewServeMux()
	NewOnboardingHandler(ctrl, maxUpload, zap.NewNop()).Register(mux)
	NewEmployeeHandler(st, zap.NewNop()).Register(mux)
	NewChatSocketHandler(ctrl, nil, maxUpload, zap.NewNop()).Register(mux)
	return &testAPI{mux: mux, ctrl: ctrl, store: st, ex: ex}
}

func (a *testAPI) do(t *testing.T, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, r)
	return w
}

func (a *testAPI) event(t *testing.T, id string, req EventRequest) (*httptest.ResponseRecorder, apiEnvelope[session.Response]) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/events", []byte(testutil.MustJSON(req)), "application/json")
	var env apiEnvelope[session.Response]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return w, env
}

func (a *testAPI) text(t *testing.T, id string, texts ...string) session.Response {
	t.Helper()
	var last session.Response
	for _, s := range texts {
		w, env := a.event(t, id, EventRequest{Kind: workflow.EventText, Value: s})
		require.Equal(t, http.StatusOK, w.Code, s)
		last = env.Data
	}
	return last
}

func multipartBody(t *testing.T, field, filename string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

// =============================================================================
// 🧪 事件接口
// =============================================================================

func TestOnboardingHandler_ManualFlowCommits(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)

	_, env := api.event(t, "s1", EventRequest{Kind: workflow.EventText, Value: "Onboard"})
	assert.True(t, env.Success)
	assert.Equal(t, "s1", env.Data.SessionID)
	assert.NotEmpty(t, env.Data.Welcome)
	assert.Equal(t, workflow.AwaitingInputMethod(), env.Data.State)

	r := api.text(t, "s1", "manual", "Jane Doe", "555-123-4567", "Engineer", "85000")
	assert.Equal(t, workflow.ReviewingDraft(), r.State)
	require.NotNil(t, r.Draft)

	w, env := api.event(t, "s1", EventRequest{Kind: workflow.EventConfirm})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, workflow.Committed(), env.Data.State)
	require.NotNil(t, env.Data.Committed)
	assert.Equal(t, "5551234567", env.Data.Committed.Phone)

	recs, err := api.store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestOnboardingHandler_WorkflowErrorsAreConversational(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	api.text(t, "s1", "Onboard", "manual", "Jane Doe")

	w, env := api.event(t, "s1", EventRequest{Kind: workflow.EventText, Value: "12"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Data.Error)
	assert.Equal(t, types.ErrValidationFailed, env.Data.Error.Code)
	assert.Equal(t, workflow.CollectingManualField(types.FieldPhone), env.Data.State)
}

func TestOnboardingHandler_FieldEditEvent(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	api.text(t, "s1", "Onboard", "manual", "Jane Doe", "555-123-4567", "Engineer", "85000")

	_, env := api.event(t, "s1", EventRequest{Kind: workflow.EventFieldEdit, Field: types.FieldPhone, Value: "(555) 987-6543"})
	require.NotNil(t, env.Data.Draft)
	assert.Equal(t, "5559876543", env.Data.Draft.Record.Get(types.FieldPhone))
	assert.Equal(t, workflow.ReviewingDraft(), env.Data.State)
}

func TestOnboardingHandler_FileUploadEventAsBase64(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	api.text(t, "s1", "Onboard", "upload")

	csv := testutil.CSV(append([][]string{fixtures.SpreadsheetHeader()}, fixtures.SpreadsheetRows()...)...)
	_, env := api.event(t, "s1", EventRequest{Kind: workflow.EventFileUpload, FileName: "staff.csv", Data: csv})

	assert.Equal(t, workflow.ReviewingDraft(), env.Data.State)
	assert.Equal(t, 1, env.Data.Pending)
	require.NotNil(t, env.Data.Draft)
	assert.Equal(t, "Jane Doe", env.Data.Draft.Record.Get(types.FieldName))
}

func TestOnboardingHandler_BadRequests(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)

	tests := []struct {
		name        string
		path        string
		body        string
		contentType string
		status      int
	}{
		{"wrong content type", "/api/v1/sessions/s1/events", `{"kind":"text"}`, "text/plain", http.StatusUnsupportedMediaType},
		{"malformed json", "/api/v1/sessions/s1/events", `{"kind":`, "application/json", http.StatusBadRequest},
		{"unknown kind", "/api/v1/sessions/s1/events", `{"kind":"shout"}`, "application/json", http.StatusBadRequest},
		{"unknown field", "/api/v1/sessions/s1/events", `{"kind":"fieldEdit","field":"age","value":"3"}`, "application/json", http.StatusBadRequest},
		{"upload without data", "/api/v1/sessions/s1/events", `{"kind":"fileUpload"}`, "application/json", http.StatusBadRequest},
		{"invalid session id", "/api/v1/sessions/bad%20id/events", `{"kind":"text"}`, "application/json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, tt.path, []byte(tt.body), tt.contentType)
			assert.Equal(t, tt.status, w.Code)

			var env apiEnvelope[json.RawMessage]
			require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
		})
	}
	assert.Equal(t, 0, api.ctrl.Len())
}

func TestOnboardingHandler_SessionErrors(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.MaxSessions = 1
	api := newTestAPI(t, cfg, 0)
	api.text(t, "s1", "hello")

	w, env := api.event(t, "s2", EventRequest{Kind: workflow.EventText, Value: "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(types.ErrSessionLimit), env.Error.Code)
	assert.True(t, env.Error.Retryable)
}

// =============================================================================
// 🧪 上传接口
// =============================================================================

func TestOnboardingHandler_Upload(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)
	api.text(t, "s1", "Onboard", "upload")

	csv := testutil.CSV(fixtures.SpreadsheetHeader(), fixtures.SpreadsheetRows()[0])
	body, ct := multipartBody(t, "file", "staff.csv", csv)
	w := api.do(t, http.MethodPost, "/api/v1/sessions/s1/upload", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	var env apiEnvelope[session.Response]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Equal(t, workflow.ReviewingDraft(), env.Data.State)
	assert.Equal(t, 1, api.ex.GetCallCount())
}

func TestOnboardingHandler_UploadErrors(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 256)

	t.Run("missing file field", func(t *testing.T) {
		body, ct := multipartBody(t, "other", "staff.csv", []byte("Name\nJane"))
		w := api.do(t, http.MethodPost, "/api/v1/sessions/s1/upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		w := api.do(t, http.MethodPost, "/api/v1/sessions/s1/upload", []byte("Name\nJane"), "text/csv")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty file", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "staff.csv", nil)
		w := api.do(t, http.MethodPost, "/api/v1/sessions/s1/upload", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "staff.csv", []byte(strings.Repeat("x", 1024)))
		w := api.do(t, http.MethodPost, "/api/v1/sessions/s1/upload", body, ct)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	assert.Equal(t, 0, api.ex.GetCallCount())
}

// =============================================================================
// 🧪 查询与结束会话
// =============================================================================

func TestOnboardingHandler_GetAndDelete(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)

	w := api.do(t, http.MethodGet, "/api/v1/sessions/s1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	api.text(t, "s1", "Onboard", "manual", "Jane Doe")

	w = api.do(t, http.MethodGet, "/api/v1/sessions/s1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var snap apiEnvelope[session.Snapshot]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, "s1", snap.Data.SessionID)
	assert.Equal(t, workflow.CollectingManualField(types.FieldPhone), snap.Data.State)
	assert.Len(t, snap.Data.History, 6)
	require.NotNil(t, snap.Data.Draft)
	assert.Equal(t, "Jane Doe", snap.Data.Draft.Record.Get(types.FieldName))

	w = api.do(t, http.MethodDelete, "/api/v1/sessions/s1", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/v1/sessions/s1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, api.ctrl.Len())
}

func TestOnboardingHandler_Create(t *testing.T) {
	api := newTestAPI(t, session.DefaultConfig(), 0)

	w := api.do(t, http.MethodPost, "/api/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var env apiEnvelope[map[string]string]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	id := env.Data["session_id"]
	assert.True(t, ValidSessionID(id))

	r := api.text(t, id, "Onboard")
	assert.Equal(t, id, r.SessionID)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID("abc-123_X.y"))
	assert.False(t, ValidSessionID(""))
	assert.False(t, ValidSessionID("has space"))
	assert.False(t, ValidSessionID("slash/inside"))
	assert.False(t, ValidSessionID(strings.Repeat("a", maxSessionIDLen+1)))
}

func TestEventError(t *testing.T) {
	assert.Equal(t, types.ErrTimeout, eventError(context.DeadlineExceeded).Code)
	assert.Equal(t, types.ErrCancelled, eventError(context.Canceled).Code)
	assert.Equal(t, types.ErrSessionBusy, eventError(session.ErrBusy).Code)
}
