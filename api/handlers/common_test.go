package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BaSui01/onboardflow/internal/ctxkeys"
	"github.com/BaSui01/onboardflow/store"
	"github.com/BaSui01/onboardflow/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// 🧪 Common 函数测试
// =============================================================================

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"message":"hello"}`, w.Body.String())
}

func TestWriteSuccess_CarriesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(ctxkeys.WithRequestID(r.Context(), "req-1"))

	WriteSuccess(w, r, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestWriteError(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name           string
		err            *types.Error
		expectedStatus int
	}{
		{"invalid request", types.NewError(types.ErrInvalidRequest, "bad"), http.StatusBadRequest},
		{"validation", types.NewError(types.ErrValidationFailed, "phone").WithField(types.FieldPhone), http.StatusUnprocessableEntity},
		{"duplicate", types.NewError(types.ErrDuplicateRecord, "dup"), http.StatusConflict},
		{"persistence", types.NewError(types.ErrPersistenceUnavailable, "down"), http.StatusServiceUnavailable},
		{"busy", types.NewError(types.ErrSessionBusy, "busy"), http.StatusTooManyRequests},
		{"not found", types.NewError(types.ErrSessionNotFound, "gone"), http.StatusNotFound},
		{"closed", types.NewError(types.ErrSessionClosed, "closed"), http.StatusGone},
		{"explicit status wins", types.NewError(types.ErrInternalError, "x").WithHTTPStatus(http.StatusTeapot), http.StatusTeapot},
		{"unknown code", types.NewError("SOMETHING_ELSE", "x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, nil, tt.err, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp Response
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, string(tt.err.Code), resp.Error.Code)
			assert.Equal(t, tt.err.Field, resp.Error.Field)
		})
	}
}

func TestToAPIError(t *testing.T) {
	dup := &store.Error{Kind: store.KindDuplicateKey, Backend: store.BackendMemory, Op: "append", Key: "5551234567"}
	assert.Equal(t, types.ErrDuplicateRecord, ToAPIError(dup).Code)

	te := types.NewError(types.ErrSessionBusy, "busy")
	assert.Same(t, te, ToAPIError(te))

	plain := ToAPIError(errors.New("boom"))
	assert.Equal(t, types.ErrInternalError, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(plain))
}

func TestDecodeJSONBody(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid", func(t *testing.T) {
		var dst struct {
			Kind string `json:"kind"`
		}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"text"}`))
		require.NoError(t, DecodeJSONBody(w, r, &dst, logger))
		assert.Equal(t, "text", dst.Kind)
	})

	t.Run("unknown field", func(t *testing.T) {
		var dst struct {
			Kind string `json:"kind"`
		}
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"text","x":1}`))
		assert.Error(t, DecodeJSONBody(w, r, &dst, logger))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		var dst map[string]any
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		assert.Error(t, DecodeJSONBody(w, r, &dst, logger))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		var dst map[string]any
		w := httptest.NewRecorder()
		body := `{"value":"` + strings.Repeat("a", 64) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		assert.Error(t, DecodeJSONBody(w, r, &dst, logger))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestValidateContentType(t *testing.T) {
	logger := zap.NewNop()
	for ct, ok := range map[string]bool{
		"application/json":                true,
		"application/json; charset=utf-8": true,
		"text/plain":                      false,
		"":                                false,
	} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
		r.Header.Set("Content-Type", ct)
		assert.Equal(t, ok, ValidateContentType(w, r, logger), ct)
		if !ok {
			assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
		}
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusAccepted)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte("hello"))
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, rw.StatusCode)
	assert.Equal(t, int64(5), rw.BytesWritten)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Same(t, rw, NewResponseWriter(rw))
	assert.Equal(t, http.ResponseWriter(rec), rw.Unwrap())
}
