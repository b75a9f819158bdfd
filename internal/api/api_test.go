package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/smckit/internal/testutil"
	"github.com/joshuapare/smckit/smc"
	"github.com/joshuapare/smckit/smc/command"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *smc.Store) {
	t.Helper()
	s := testutil.NewStore(t)
	return NewRouter(NewHandlers(command.New(s, command.Options{}))), s
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers_Health(t *testing.T) {
	r, _ := setupTestRouter(t)
	w := do(t, r, http.MethodGet, "/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestHandlers_KeyLifecycle(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := do(t, r, http.MethodPost, "/v1/keys", AddRequest{Name: "NATJ", Type: "ui8", Value: "01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added KeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	assert.Equal(t, "NATJ", added.Name)
	assert.Equal(t, "ui8 ", added.Type)
	assert.Equal(t, "01", added.Value)

	w = do(t, r, http.MethodPut, "/v1/keys/natj", SetRequest{Value: "03"})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/v1/keys/NATJ", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got KeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "03", got.Value)

	w = do(t, r, http.MethodPost, "/v1/keys", AddRequest{Name: "natj", Value: "04"})
	require.Equal(t, http.StatusOK, w.Code, "posting an existing key updates it")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "04", got.Value)
	assert.Equal(t, "ui8 ", got.Type)

	w = do(t, r, http.MethodGet, "/v1/keys/%23KEY", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "00000003", got.Value)
	assert.True(t, got.Derived)

	w = do(t, r, http.MethodGet, "/v1/keys", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)

	w = do(t, r, http.MethodGet, "/v1/index/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NATJ", got.Name)
}

func TestHandlers_ErrorStatuses(t *testing.T) {
	r, s := setupTestRouter(t)
	_, err := s.AddKeyWithProvider("TC0P", "sp78", 2, testutil.StaticProvider("cpu"), 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing key", http.MethodGet, "/v1/keys/NOPE", nil, http.StatusNotFound},
		{"bad index", http.MethodGet, "/v1/index/x", nil, http.StatusBadRequest},
		{"index out of range", http.MethodGet, "/v1/index/99", nil, http.StatusNotFound},
		{"bad hex", http.MethodPost, "/v1/keys", AddRequest{Name: "AAAA", Value: "zz"}, http.StatusBadRequest},
		{"missing name", http.MethodPost, "/v1/keys", map[string]string{"value": "00"}, http.StatusBadRequest},
		{"reserved", http.MethodPost, "/v1/keys", AddRequest{Name: "FNum", Value: "01"}, http.StatusConflict},
		{"provider owned", http.MethodPut, "/v1/keys/TC0P", SetRequest{Value: "0000"}, http.StatusConflict},
		{"derived", http.MethodPut, "/v1/keys/%23KEY", SetRequest{Value: "00000001"}, http.StatusConflict},
		{"unknown slot kind", http.MethodPost, "/v1/slots/cpu", nil, http.StatusNotFound},
		{"slot out of range", http.MethodDelete, "/v1/slots/fan/16", nil, http.StatusBadRequest},
		{"slot not a number", http.MethodDelete, "/v1/slots/fan/x", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHandlers_Slots(t *testing.T) {
	r, s := setupTestRouter(t)

	for want := uint8(0); want < 3; want++ {
		w := do(t, r, http.MethodPost, "/v1/slots/fan", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var resp SlotResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.Index)
	}
	w := do(t, r, http.MethodDelete, "/v1/slots/fan/2", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uint16(0b011), s.FanSlots())

	w = do(t, r, http.MethodPut, "/v1/slots/gpu/7", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodPut, "/v1/slots/gpu/7", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	w = do(t, r, http.MethodPost, "/v1/slots/gpu", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, r, http.MethodDelete, "/v1/slots/gpu/0x7", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uint16(1), s.GPUSlots())

	w = do(t, r, http.MethodDelete, "/v1/providers/nobody", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
