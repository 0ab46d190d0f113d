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

	"github.com/san-kum/echemsim/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	w := do(t, New(Options{}), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListMechanisms(t *testing.T) {
	w := do(t, New(Options{}), http.MethodGet, "/api/v1/mechanisms", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Mechanisms, 5)
	assert.Equal(t, "E", resp.Mechanisms[0].Name)
	assert.Len(t, resp.Techniques, 2)
	for _, m := range resp.Mechanisms {
		assert.Equal(t, m.Name != "ECE", m.Implemented, m.Name)
	}
}

func TestListPresets(t *testing.T) {
	w := do(t, New(Options{}), http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Presets, "reversible")
	assert.Contains(t, resp.Presets, "chronoamperometry")
}

func TestSimulate(t *testing.T) {
	s := New(Options{})
	w := do(t, s, http.MethodPost, "/api/v1/simulate", SimulateRequest{
		Preset: "ec-fast",
		Config: json.RawMessage(`{"grid":{"time_steps":2000,"space_steps":100}}`),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "EC", resp.Result.Mechanism)
	assert.Equal(t, 2001, resp.Result.Samples)
	assert.Len(t, resp.Result.Current, 2001)
	assert.Nil(t, resp.Result.Oxidized)
	assert.Contains(t, resp.Result.Metrics, "cathodic_peak_current")
}

func TestSimulateIncludeGrids(t *testing.T) {
	w := do(t, New(Options{}), http.MethodPost, "/api/v1/simulate", SimulateRequest{
		Preset:       "chronoamperometry",
		IncludeGrids: true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "step", resp.Result.Technique)
	assert.Len(t, resp.Result.Oxidized, 1000)
	assert.Len(t, resp.Result.Distance, 101)
}

func TestSimulateErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed body", "not an object", http.StatusBadRequest, CodeInvalidRequest},
		{"unknown preset", SimulateRequest{Preset: "nope"}, http.StatusBadRequest, CodeInvalidRequest},
		{
			"unknown mechanism",
			SimulateRequest{Config: json.RawMessage(`{"mechanism":"EEC"}`)},
			http.StatusBadRequest, CodeInvalidConfig,
		},
		{
			"zero scan rate",
			SimulateRequest{Config: json.RawMessage(`{"sweep":{"start":0.5,"switch":-0.7,"scan_rate":0}}`)},
			http.StatusBadRequest, CodeInvalidConfig,
		},
		{
			"coarse time grid",
			SimulateRequest{Config: json.RawMessage(`{"grid":{"time_steps":100,"space_steps":100}}`)},
			http.StatusUnprocessableEntity, CodeUnstable,
		},
		{
			"overflowing sweep time",
			SimulateRequest{Config: json.RawMessage(`{"sweep":{"start":0.5,"switch":-0.7,"scan_rate":1e-310}}`)},
			http.StatusUnprocessableEntity, CodeDegenerateGrid,
		},
	}

	s := New(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/simulate", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestUnstableDetails(t *testing.T) {
	w := do(t, New(Options{}), http.MethodPost, "/api/v1/simulate", SimulateRequest{
		Config: json.RawMessage(`{"transport":{"diffusion":1e-5,"diffusion_reduced":2e-5,"concentration":5e-8}}`),
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "reduced", detail.Details["species"])
	assert.Greater(t, detail.Details["lambda"], 0.5)
}

func TestSimulateSave(t *testing.T) {
	st := storage.New(t.TempDir())
	require.NoError(t, st.Init())
	s := New(Options{Store: st})

	w := do(t, s, http.MethodPost, "/api/v1/simulate", SimulateRequest{Save: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SimulateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RunID)

	w = do(t, s, http.MethodGet, "/api/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var runs struct {
		Runs []storage.RunMetadata `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs.Runs, 1)
	assert.Equal(t, resp.RunID, runs.Runs[0].ID)
}

func TestRunsWithoutStore(t *testing.T) {
	w := do(t, New(Options{}), http.MethodGet, "/api/v1/runs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}

func TestNoRoute(t *testing.T) {
	w := do(t, New(Options{}), http.MethodGet, "/api/v2/simulate", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := New(Options{AllowedOrigins: []string{"http://localhost:5173"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/simulate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
