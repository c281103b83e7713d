package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rcssa/match-api/internal/api/shared"
	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	var logs bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTraceID string
	r := chi.NewRouter()
	r.Use(NewTraceMiddleware(base))
	r.Get("/api/profiles/{id}/match", func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/abc/match", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, seenTraceID, 32)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, seenTraceID, entry["trace_id"])
	}
	var done map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &done))
	assert.Equal(t, "request completed", done["msg"])
	assert.Equal(t, float64(http.StatusTeapot), done["status"])
}

func TestCORSMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{
			name:       "wildcard",
			allowed:    []string{"*"},
			method:     http.MethodGet,
			origin:     "https://match.example.edu",
			wantOrigin: "*",
			wantStatus: http.StatusOK,
		},
		{
			name:       "listed origin echoed",
			allowed:    []string{"https://match.example.edu"},
			method:     http.MethodPost,
			origin:     "https://match.example.edu",
			wantOrigin: "https://match.example.edu",
			wantStatus: http.StatusOK,
		},
		{
			name:       "unlisted origin",
			allowed:    []string{"https://match.example.edu"},
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantOrigin: "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight",
			allowed:    []string{"*"},
			method:     http.MethodOptions,
			origin:     "https://match.example.edu",
			preflight:  true,
			wantOrigin: "*",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/profiles", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()

			NewCORSMiddleware(tc.allowed)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		})
	}
}
