package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/assistant"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/leads"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/retrieval"
)

const routerFixture = `[
  {"dados_basicos": {"nome_completo": "Maria Souza Lima", "cargo": "Sócia"}, "contato": {"cidade": "Florianópolis"}},
  {"dados_basicos": {"nome_completo": "Carlos Souza", "empresa": "Souza Varejo"}, "contato": {"cidade": "Curitiba"}},
  {"dados_basicos": {"nome_completo": "Ana Costa"}, "contato": {"cidade": "Curitiba"}},
  {"dados_basicos": {"nome_completo": "Pedro Alves"}, "contato": {"cidade": "Curitiba", "email": "pedro@alves.com"}}
]`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	all, err := leads.Decode([]byte(routerFixture))
	require.NoError(t, err)

	composer := assistant.NewComposer(
		retrieval.NewIntentClassifier(),
		retrieval.NewIndex(all),
		retrieval.NewContextAssembler(5),
		nil,
		export.NewXLSXEncoder("", ""),
		assistant.DefaultOptions(),
		observability.NopLogger(),
	)
	return NewRouter(observability.NopLogger(), composer, DefaultAppConfig())
}

func postChat(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestChat_Scenarios(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLeads  int
		contains   string
	}{
		{"greeting with total", `{"message":"Oi"}`, http.StatusOK, 0, "**4 leads**"},
		{"name lookup", `{"message":"Quem é Maria Souza?"}`, http.StatusOK, 1, "Encontrei **1 lead(s)**"},
		{"city search", `{"message":"Leads de Curitiba"}`, http.StatusOK, 3, "Encontrei **3 lead(s)**"},
		{"export nothing", `{"message":"Exportar leads de tecnologia para excel"}`, http.StatusOK, 0, "Nenhum lead encontrado para exportar."},
		{"create email without generation", `{"message":"Criar email para Carlos Souza","history":[{"role":"user","content":"oi"}]}`, http.StatusOK, 1, "Carlos Souza"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := postChat(t, h, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var response string
			require.NoError(t, json.Unmarshal(out["response"], &response))
			assert.Contains(t, response, tt.contains)

			if tt.wantLeads == 0 {
				assert.NotContains(t, out, "leads")
			} else {
				var got []json.RawMessage
				require.NoError(t, json.Unmarshal(out["leads"], &got))
				assert.Len(t, got, tt.wantLeads)
			}
			assert.NotContains(t, out, "file")
		})
	}
}

func TestChat_ExportReturnsFile(t *testing.T) {
	rec, out := postChat(t, newTestRouter(t), `{"message":"Exportar todos os leads para Excel"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var file export.File
	require.NoError(t, json.Unmarshal(out["file"], &file))
	assert.True(t, strings.HasPrefix(file.Name, "leads_"))
	assert.True(t, strings.HasPrefix(file.URL, "data:"+export.XLSXMimeType+";base64,"))
}

func TestChat_Errors(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty message", `{"message":""}`, "empty message"},
		{"blank message", `{"message":"   "}`, "empty message"},
		{"missing message", `{}`, "empty message"},
		{"malformed json", `{"message":`, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, out := postChat(t, h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `"`+tt.want+`"`, string(out["error"]))
		})
	}
}

func TestChat_StatsSentinel(t *testing.T) {
	rec, out := postChat(t, newTestRouter(t), `{"message":"__stats__"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.JSONEq(t, `{"total":4,"withEmail":1,"withPhone":0,"withLinkedIn":0}`, string(out["stats"]))
	assert.NotContains(t, out, "response")
}

func TestStatsHealthReady(t *testing.T) {
	h := newTestRouter(t)

	for path, want := range map[string]string{
		"/api/stats": `{"stats":{"total":4,"withEmail":1,"withPhone":0,"withLinkedIn":0}}`,
		"/health":    `{"status":"healthy","service":"lead-engine"}`,
		"/ready":     `{"status":"ready","leads":4}`,
	} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, want, rec.Body.String())
		})
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
