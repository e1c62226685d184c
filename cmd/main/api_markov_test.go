package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CTAG07/quotechain/pkg/markov"
	"github.com/CTAG07/quotechain/pkg/quotefault"
)

func newTestMux(svc *ChainService) http.Handler {
	mux := http.NewServeMux()
	gen := DefaultConfig().Generation
	gen.MaxCount = 5
	NewMarkovAPI(svc, gen, discardLogger()).RegisterRoutes(mux)
	NewServerAPI(discardLogger()).RegisterRoutes(mux)
	return withRequestLogging(discardLogger(), mux)
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMarkovAPI_GenerateBeforeRefresh(t *testing.T) {
	h := newTestMux(newTestService(&fakeFetcher{}, nil))

	rec := serve(h, http.MethodGet, "/api/markov/generate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh it first")
}

func TestMarkovAPI_RefreshThenGenerate(t *testing.T) {
	fetcher := &fakeFetcher{quotes: []string{"The Cat Sat"}}
	h := newTestMux(newTestService(fetcher, nil))

	rec := serve(h, http.MethodPost, "/api/markov/refresh", `{"speaker": "alice", "submitter": "bob"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []quotefault.Filter{{Speaker: "alice", Submitter: "bob"}}, fetcher.calls)

	var result RefreshResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, sourceAPI, result.Source)
	assert.Equal(t, 3, result.Stats.VocabSize)

	rec = serve(h, http.MethodGet, "/api/markov/generate?count=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"the cat sat", "the cat sat", "the cat sat"}, resp.Quotes)

	rec = serve(h, http.MethodGet, "/api/markov/generate", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Quotes, 1, "default count comes from config")
}

func TestMarkovAPI_RefreshEmptyBody(t *testing.T) {
	fetcher := &fakeFetcher{quotes: []string{"hello"}}
	h := newTestMux(newTestService(fetcher, nil))

	rec := serve(h, http.MethodPost, "/api/markov/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []quotefault.Filter{{}}, fetcher.calls)
}

func TestMarkovAPI_Errors(t *testing.T) {
	svc := newTestService(&fakeFetcher{err: errors.New("down")}, nil)
	h := newTestMux(svc)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"bad count", http.MethodGet, "/api/markov/generate?count=abc", "", http.StatusBadRequest},
		{"negative count", http.MethodGet, "/api/markov/generate?count=-2", "", http.StatusBadRequest},
		{"count above max", http.MethodGet, "/api/markov/generate?count=6", "", http.StatusBadRequest},
		{"generate wrong method", http.MethodPost, "/api/markov/generate", "", http.StatusMethodNotAllowed},
		{"refresh wrong method", http.MethodGet, "/api/markov/refresh", "", http.StatusMethodNotAllowed},
		{"refresh bad json", http.MethodPost, "/api/markov/refresh", "{", http.StatusBadRequest},
		{"refresh upstream down", http.MethodPost, "/api/markov/refresh", "{}", http.StatusBadGateway},
		{"stats wrong method", http.MethodDelete, "/api/markov/stats", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestMarkovAPI_RefreshUntrainableQuotes(t *testing.T) {
	fetcher := &fakeFetcher{quotes: []string{"good corpus"}}
	svc := NewChainService(markov.NewChain(), fetcher, nil, discardLogger())
	h := newTestMux(svc)

	rec := serve(h, http.MethodPost, "/api/markov/refresh", "{}")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	fetcher.quotes = []string{"fine", "?!"}
	rec = serve(h, http.MethodPost, "/api/markov/refresh", "{}")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	rec = serve(h, http.MethodGet, "/api/markov/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"good corpus"}, resp.Quotes)
}

func TestMarkovAPI_Stats(t *testing.T) {
	svc := newTestService(&fakeFetcher{quotes: []string{"a b", "a c"}}, nil)
	h := newTestMux(svc)

	rec := serve(h, http.MethodGet, "/api/markov/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"last_refresh":null`)

	serve(h, http.MethodPost, "/api/markov/refresh", "")
	rec = serve(h, http.MethodGet, "/api/markov/stats", "")
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.Sentences)
	assert.Equal(t, 1, resp.Stats.StartingTokens)
	require.NotNil(t, resp.LastRefresh)
}

func TestServerAPI_VersionAndRequestID(t *testing.T) {
	h := newTestMux(newTestService(&fakeFetcher{}, nil))

	rec := serve(h, http.MethodGet, "/api/server/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	var info VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, Version, info.Version)

	req := httptest.NewRequest(http.MethodGet, "/api/server/version", nil)
	req.Header.Set(headerRequestID, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(headerRequestID))
}
