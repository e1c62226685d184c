package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CTAG07/quotechain/pkg/markov"
	"github.com/CTAG07/quotechain/pkg/quotefault"
)

// MarkovAPI holds the dependencies for the chain API handlers.
type MarkovAPI struct {
	svc    *ChainService
	gen    *GenerationConfig
	logger *slog.Logger
}

// NewMarkovAPI creates a new instance of the MarkovAPI.
func NewMarkovAPI(svc *ChainService, gen *GenerationConfig, logger *slog.Logger) *MarkovAPI {
	return &MarkovAPI{
		svc:    svc,
		gen:    gen,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/markov endpoints.
func (m *MarkovAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/markov/generate", m.handleGenerate)
	mux.HandleFunc("/api/markov/refresh", m.handleRefresh)
	mux.HandleFunc("/api/markov/stats", m.handleStats)
}

// GenerateResponse is the JSON body returned by the generate endpoint.
type GenerateResponse struct {
	Quotes []string `json:"quotes"`
}

// StatsResponse is the JSON body returned by the stats endpoint.
type StatsResponse struct {
	Stats       markov.Stats   `json:"stats"`
	LastRefresh *RefreshResult `json:"last_refresh"`
}

// handleGenerate returns ?count= generated quotes.
func (m *MarkovAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	count := m.gen.DefaultCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}
	if count > m.gen.MaxCount {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("count must not exceed %d", m.gen.MaxCount))
		return
	}

	quotes, err := m.svc.Generate(count)
	if err != nil {
		if errors.Is(err, markov.ErrUninitializedChain) {
			respondWithError(w, http.StatusConflict, "Chain has not been trained yet, refresh it first")
			return
		}
		m.logger.Error("Failed to generate quotes", "count", count, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, GenerateResponse{Quotes: quotes})
}

// handleRefresh rebuilds the chain, optionally filtered by speaker and submitter.
func (m *MarkovAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var filter quotefault.Filter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	result, err := m.svc.Refresh(r.Context(), filter)
	if err != nil {
		m.logger.Error("Failed to refresh chain", "speaker", filter.Speaker, "submitter", filter.Submitter, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, markov.ErrMalformedInput) {
			// The quotes arrived; they just could not be trained on.
			status = http.StatusUnprocessableEntity
		}
		respondWithError(w, status, fmt.Sprintf("Refresh failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// handleStats reports the current chain statistics.
func (m *MarkovAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	stats, last := m.svc.Stats()
	respondWithJSON(w, http.StatusOK, StatsResponse{Stats: stats, LastRefresh: last})
}
