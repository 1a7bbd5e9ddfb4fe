package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-atlas/pkg/adapters"
	"github.com/de-tools/ledger-atlas/pkg/models/api"
	"github.com/de-tools/ledger-atlas/pkg/services/analysis"
	ledgersvc "github.com/de-tools/ledger-atlas/pkg/services/ledger"
	"github.com/de-tools/ledger-atlas/pkg/services/record"
	"github.com/de-tools/ledger-atlas/pkg/store/sqlite/history"
)

type Handler struct {
	engine   *analysis.Engine
	history  history.Store
	recorder *record.Recorder
}

// NewHandler wires the upload and history endpoints. The recorder may be
// nil; uploads then skip persistence.
func NewHandler(engine *analysis.Engine, historyStore history.Store, recorder *record.Recorder) *Handler {
	return &Handler{
		engine:   engine,
		history:  historyStore,
		recorder: recorder,
	}
}

// UploadCSV accepts one trial balance as the multipart "file" field and
// returns the analysis payload.
func (h *Handler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(header.Filename, ".csv") {
		writeError(ctx, w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	// Buffered so the recorder can archive the file exactly as received.
	raw, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Str("file", header.Filename).Msg("failed to read upload")
		writeError(ctx, w, http.StatusBadRequest, "Invalid CSV format")
		return
	}

	result, err := h.engine.Analyze(ctx, bytes.NewReader(raw))
	if err != nil {
		var vErr *ledgersvc.ValidationError
		if errors.As(err, &vErr) {
			writeError(ctx, w, http.StatusBadRequest, vErr.Detail)
			return
		}
		logger.Error().Err(err).Str("file", header.Filename).Msg("analysis failed")
		writeError(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if h.recorder != nil {
		if _, err := h.recorder.Record(ctx, header.Filename, raw, result); err != nil {
			// The uploader still gets their analysis; only history is lost.
			logger.Error().Err(err).Str("file", header.Filename).Msg("failed to persist analysis")
		}
	}

	writeJSON(ctx, w, http.StatusOK, adapters.MapAnalysisDomainToApi(result))
}

// ListAnalyses returns stored analyses, newest first. The optional "limit"
// query parameter caps the page size.
func (h *Handler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	records, err := h.history.List(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list analyses")
		writeError(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	response := make([]api.AnalysisRecord, 0, len(records))
	for _, rec := range records {
		apiRec, err := adapters.MapAnalysisRecordStoreToApi(rec)
		if err != nil {
			logger.Warn().Err(err).Str("id", rec.Id).Msg("skipping unreadable analysis record")
			continue
		}
		response = append(response, apiRec)
	}
	writeJSON(ctx, w, http.StatusOK, response)
}

// GetAnalysis returns one stored analysis by id.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	rec, err := h.history.Get(ctx, id)
	if errors.Is(err, history.ErrNotFound) {
		writeError(ctx, w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("failed to load analysis")
		writeError(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	apiRec, err := adapters.MapAnalysisRecordStoreToApi(*rec)
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("stored analysis is unreadable")
		writeError(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(ctx, w, http.StatusOK, apiRec)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	writeJSON(ctx, w, status, api.Error{Detail: detail})
}
