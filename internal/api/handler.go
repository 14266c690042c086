package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/txreplay/internal/csvio"
	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/punchamoorthee/txreplay/internal/service"
	"github.com/punchamoorthee/txreplay/internal/store"
	"go.uber.org/zap"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txreplay_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "txreplay_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "endpoint"})
)

const (
	endpointReplays  = "/replays"
	endpointAccounts = "/replays/{run}/accounts"
	endpointAccount  = "/replays/{run}/accounts/{client}"
	contentTypeCSV   = "text/csv"
)

// Archive persists replay results. The handler works without one; archived
// lookups then answer 503.
type Archive interface {
	SaveRun(ctx context.Context, runID uuid.UUID, snaps []models.AccountSnapshot) (int64, error)
	ListAccounts(ctx context.Context, runID uuid.UUID) ([]models.AccountSnapshot, error)
	GetAccount(ctx context.Context, runID uuid.UUID, client models.ClientID) (*models.AccountSnapshot, error)
}

type Handler struct {
	archive   Archive
	log       *zap.Logger
	maxUpload int64
}

func NewHandler(archive Archive, log *zap.Logger, maxUpload int64) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{archive: archive, log: log, maxUpload: maxUpload}
}

// CreateReplay replays a CSV body and returns the final account snapshots.
func (h *Handler) CreateReplay(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", endpointReplays))
	defer timer.ObserveDuration()

	body := http.MaxBytesReader(w, r.Body, h.maxUpload)
	records, err := csvio.ReadRecords(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, http.StatusRequestEntityTooLarge, "Body too large", "POST", endpointReplays)
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error(), "POST", endpointReplays)
		return
	}

	snaps := service.Replay(records, h.log)
	runID := uuid.New()

	if h.archive != nil {
		if _, err := h.archive.SaveRun(r.Context(), runID, snaps); err != nil {
			h.log.Error("archive replay", zap.String("run_id", runID.String()), zap.Error(err))
			h.respondError(w, http.StatusInternalServerError, "Failed to archive replay", "POST", endpointReplays)
			return
		}
		w.Header().Set("Location", fmt.Sprintf("/api/v1/replays/%s/accounts", runID))
	}

	h.log.Info("replay completed",
		zap.String("run_id", runID.String()),
		zap.Int("records", len(records)),
		zap.Int("accounts", len(snaps)),
	)

	if strings.Contains(r.Header.Get("Accept"), contentTypeCSV) {
		h.respondCSV(w, http.StatusCreated, runID, snaps, "POST", endpointReplays)
		return
	}
	h.respondJSON(w, http.StatusCreated, models.ReplayResponse{
		RunID:    runID.String(),
		Records:  len(records),
		Accounts: snaps,
	}, "POST", endpointReplays)
}

func (h *Handler) GetRunAccounts(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r, endpointAccounts)
	if !ok {
		return
	}

	snaps, err := h.archive.ListAccounts(r.Context(), runID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			h.respondError(w, http.StatusNotFound, "Not Found", "GET", endpointAccounts)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", endpointAccounts)
		return
	}
	h.respondJSON(w, http.StatusOK, snaps, "GET", endpointAccounts)
}

func (h *Handler) GetRunAccount(w http.ResponseWriter, r *http.Request) {
	runID, ok := h.runID(w, r, endpointAccount)
	if !ok {
		return
	}
	client, err := strconv.ParseUint(mux.Vars(r)["client"], 10, 16)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid client id", "GET", endpointAccount)
		return
	}

	snap, err := h.archive.GetAccount(r.Context(), runID, models.ClientID(client))
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			h.respondError(w, http.StatusNotFound, "Not Found", "GET", endpointAccount)
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), "GET", endpointAccount)
		return
	}
	h.respondJSON(w, http.StatusOK, snap, "GET", endpointAccount)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/health")
}

// runID validates the archive and the {run} path variable.
func (h *Handler) runID(w http.ResponseWriter, r *http.Request, endpoint string) (uuid.UUID, bool) {
	if h.archive == nil {
		h.respondError(w, http.StatusServiceUnavailable, "Archive not configured", "GET", endpoint)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(mux.Vars(r)["run"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid run id", "GET", endpoint)
		return uuid.Nil, false
	}
	return id, true
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload interface{}, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}

func (h *Handler) respondCSV(w http.ResponseWriter, code int, runID uuid.UUID, snaps []models.AccountSnapshot, method, endpoint string) {
	var buf bytes.Buffer
	if err := csvio.WriteSnapshots(&buf, snaps); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), method, endpoint)
		return
	}
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("X-Run-Id", runID.String())
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}
