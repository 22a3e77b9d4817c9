package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"playcaller/db"
	"playcaller/game"
	"playcaller/ml"
	"playcaller/monitoring"
)

// Deps are the collaborators the handlers use. Only Registry is required.
type Deps struct {
	Registry *ml.Registry
	// Predictor defaults to Registry; set it to a CachedPredictor to
	// memoize repeated requests.
	Predictor ml.Predictor
	Reloader  *ml.Reloader
	Hub       *monitoring.Hub
	Metrics   *monitoring.PredictionMetrics
	Logger    *zap.Logger
	// RecordPredictions stores every prediction through the db package.
	RecordPredictions bool
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

var (
	depsMu sync.RWMutex
	deps   = Deps{Metrics: monitoring.NewPredictionMetrics()}
)

// SetDeps installs the handler collaborators.
func SetDeps(d Deps) {
	if d.Predictor == nil && d.Registry != nil {
		d.Predictor = d.Registry
	}
	if d.Metrics == nil {
		d.Metrics = monitoring.NewPredictionMetrics()
	}
	depsMu.Lock()
	deps = d
	depsMu.Unlock()
}

func currentDeps() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

func RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/model", handleModel)
	mux.HandleFunc("POST /api/model/reload", handleReload)
	mux.HandleFunc("GET /api/model/log", handleModelLog)
	mux.HandleFunc("POST /api/predict", handlePredict)
	mux.HandleFunc("POST /api/predict/batch", handlePredictBatch)
	mux.HandleFunc("POST /api/predict/game", handlePredictGame)
	mux.HandleFunc("GET /api/scenarios", handleScenarios)
	mux.HandleFunc("GET /api/predictions", handlePredictions)
	mux.HandleFunc("GET /api/metrics", handleMetrics)
	mux.HandleFunc("GET /api/ws/predictions", handleStream)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	d := currentDeps()
	loaded := d.Registry != nil && d.Registry.Current() != nil
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "model_loaded": loaded})
}

type modelInfo struct {
	Version      uint64   `json:"version"`
	Classes      int      `json:"classes"`
	Features     int      `json:"features"`
	Labels       []string `json:"labels"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

func describe(snap *ml.Snapshot) modelInfo {
	info := modelInfo{
		Version:  snap.Version,
		Classes:  snap.Model.ClassCount(),
		Features: snap.Model.FeatureCount(),
		Labels:   snap.Model.Labels(),
	}
	if info.Features == len(game.FeatureNames) {
		info.FeatureNames = game.FeatureNames
	}
	return info
}

func handleModel(w http.ResponseWriter, r *http.Request) {
	d := currentDeps()
	if d.Registry == nil || d.Registry.Current() == nil {
		writeError(w, http.StatusServiceUnavailable, ml.ErrNoModel.Error())
		return
	}
	writeJSON(w, http.StatusOK, describe(d.Registry.Current()))
}

func handleReload(w http.ResponseWriter, r *http.Request) {
	d := currentDeps()
	if d.Reloader == nil {
		writeError(w, http.StatusNotImplemented, "model reload not configured")
		return
	}
	snap, err := d.Reloader.Reload()
	d.Metrics.RecordReload(err == nil)
	if err != nil {
		// the previous model keeps serving
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, describe(snap))
}

func handleModelLog(w http.ResponseWriter, r *http.Request) {
	logs, err := db.LoadModelLog()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": logs})
}

func handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = l
	}
	records, err := db.QueryPredictions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentDeps().Metrics.Snapshot())
}

func handleStream(w http.ResponseWriter, r *http.Request) {
	d := currentDeps()
	if d.Hub == nil {
		writeError(w, http.StatusNotImplemented, "prediction stream not configured")
		return
	}
	d.Hub.HandleWebSocket(w, r)
}

// statusFor maps prediction errors onto HTTP statuses. Bad feature vectors
// are 400 and a missing model is 503.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ml.ErrDimensionMismatch), errors.Is(err, ml.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, ml.ErrNoModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ml.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, ml.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, ml.ErrNoModel):
		return "no_model"
	default:
		return "internal"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
