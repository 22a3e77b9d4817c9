package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"playcaller/db"
	"playcaller/game"
	"playcaller/ml"
	"playcaller/monitoring"
)

const maxBatchRows = 1000

type predictRequest struct {
	Features []float64 `json:"features"`
}

type batchRequest struct {
	Rows [][]float64 `json:"rows"`
}

type gamePrediction struct {
	Scenario    string         `json:"scenario,omitempty"`
	Context     game.Context   `json:"context"`
	Description string         `json:"description"`
	Prediction  *ml.Prediction `json:"prediction"`
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pred, err := predict(r, "features", req.Features)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

func handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Rows) == 0 || len(req.Rows) > maxBatchRows {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("rows must hold 1-%d feature vectors", maxBatchRows))
		return
	}
	preds := make([]*ml.Prediction, 0, len(req.Rows))
	for i, row := range req.Rows {
		pred, err := predict(r, "batch", row)
		if err != nil {
			writeError(w, statusFor(err), fmt.Sprintf("row %d: %v", i, err))
			return
		}
		preds = append(preds, pred)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"predictions": preds})
}

func handlePredictGame(w http.ResponseWriter, r *http.Request) {
	c := game.DefaultContext()
	if err := decodeBody(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := c.Validate(); err != nil {
		currentDeps().Metrics.RecordError("invalid_context")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pred, err := predict(r, "game", c.Features())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gamePrediction{Context: c, Description: c.String(), Prediction: pred})
}

func handleScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := game.Scenarios()
	out := make([]gamePrediction, 0, len(scenarios))
	for _, s := range scenarios {
		pred, err := predict(r, "scenario", s.Context.Features())
		if err != nil {
			writeError(w, statusFor(err), fmt.Sprintf("scenario %s: %v", s.Name, err))
			return
		}
		out = append(out, gamePrediction{Scenario: s.Name, Context: s.Context, Description: s.Context.String(), Prediction: pred})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scenarios": out})
}

// predict runs one prediction and fans the result out to metrics, the
// prediction log and the stream.
func predict(r *http.Request, source string, features []float64) (*ml.Prediction, error) {
	d := currentDeps()
	if d.Predictor == nil {
		d.Metrics.RecordError("no_model")
		return nil, ml.ErrNoModel
	}

	start := time.Now()
	pred, err := d.Predictor.Predict(features)
	if err != nil {
		d.Metrics.RecordError(errorKind(err))
		return nil, err
	}
	d.Metrics.RecordPrediction(pred.Label, time.Since(start))

	if d.RecordPredictions {
		err := db.SavePrediction(db.PredictionRecord{
			ModelVersion:  pred.ModelVersion,
			Source:        source,
			Label:         pred.Label,
			Confidence:    pred.Confidence,
			Features:      features,
			Probabilities: pred.Probabilities,
		})
		if err != nil {
			d.logger().Warn("failed to record prediction",
				zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		}
	}
	if d.Hub != nil {
		event := map[string]interface{}{
			"source":     source,
			"features":   features,
			"prediction": pred,
		}
		if err := d.Hub.Publish(monitoring.PredictionMessage, event); err != nil {
			d.logger().Warn("failed to publish prediction", zap.Error(err))
		}
	}
	return pred, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
