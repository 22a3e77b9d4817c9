package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"playcaller/db"
	"playcaller/ml"
)

func newRunPassKick(t *testing.T) *ml.Model {
	t.Helper()
	m, err := ml.NewModel(
		[][]float64{{1, 0}, {0, 1}, {-1, -1}},
		[]float64{0, 0, 0},
		[]string{"run", "pass", "kick"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func newTestMux(d Deps) *http.ServeMux {
	SetDeps(d)
	mux := http.NewServeMux()
	RegisterHandlers(mux)
	return mux
}

func doRequest(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	mux := newTestMux(Deps{Registry: ml.NewRegistry(nil)})
	rr := doRequest(mux, http.MethodGet, "/api/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusOK)
	}
	expected := `{"model_loaded":false,"status":"ok"}`
	if strings.TrimSpace(rr.Body.String()) != expected {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestModelHandler(t *testing.T) {
	mux := newTestMux(Deps{Registry: ml.NewRegistry(nil)})
	if rr := doRequest(mux, http.MethodGet, "/api/model", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without model, got %d", rr.Code)
	}

	mux = newTestMux(Deps{Registry: ml.NewRegistry(newRunPassKick(t))})
	rr := doRequest(mux, http.MethodGet, "/api/model", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var info modelInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if info.Version != 1 || info.Classes != 3 || info.Features != 2 || info.Labels[2] != "kick" {
		t.Fatalf("unexpected model info: %+v", info)
	}
}

func TestReloadHandler(t *testing.T) {
	dir := t.TempDir()
	if err := ml.SaveModel(newRunPassKick(t), ml.FormatText, dir); err != nil {
		t.Fatalf("save: %v", err)
	}
	registry := ml.NewRegistry(nil)
	reloader := &ml.Reloader{Dir: dir, Format: ml.FormatText, Registry: registry}
	mux := newTestMux(Deps{Registry: registry, Reloader: reloader})

	rr := doRequest(mux, http.MethodPost, "/api/model/reload", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if registry.Current() == nil {
		t.Fatal("reload did not publish a model")
	}

	if err := os.WriteFile(filepath.Join(dir, ml.LabelsFile), []byte("run\nrun\nkick\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rr = doRequest(mux, http.MethodPost, "/api/model/reload", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for broken model, got %d", rr.Code)
	}
	if registry.Current().Version != 1 {
		t.Fatal("broken reload replaced the model")
	}
	if snap := currentDeps().Metrics.Snapshot(); snap.Reloads != 1 || snap.ReloadFails != 1 {
		t.Fatalf("unexpected reload metrics: %+v", snap)
	}
}

func TestPredictionsHandler(t *testing.T) {
	if err := db.InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("init db: %v", err)
	}
	defer db.CloseDB()

	mux := newTestMux(Deps{Registry: ml.NewRegistry(newRunPassKick(t)), RecordPredictions: true})
	for _, body := range []string{`{"features":[2,1]}`, `{"features":[0,3]}`} {
		if rr := doRequest(mux, http.MethodPost, "/api/predict", body); rr.Code != http.StatusOK {
			t.Fatalf("predict failed: %d %s", rr.Code, rr.Body.String())
		}
	}

	rr := doRequest(mux, http.MethodGet, "/api/predictions?limit=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Data []db.PredictionRecord `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Label != "pass" || payload.Data[0].ModelVersion != 1 {
		t.Fatalf("unexpected records: %+v", payload.Data)
	}

	if rr := doRequest(mux, http.MethodGet, "/api/predictions?limit=zero", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rr.Code)
	}
}
