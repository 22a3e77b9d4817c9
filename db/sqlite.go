package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// PredictionRecord is one logged prediction.
type PredictionRecord struct {
	ID            int64              `json:"id"`
	ModelVersion  uint64             `json:"model_version"`
	Source        string             `json:"source"`
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Features      []float64          `json:"features"`
	Probabilities map[string]float64 `json:"probabilities"`
	CreatedAt     time.Time          `json:"created_at"`
}

// ModelLog records one published model version.
type ModelLog struct {
	Version     uint64    `json:"version"`
	Dir         string    `json:"dir"`
	Format      string    `json:"format"`
	Classes     int       `json:"classes"`
	Features    int       `json:"features"`
	Labels      []string  `json:"labels"`
	PublishedAt time.Time `json:"published_at"`
}

// InitDB initializes the SQLite database
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var err error
	database, err = sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_version INTEGER NOT NULL,
        source TEXT NOT NULL DEFAULT '',
        label TEXT NOT NULL,
        confidence REAL NOT NULL,
        features TEXT NOT NULL,
        probabilities TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    CREATE TABLE IF NOT EXISTS model_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        version INTEGER NOT NULL,
        dir TEXT NOT NULL,
        format TEXT NOT NULL,
        classes INTEGER NOT NULL,
        features INTEGER NOT NULL,
        labels TEXT NOT NULL,
        published_at DATETIME NOT NULL
    );
    `

	_, err = database.Exec(query)
	return err
}

// CloseDB closes the database handle, if open.
func CloseDB() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SavePrediction appends a prediction to the log.
func SavePrediction(rec PredictionRecord) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	features, err := json.Marshal(rec.Features)
	if err != nil {
		return err
	}
	probs, err := json.Marshal(rec.Probabilities)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = database.Exec(`
        INSERT INTO predictions (model_version, source, label, confidence, features, probabilities, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ModelVersion, rec.Source, rec.Label, rec.Confidence, string(features), string(probs), rec.CreatedAt)
	return err
}

// QueryPredictions returns the newest predictions first.
func QueryPredictions(limit int) ([]PredictionRecord, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := database.Query(`
        SELECT id, model_version, source, label, confidence, features, probabilities, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var rec PredictionRecord
		var features, probs string
		if err := rows.Scan(&rec.ID, &rec.ModelVersion, &rec.Source, &rec.Label, &rec.Confidence, &features, &probs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &rec.Features); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(probs), &rec.Probabilities); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveModelLog records a model publish.
func SaveModelLog(entry ModelLog) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	if entry.PublishedAt.IsZero() {
		entry.PublishedAt = time.Now().UTC()
	}
	_, err := database.Exec(`
        INSERT INTO model_log (version, dir, format, classes, features, labels, published_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Version, entry.Dir, entry.Format, entry.Classes, entry.Features,
		strings.Join(entry.Labels, "\n"), entry.PublishedAt)
	return err
}

// LoadModelLog returns every recorded publish, newest first.
func LoadModelLog() ([]ModelLog, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := database.Query(`
        SELECT version, dir, format, classes, features, labels, published_at
        FROM model_log
        ORDER BY id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]ModelLog, 0)
	for rows.Next() {
		var log ModelLog
		var labels string
		if err := rows.Scan(&log.Version, &log.Dir, &log.Format, &log.Classes, &log.Features, &labels, &log.PublishedAt); err != nil {
			return nil, err
		}
		log.Labels = strings.Split(labels, "\n")
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
