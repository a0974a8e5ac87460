package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"productsim/training"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *slog.Logger
}

// TrainingDB хранилище размеченных пар и истории моделей в SQLite
type TrainingDB struct {
	conn   *sql.DB
	logger *slog.Logger
}

var _ training.ExampleStore = (*TrainingDB)(nil)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NewTrainingDB открывает базу обучающего корпуса
func NewTrainingDB(dbPath string, logger *slog.Logger) (*TrainingDB, error) {
	config := DBConfig{Logger: logger}

	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получит пустую БД без таблиц.
	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}
	return NewTrainingDBWithConfig(dbPath, config)
}

// isInMemory определяет, что путь относится к in-memory SQLite
func isInMemory(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// NewTrainingDBWithConfig открывает базу с настройками пула соединений
func NewTrainingDBWithConfig(dbPath string, config DBConfig) (*TrainingDB, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open training database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping training database: %w", err)
	}

	// WAL позволяет читателям работать одновременно с записью
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Warn("failed to enable WAL mode", "error", err)
	}

	if err := applyMigrations(conn, trainingMigrations, logger); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize training schema: %w", err)
	}

	return &TrainingDB{conn: conn, logger: logger}, nil
}

// Close закрывает подключение
func (db *TrainingDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *TrainingDB) Ping() error {
	return db.conn.Ping()
}

// SaveExample сохраняет пример; повторное сохранение с тем же ID перезаписывает его
func (db *TrainingDB) SaveExample(ex *training.TrainingExample) error {
	f1, err := json.Marshal(ex.Features1)
	if err != nil {
		return fmt.Errorf("failed to marshal features1: %w", err)
	}
	f2, err := json.Marshal(ex.Features2)
	if err != nil {
		return fmt.Errorf("failed to marshal features2: %w", err)
	}
	scores, err := json.Marshal(ex.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO training_examples
			(id, text1, text2, features1, features2, scores, user_says_similar, confidence, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.Text1, ex.Text2, string(f1), string(f2), string(scores),
		ex.UserSaysSimilar, ex.Confidence, ex.SessionID, ex.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save training example %s: %w", ex.ID, err)
	}
	return nil
}

// LoadExamples загружает все примеры в порядке добавления
func (db *TrainingDB) LoadExamples() ([]training.TrainingExample, error) {
	rows, err := db.conn.Query(`
		SELECT id, text1, text2, features1, features2, scores, user_says_similar, confidence, session_id, created_at
		FROM training_examples
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training examples: %w", err)
	}
	defer rows.Close()

	var examples []training.TrainingExample
	for rows.Next() {
		var (
			ex                 training.TrainingExample
			f1, f2, scores, ts string
			sessionID          sql.NullString
		)
		if err := rows.Scan(&ex.ID, &ex.Text1, &ex.Text2, &f1, &f2, &scores,
			&ex.UserSaysSimilar, &ex.Confidence, &sessionID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan training example: %w", err)
		}
		if err := json.Unmarshal([]byte(f1), &ex.Features1); err != nil {
			return nil, fmt.Errorf("failed to decode features1 of %s: %w", ex.ID, err)
		}
		if err := json.Unmarshal([]byte(f2), &ex.Features2); err != nil {
			return nil, fmt.Errorf("failed to decode features2 of %s: %w", ex.ID, err)
		}
		if err := json.Unmarshal([]byte(scores), &ex.Scores); err != nil {
			return nil, fmt.Errorf("failed to decode scores of %s: %w", ex.ID, err)
		}
		ex.SessionID = nullString(sessionID)
		ex.CreatedAt = parseTimestamp(ts)
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate training examples: %w", err)
	}
	return examples, nil
}

// CountExamples число примеров: всего и положительных
func (db *TrainingDB) CountExamples() (total, positive int, err error) {
	err = db.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(user_says_similar), 0) FROM training_examples
	`).Scan(&total, &positive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count training examples: %w", err)
	}
	return total, positive, nil
}

// DeleteExample удаляет пример по ID
func (db *TrainingDB) DeleteExample(id string) error {
	res, err := db.conn.Exec(`DELETE FROM training_examples WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete training example: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("training example %s not found", id)
	}
	return nil
}

// SaveReport добавляет отчет обученной модели в историю
func (db *TrainingDB) SaveReport(report *training.PerformanceReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	ts := report.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = db.conn.Exec(`
		INSERT INTO model_reports
			(model_id, model_version, model_type, accuracy, precision_score, recall, f1, auc, mean_cv_f1, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.ModelID, report.ModelVersion, string(report.ModelType),
		report.Accuracy, report.Precision, report.Recall, report.F1, report.AUC, report.MeanCVF1,
		string(raw), ts.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save model report %s: %w", report.ModelVersion, err)
	}
	db.logger.Debug("model report saved", "version", report.ModelVersion)
	return nil
}

// GetReports последние отчеты моделей, новые первыми. limit <= 0 - все.
func (db *TrainingDB) GetReports(limit int) ([]training.PerformanceReport, error) {
	query := `SELECT report FROM model_reports ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query model reports: %w", err)
	}
	defer rows.Close()

	var reports []training.PerformanceReport
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan model report: %w", err)
		}
		var r training.PerformanceReport
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to decode model report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
