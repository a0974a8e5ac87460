package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованное изменение схемы, применяется один раз
type migration struct {
	name  string
	apply func(*sql.DB) error
}

// trainingMigrations миграции схемы обучающего корпуса в порядке применения
var trainingMigrations = []migration{
	{name: "001_training_examples", apply: createTrainingExamplesTable},
	{name: "002_model_reports", apply: createModelReportsTable},
	{name: "003_training_examples_session_index", apply: createSessionIndex},
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(db *sql.DB, name string) (bool, error) {
	var appliedAt sql.NullTime
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := db.QueryRow(query, name).Scan(&appliedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return appliedAt.Valid, nil
}

// markMigrationApplied сохраняет информацию о примененной миграции.
func markMigrationApplied(db *sql.DB, name string) error {
	query := fmt.Sprintf(`INSERT OR REPLACE INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := db.Exec(query, name, time.Now()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", name, err)
	}
	return nil
}

// applyMigrations выполняет непримененные миграции по порядку
func applyMigrations(db *sql.DB, migrations []migration, logger *slog.Logger) error {
	if err := ensureMigrationTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		applied, err := isMigrationApplied(db, m.name)
		if err != nil {
			return err
		}
		if applied {
			logger.Debug("migration already applied", "name", m.name)
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		if err := markMigrationApplied(db, m.name); err != nil {
			return err
		}
		logger.Info("migration applied", "name", m.name)
	}
	return nil
}

func createTrainingExamplesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS training_examples (
			id TEXT PRIMARY KEY,
			text1 TEXT NOT NULL,
			text2 TEXT NOT NULL,
			features1 TEXT NOT NULL,
			features2 TEXT NOT NULL,
			scores TEXT NOT NULL,
			user_says_similar INTEGER NOT NULL,
			confidence REAL NOT NULL CHECK (confidence > 0 AND confidence <= 1),
			session_id TEXT,
			created_at TEXT NOT NULL
		)
	`)
	return err
}

func createModelReportsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS model_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			model_id TEXT NOT NULL,
			model_version TEXT NOT NULL,
			model_type TEXT NOT NULL,
			accuracy REAL NOT NULL,
			precision_score REAL NOT NULL,
			recall REAL NOT NULL,
			f1 REAL NOT NULL,
			auc REAL NOT NULL,
			mean_cv_f1 REAL,
			report TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	return err
}

func createSessionIndex(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_training_examples_session ON training_examples(session_id, created_at)`)
	return err
}
