package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver

	"github.com/yuma-shin/y-shin.net/models"
	"github.com/yuma-shin/y-shin.net/utils"
)

// Store persists analytics snapshots and the Umami bearer token so stats
// survive restarts and upstream outages.
type Store struct {
	conn     *sql.DB
	useTurso bool
	aesKey   string
}

// StoreConfig selects the backing database. Turso is tried first when
// credentials are present, with local SQLite as the fallback.
type StoreConfig struct {
	TursoDatabase string
	TursoToken    string
	SQLitePath    string
	AESKey        string
}

// NewStore opens the snapshot database and ensures the schema exists.
func NewStore(cfg StoreConfig) (*Store, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if cfg.TursoDatabase != "" && cfg.TursoToken != "" {
		connStr := cfg.TursoDatabase + "?authToken=" + cfg.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useTurso = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
	}

	s := &Store{conn: conn, useTurso: useTurso, aesKey: cfg.AESKey}
	if err := s.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS analytics_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			captured_at TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS api_tokens (
			name TEXT PRIMARY KEY,
			token TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// SaveSnapshot persists one stats capture.
func (s *Store) SaveSnapshot(stats *models.SiteStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	_, err = s.conn.Exec(
		`INSERT INTO analytics_snapshots (captured_at, payload) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339), string(payload),
	)
	return err
}

// LatestSnapshot returns the most recent persisted capture, or sql.ErrNoRows
// when none exists.
func (s *Store) LatestSnapshot() (*models.AnalyticsSnapshot, error) {
	row := s.conn.QueryRow(
		`SELECT id, captured_at, payload FROM analytics_snapshots ORDER BY id DESC LIMIT 1`,
	)

	var snap models.AnalyticsSnapshot
	var capturedAt, payload string
	if err := row.Scan(&snap.ID, &capturedAt, &payload); err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, capturedAt); err == nil {
		snap.CapturedAt = t
	}
	if err := json.Unmarshal([]byte(payload), &snap.Stats); err != nil {
		return nil, fmt.Errorf("corrupt snapshot payload: %w", err)
	}
	return &snap, nil
}

// SaveToken stores the Umami bearer token, AES-encrypted at rest when an
// encryption key is configured.
func (s *Store) SaveToken(name, token string) error {
	stored := token
	if s.aesKey != "" {
		encrypted, err := utils.Encrypt(token, s.aesKey)
		if err != nil {
			return err
		}
		stored = encrypted
	}

	_, err := s.conn.Exec(
		`INSERT INTO api_tokens (name, token, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		name, stored, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadToken retrieves a stored token, decrypting when a key is configured.
// Returns an empty string when no token is stored.
func (s *Store) LoadToken(name string) (string, error) {
	row := s.conn.QueryRow(`SELECT token FROM api_tokens WHERE name = ?`, name)

	var stored string
	if err := row.Scan(&stored); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}

	if s.aesKey != "" {
		return utils.Decrypt(stored, s.aesKey)
	}
	return stored, nil
}
